package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/service"
)

// SessionHandler exposes the session controller as JSON for scripts running
// in the admin pages.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type sessionResponse struct {
	State         domain.SessionState `json:"state"`
	Authenticated bool                `json:"authenticated"`
	Provisional   bool                `json:"provisional"`
	User          *domain.User        `json:"user,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func sessionOf(ctrl *service.Controller) sessionResponse {
	return sessionResponse{
		State:         ctrl.State(),
		Authenticated: ctrl.IsAuthenticated(),
		Provisional:   ctrl.Provisional(),
		User:          ctrl.User(),
	}
}

// Show returns the resolved session of the calling browser.
//
// @Summary      Current admin session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /admin/api/session [get]
func (h *SessionHandler) Show(c echo.Context) error {
	ctx := c.Request().Context()
	ctrl := service.ControllerFrom(ctx)
	ctrl.Init(ctx)
	return c.JSON(http.StatusOK, sessionOf(ctrl))
}

// Refresh re-fetches the current user from the API.
//
// @Summary      Refresh the cached user
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /admin/api/session/refresh [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	ctrl := service.ControllerFrom(ctx)
	ctrl.Init(ctx)
	if !ctrl.IsAuthenticated() {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
	}
	if err := ctrl.RefreshCurrentUser(ctx); err != nil {
		if expired(c, err) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "session expired"})
		}
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "could not reach the API"})
	}
	return c.JSON(http.StatusOK, sessionOf(ctrl))
}
