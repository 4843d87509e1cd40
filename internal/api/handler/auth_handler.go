package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/api/flash"
	"github.com/chaldal/admin-console/internal/core/ports"
	"github.com/chaldal/admin-console/internal/core/service"
)

const (
	msgLoggedIn        = "Login successful"
	msgLoggedOut       = "You have been logged out"
	msgPasswordChanged = "Password updated"
	msgSessionExpired  = "Your session has expired. Please log in again."
)

// AuthHandler serves login, logout and password change. Session state lives
// in the controller bound by the session middleware.
type AuthHandler struct {
	api ports.AuthAPI
	log zerolog.Logger
}

func NewAuthHandler(api ports.AuthAPI, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{api: api, log: log}
}

// ShowLogin renders the login form, or sends an authenticated user on to
// the dashboard.
func (h *AuthHandler) ShowLogin(c echo.Context) error {
	ctx := c.Request().Context()
	ctrl := service.ControllerFrom(ctx)
	ctrl.Init(ctx)
	if ctrl.IsAuthenticated() {
		return c.Redirect(http.StatusFound, service.DashboardPath)
	}

	p := newPage(c, "Log in", "")
	if ctrl.Expired() && p.Flash == nil {
		p.Flash = &flash.Message{Kind: flash.Error, Text: msgSessionExpired}
	}
	p.Form = loginForm{}
	return c.Render(http.StatusOK, "login", p)
}

// Login exchanges the submitted credentials for a session. The phone number
// is kept on failure; the password never is.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	p := newPage(c, "Log in", "")
	p.Form = loginForm{Phone: form.Phone}
	if err := c.Validate(&form); err != nil {
		return c.Render(formFailed(&p, err, ""), "login", p)
	}

	ctx := c.Request().Context()
	ok, msg := service.ControllerFrom(ctx).Login(ctx, form.Phone, form.Password)
	if !ok {
		p.Error = msg
		return c.Render(http.StatusUnauthorized, "login", p)
	}
	return succeeded(c, msgLoggedIn, service.DashboardPath)
}

// Logout ends the session. The controller queues the redirect to login.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	service.ControllerFrom(ctx).Logout(ctx)
	flash.Set(c, flash.Success, msgLoggedOut)
	return nil
}

func (h *AuthHandler) ShowPassword(c echo.Context) error {
	p := newPage(c, "Change password", "")
	return c.Render(http.StatusOK, "password", p)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var form passwordForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	p := newPage(c, "Change password", "")
	if err := c.Validate(&form); err != nil {
		return c.Render(formFailed(&p, err, ""), "password", p)
	}

	err := h.api.ChangePassword(c.Request().Context(), form.CurrentPassword, form.Password, form.PasswordConfirmation)
	if expired(c, err) {
		return nil
	}
	if err != nil {
		h.log.Info().Err(err).Msg("password change rejected")
		return c.Render(formFailed(&p, err, "Could not update password"), "password", p)
	}
	return succeeded(c, msgPasswordChanged, service.DashboardPath)
}
