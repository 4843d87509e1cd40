package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/api/view"
	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/service"
)

// errorResponse is the canonical error envelope for the JSON endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the error page for admin views and {"error": "<message>"} elsewhere.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if wantsPage(c) {
			p := view.Page{Title: http.StatusText(code), Data: msg}
			if ctrl := service.ControllerFrom(c.Request().Context()); ctrl != nil {
				p.User = ctrl.User()
			}
			if rerr := c.Render(code, "error", p); rerr == nil {
				return
			} else if !errors.Is(rerr, echo.ErrRendererNotRegistered) {
				log.Error().Err(rerr).Msg("render error page")
			}
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

// wantsPage reports whether the request came from an admin view rather than
// a script.
func wantsPage(c echo.Context) bool {
	path := c.Request().URL.Path
	return strings.HasPrefix(path, "/admin") && !strings.HasPrefix(path, "/admin/api")
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "the API did not answer in time"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, "the API is unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
