package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/api/flash"
	"github.com/chaldal/admin-console/internal/api/view"
	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/service"
	"github.com/chaldal/admin-console/internal/infrastructure/apiclient"
)

// newPage fills the parts of view.Page every view shares.
func newPage(c echo.Context, title, section string) view.Page {
	p := view.Page{Title: title, Section: section}
	if p.Flash = flash.Pending(c); p.Flash == nil {
		p.Flash = flash.Pop(c)
	}
	if ctrl := service.ControllerFrom(c.Request().Context()); ctrl != nil {
		p.User = ctrl.User()
		p.Provisional = ctrl.Provisional()
	}
	return p
}

// expired reports whether the session ended during this request, either
// through one of errs or a concurrent call that hit the 401 interceptor.
// The redirect is already queued, so views just stop.
func expired(c echo.Context, errs ...error) bool {
	for _, err := range errs {
		if errors.Is(err, domain.ErrUnauthorized) {
			return true
		}
	}
	ctrl := service.ControllerFrom(c.Request().Context())
	return ctrl != nil && ctrl.Expired()
}

// actionFailed flashes the message an API error carries and sends the
// browser back. Unauthorized errors are left to the session redirect.
func actionFailed(c echo.Context, log zerolog.Logger, err error, fallback, back string) error {
	if expired(c, err) {
		return nil
	}
	log.Warn().Err(err).Str("path", c.Path()).Msg("action failed")
	flash.Set(c, flash.Error, apiclient.UserMessage(err, fallback))
	return c.Redirect(http.StatusFound, back)
}

// succeeded flashes msg and redirects to next.
func succeeded(c echo.Context, msg, next string) error {
	flash.Set(c, flash.Success, msg)
	return c.Redirect(http.StatusFound, next)
}

// formFailed decides how a failed form submission is shown. Validation
// errors, local or from the API, re-render the form with the input kept;
// anything else becomes the page-level message.
func formFailed(p *view.Page, err error, fallback string) int {
	var fe *FormError
	if errors.As(err, &fe) {
		p.Error = fe.First()
		p.Errors = fe.Map()
		return http.StatusUnprocessableEntity
	}
	if ve := apiclient.ValidationErrors(err); len(ve) > 0 {
		p.Error = ve.First()
		p.Errors = make(map[string]string, len(ve))
		for _, f := range ve {
			if len(f.Messages) > 0 {
				p.Errors[f.Field] = f.Messages[0]
			}
		}
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, domain.ErrInvalidDiscount), errors.Is(err, domain.ErrInvalidPrice):
		p.Error = err.Error()
		return http.StatusUnprocessableEntity
	}
	p.Error = apiclient.UserMessage(err, fallback)
	var ae *apiclient.APIError
	if errors.As(err, &ae) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return id, nil
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

func queryID(c echo.Context, name string) int64 {
	n, _ := strconv.ParseInt(c.QueryParam(name), 10, 64)
	return n
}
