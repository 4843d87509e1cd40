package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/api/flash"
	"github.com/chaldal/admin-console/internal/core/ports"
	"github.com/chaldal/admin-console/internal/core/service"
	"github.com/chaldal/admin-console/internal/infrastructure/tokenstore"
)

const msgSessionExpired = "Your session has expired. Please log in again."

// SessionConfig holds what Session needs to build a controller per request.
type SessionConfig struct {
	Store *tokenstore.Store
	API   ports.AuthAPI
	Log   zerolog.Logger
}

// Session binds a Controller and a Navigator to the request. After the view
// returns, a recorded navigation becomes a single redirect unless the view
// already wrote a response.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			nav := &Navigator{}
			log := cfg.Log.With().Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).Logger()
			ctrl := service.NewController(cfg.API, cfg.Store.Bind(c), nav, log)

			req := c.Request()
			c.SetRequest(req.WithContext(service.WithController(req.Context(), ctrl)))
			c.Set(navigatorKey, nav)

			err := next(c)

			target := nav.Target()
			if target == "" || c.Response().Committed {
				return err
			}
			if ctrl.Expired() {
				flash.Set(c, flash.Error, msgSessionExpired)
			}
			if err != nil {
				log.Debug().Err(err).Str("redirect", target).Msg("session: view error superseded by navigation")
			}
			return c.Redirect(http.StatusFound, target)
		}
	}
}
