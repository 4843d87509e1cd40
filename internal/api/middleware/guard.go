package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chaldal/admin-console/internal/api/metrics"
	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/service"
)

// RouteGuard gates a view on the session. It resolves the controller's
// one-time check before the view runs, so nothing protected is rendered for
// an anonymous visitor. With no roles given, domain.AdminRoles apply.
func RouteGuard(requiredRoles ...string) echo.MiddlewareFunc {
	if len(requiredRoles) == 0 {
		requiredRoles = domain.AdminRoles
	}
	rbac := RBAC(requiredRoles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := rbac(next)
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctrl := service.ControllerFrom(ctx)
			if ctrl == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session middleware missing")
			}

			ctrl.Init(ctx)
			user := ctrl.User()
			if user == nil {
				metrics.GuardDecisionsTotal.WithLabelValues("login").Inc()
				if NavigatorFrom(c) != nil {
					NavigatorFrom(c).Navigate(service.LoginPath)
					return nil
				}
				return c.Redirect(http.StatusFound, service.LoginPath)
			}

			c.Set("user", user)
			c.Set("role", user.Role)
			if user.HasRole(requiredRoles...) {
				metrics.GuardDecisionsTotal.WithLabelValues("allow").Inc()
			}
			return guarded(c)
		}
	}
}
