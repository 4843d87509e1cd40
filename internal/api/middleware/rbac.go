package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chaldal/admin-console/internal/api/metrics"
	"github.com/chaldal/admin-console/internal/core/service"
)

// RBAC enforces role-based access control on the role the route guard put on
// the context. A denied user is sent to the dashboard; a user denied the
// dashboard itself gets 403.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(allowed) == 0 {
				return next(c)
			}
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; ok {
				return next(c)
			}
			metrics.GuardDecisionsTotal.WithLabelValues("forbidden").Inc()
			if c.Request().URL.Path == service.DashboardPath {
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return c.Redirect(http.StatusFound, service.DashboardPath)
		}
	}
}
