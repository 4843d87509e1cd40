package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/chaldal/admin-console/internal/core/service"
	"github.com/chaldal/admin-console/internal/infrastructure/tokenstore"
)

// EdgeGuard is the coarse, cookie-only check in front of the admin views.
// It never calls the API and does not look at roles; a token cookie that
// decodes as an expired JWT counts as missing.
func EdgeGuard(publicPaths ...string) echo.MiddlewareFunc {
	public := map[string]struct{}{service.LoginPath: {}}
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := strings.TrimRight(c.Request().URL.Path, "/")
			if _, ok := public[path]; ok {
				return next(c)
			}
			ck, err := c.Cookie(tokenstore.TokenCookie)
			if err != nil || !tokenUsable(ck.Value, time.Now()) {
				return c.Redirect(http.StatusFound, service.LoginPath)
			}
			return next(c)
		}
	}
}

// tokenUsable reports whether raw may still be a live credential. Opaque
// tokens are accepted; only a readable exp in the past rejects.
func tokenUsable(raw string, now time.Time) bool {
	if raw == "" {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return false
	}
	return true
}
