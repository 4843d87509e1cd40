package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
	"github.com/chaldal/admin-console/internal/core/service"
	"github.com/chaldal/admin-console/internal/infrastructure/tokenstore"
)

type stubAuthAPI struct {
	mu            sync.Mutex
	currentCalls  int
	currentUserFn func(ctx context.Context) (*domain.User, error)
}

func (s *stubAuthAPI) Login(context.Context, string, string) (*ports.LoginResult, error) {
	return nil, errors.New("login not stubbed")
}

func (s *stubAuthAPI) CurrentUser(ctx context.Context) (*domain.User, error) {
	s.mu.Lock()
	s.currentCalls++
	s.mu.Unlock()
	if s.currentUserFn == nil {
		return nil, errors.New("current user not stubbed")
	}
	return s.currentUserFn(ctx)
}

func (s *stubAuthAPI) Logout(context.Context) error { return nil }

func (s *stubAuthAPI) ChangePassword(context.Context, string, string, string) error { return nil }

type guardEnv struct {
	e       *echo.Echo
	backend *tokenstore.MemoryBackend
	api     *stubAuthAPI
	sid     string
}

func newGuardEnv(t *testing.T) *guardEnv {
	t.Helper()
	env := &guardEnv{
		e:       echo.New(),
		backend: tokenstore.NewMemoryBackend(),
		api:     &stubAuthAPI{},
		sid:     uuid.NewString(),
	}
	return env
}

func (env *guardEnv) seed(t *testing.T, token string, user *domain.User) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"token": token, "user": user})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := env.backend.Set(context.Background(), "admin:session:"+env.sid, raw, time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func (env *guardEnv) serve(t *testing.T, path string, view echo.HandlerFunc, roles ...string) *httptest.ResponseRecorder {
	t.Helper()
	store := tokenstore.New(env.backend, tokenstore.Options{}, zerolog.Nop())
	chain := Session(SessionConfig{Store: store, API: env.api, Log: zerolog.Nop()})(RouteGuard(roles...)(view))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: tokenstore.SessionCookie, Value: env.sid})
	rec := httptest.NewRecorder()
	if err := chain(env.e.NewContext(req, rec)); err != nil {
		env.e.HTTPErrorHandler(err, env.e.NewContext(req, rec))
	}
	return rec
}

func TestRouteGuard_AnonymousRedirectsWithoutRendering(t *testing.T) {
	env := newGuardEnv(t)
	rec := env.serve(t, "/admin/products", func(c echo.Context) error {
		t.Fatalf("protected view rendered for anonymous visitor")
		return nil
	})

	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != service.LoginPath {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if env.api.currentCalls != 0 {
		t.Fatalf("no token means no verification call, got %d", env.api.currentCalls)
	}
}

func TestRouteGuard_VerifiedUserReachesView(t *testing.T) {
	env := newGuardEnv(t)
	env.seed(t, "tok", &domain.User{ID: 1, Name: "cached", Role: domain.RoleAdmin})
	env.api.currentUserFn = func(context.Context) (*domain.User, error) {
		return &domain.User{ID: 1, Name: "fresh", Role: domain.RoleAdmin}, nil
	}

	rec := env.serve(t, "/admin/products", func(c echo.Context) error {
		ctrl := service.ControllerFrom(c.Request().Context())
		if ctrl.State() != domain.StateAuthenticated {
			t.Fatalf("view observed state %s", ctrl.State())
		}
		u, _ := c.Get("user").(*domain.User)
		if u == nil || u.Name != "fresh" {
			t.Fatalf("expected verified user on context, got %+v", u)
		}
		return c.String(http.StatusOK, "products")
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouteGuard_RoleMismatchRedirectsToDashboard(t *testing.T) {
	env := newGuardEnv(t)
	env.seed(t, "tok", &domain.User{ID: 2, Role: domain.RoleManager})
	env.api.currentUserFn = func(context.Context) (*domain.User, error) {
		return &domain.User{ID: 2, Role: domain.RoleManager}, nil
	}

	rec := env.serve(t, "/admin/settings", func(c echo.Context) error {
		t.Fatalf("view must not run for a disallowed role")
		return nil
	}, domain.RoleAdmin)

	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != service.DashboardPath {
		t.Fatalf("expected redirect to dashboard, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestRouteGuard_RejectedTokenRedirectsOnce(t *testing.T) {
	env := newGuardEnv(t)
	env.seed(t, "stale", &domain.User{ID: 3, Role: domain.RoleAdmin})
	env.api.currentUserFn = func(ctx context.Context) (*domain.User, error) {
		service.ControllerFrom(ctx).Unauthorized(ctx)
		return nil, domain.ErrUnauthorized
	}

	rec := env.serve(t, "/admin/dashboard", func(c echo.Context) error {
		t.Fatalf("view must not run after the token was rejected")
		return nil
	})

	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != service.LoginPath {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if _, err := env.backend.Get(context.Background(), "admin:session:"+env.sid); !errors.Is(err, tokenstore.ErrMissing) {
		t.Fatalf("slot must be cleared, got %v", err)
	}

	var sawFlash bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "admin_flash" && ck.MaxAge > 0 {
			sawFlash = true
		}
	}
	if !sawFlash {
		t.Fatalf("expected session-expired flash cookie")
	}
}

func TestSession_ViewUnauthorizedBecomesRedirect(t *testing.T) {
	env := newGuardEnv(t)
	env.seed(t, "tok", &domain.User{ID: 4, Role: domain.RoleAdmin})
	env.api.currentUserFn = func(context.Context) (*domain.User, error) {
		return &domain.User{ID: 4, Role: domain.RoleAdmin}, nil
	}

	rec := env.serve(t, "/admin/brands", func(c echo.Context) error {
		ctx := c.Request().Context()
		var wg sync.WaitGroup
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				service.ContextAuth{}.Unauthorized(ctx)
			}()
		}
		wg.Wait()
		return domain.ErrUnauthorized
	})

	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != service.LoginPath {
		t.Fatalf("expected one redirect to login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestNavigator_FirstWins(t *testing.T) {
	n := &Navigator{}
	n.Navigate("/admin/login")
	n.Navigate("/admin/dashboard")
	if got := n.Target(); got != "/admin/login" {
		t.Fatalf("expected first target, got %q", got)
	}
}
