package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
	"github.com/chaldal/admin-console/internal/core/service"
	"github.com/chaldal/admin-console/internal/infrastructure/apiclient"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho(t)
	auth := &stubAuthAPI{
		loginFn: func(ctx context.Context, phone, password string) (*ports.LoginResult, error) {
			if phone != "01700000000" || password != "secret" {
				t.Fatalf("unexpected credentials: %s %s", phone, password)
			}
			return &ports.LoginResult{Token: "new-token", User: testAdmin}, nil
		},
	}
	req := formRequest(http.MethodPost, "/admin/login", url.Values{"phone": {"01700000000"}, "password": {"secret"}})
	fx := newSession(t, e, req, auth, nil)

	if err := NewAuthHandler(auth, zerolog.Nop()).Login(fx.c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if fx.rec.Code != http.StatusFound || fx.rec.Header().Get(echo.HeaderLocation) != service.DashboardPath {
		t.Fatalf("expected redirect to dashboard, got %d %q", fx.rec.Code, fx.rec.Header().Get(echo.HeaderLocation))
	}
	if !fx.ctrl.IsAuthenticated() || fx.store.sess.Token != "new-token" {
		t.Fatalf("session not established: %+v", fx.store.sess)
	}
	if got := flashText(e, fx.rec); got != msgLoggedIn {
		t.Fatalf("expected login flash, got %q", got)
	}
}

func TestAuthHandler_Login_RejectedKeepsPhone(t *testing.T) {
	e := newTestEcho(t)
	auth := &stubAuthAPI{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, &apiclient.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
		},
	}
	req := formRequest(http.MethodPost, "/admin/login", url.Values{"phone": {"01711111111"}, "password": {"hunter22"}})
	fx := newSession(t, e, req, auth, nil)

	if err := NewAuthHandler(auth, zerolog.Nop()).Login(fx.c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := fx.rec.Body.String()
	if fx.rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", fx.rec.Code)
	}
	if !strings.Contains(body, "Invalid credentials") {
		t.Fatalf("server message not shown: %s", body)
	}
	if !strings.Contains(body, `value="01711111111"`) {
		t.Fatalf("phone not preserved")
	}
	if strings.Contains(body, "hunter22") {
		t.Fatalf("password must not be echoed back")
	}
	if fx.ctrl.IsAuthenticated() {
		t.Fatalf("failed login must leave the session anonymous")
	}
}

func TestAuthHandler_Login_ValidatesLocally(t *testing.T) {
	e := newTestEcho(t)
	auth := &stubAuthAPI{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			t.Fatalf("API must not be called for an incomplete form")
			return nil, nil
		},
	}
	req := formRequest(http.MethodPost, "/admin/login", url.Values{"phone": {"01700000000"}})
	fx := newSession(t, e, req, auth, nil)

	if err := NewAuthHandler(auth, zerolog.Nop()).Login(fx.c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if fx.rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", fx.rec.Code)
	}
	if !strings.Contains(fx.rec.Body.String(), "password is required") {
		t.Fatalf("missing field error: %s", fx.rec.Body.String())
	}
}

func TestAuthHandler_ShowLogin_RedirectsWhenAuthenticated(t *testing.T) {
	e := newTestEcho(t)
	fx := newSession(t, e, httptest.NewRequest(http.MethodGet, "/admin/login", nil), nil, testAdmin)

	if err := NewAuthHandler(&stubAuthAPI{}, zerolog.Nop()).ShowLogin(fx.c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if fx.rec.Code != http.StatusFound || fx.rec.Header().Get(echo.HeaderLocation) != service.DashboardPath {
		t.Fatalf("expected redirect to dashboard, got %d", fx.rec.Code)
	}
}

func TestAuthHandler_Logout_ClearsEvenWhenServerFails(t *testing.T) {
	e := newTestEcho(t)
	auth := &stubAuthAPI{
		logoutFn: func(context.Context) error { return domain.ErrUpstream },
	}
	fx := newSession(t, e, httptest.NewRequest(http.MethodPost, "/admin/logout", nil), auth, testAdmin)

	if err := NewAuthHandler(auth, zerolog.Nop()).Logout(fx.c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if fx.ctrl.IsAuthenticated() || fx.store.sess.Token != "" {
		t.Fatalf("session must be cleared locally")
	}
	if fx.nav.Target() != service.LoginPath {
		t.Fatalf("expected navigation to login, got %q", fx.nav.Target())
	}
	if got := flashText(e, fx.rec); got != msgLoggedOut {
		t.Fatalf("expected logout flash, got %q", got)
	}
}

func TestAuthHandler_ChangePassword_ShowsAPIFieldError(t *testing.T) {
	e := newTestEcho(t)
	auth := &stubAuthAPI{
		changePasswordFn: func(_ context.Context, current, password, confirmation string) error {
			return &apiclient.APIError{
				Status:  http.StatusUnprocessableEntity,
				Message: "The given data was invalid.",
				Errors:  apiclient.FieldErrors{{Field: "current_password", Messages: []string{"The current password is incorrect."}}},
			}
		},
	}
	req := formRequest(http.MethodPost, "/admin/password", url.Values{
		"current_password":      {"wrong"},
		"password":              {"new-secret"},
		"password_confirmation": {"new-secret"},
	})
	fx := newSession(t, e, req, auth, testAdmin)

	if err := NewAuthHandler(auth, zerolog.Nop()).ChangePassword(fx.c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if fx.rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", fx.rec.Code)
	}
	if !strings.Contains(fx.rec.Body.String(), "The current password is incorrect.") {
		t.Fatalf("field error not rendered")
	}
}

func TestAuthHandler_ChangePassword_ConfirmationMustMatch(t *testing.T) {
	e := newTestEcho(t)
	req := formRequest(http.MethodPost, "/admin/password", url.Values{
		"current_password":      {"old-secret"},
		"password":              {"new-secret"},
		"password_confirmation": {"other"},
	})
	fx := newSession(t, e, req, nil, testAdmin)

	if err := NewAuthHandler(&stubAuthAPI{}, zerolog.Nop()).ChangePassword(fx.c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if fx.rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", fx.rec.Code)
	}
	if !strings.Contains(fx.rec.Body.String(), "password confirmation must match password") {
		t.Fatalf("confirmation error not rendered: %s", fx.rec.Body.String())
	}
}
