package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chaldal/admin-console/internal/core/domain"
)

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var out sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestSessionHandler_Show(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		e := newTestEcho(t)
		fx := newSession(t, e, httptest.NewRequest(http.MethodGet, "/admin/api/session", nil), nil, nil)

		if err := NewSessionHandler().Show(fx.c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		got := decodeSession(t, fx.rec)
		if got.Authenticated || got.State != domain.StateAnonymous || got.User != nil {
			t.Fatalf("unexpected session: %+v", got)
		}
	})

	t.Run("verified admin", func(t *testing.T) {
		e := newTestEcho(t)
		fx := newSession(t, e, httptest.NewRequest(http.MethodGet, "/admin/api/session", nil), nil, testAdmin)

		if err := NewSessionHandler().Show(fx.c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		got := decodeSession(t, fx.rec)
		if !got.Authenticated || got.Provisional || got.User == nil || got.User.Phone != testAdmin.Phone {
			t.Fatalf("unexpected session: %+v", got)
		}
	})
}

func TestSessionHandler_Refresh(t *testing.T) {
	t.Run("updates the cached user", func(t *testing.T) {
		e := newTestEcho(t)
		calls := 0
		auth := &stubAuthAPI{currentUserFn: func(context.Context) (*domain.User, error) {
			calls++
			u := *testAdmin
			if calls > 1 {
				u.Name = "Rahim Uddin"
			}
			return &u, nil
		}}
		fx := newSession(t, e, httptest.NewRequest(http.MethodPost, "/admin/api/session/refresh", nil), auth, testAdmin)

		if err := NewSessionHandler().Refresh(fx.c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if fx.rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", fx.rec.Code)
		}
		if got := decodeSession(t, fx.rec); got.User == nil || got.User.Name != "Rahim Uddin" {
			t.Fatalf("user not refreshed: %+v", got)
		}
		if sess, _ := fx.store.Read(context.Background()); sess.User.Name != "Rahim Uddin" {
			t.Fatalf("store not updated: %+v", sess.User)
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		e := newTestEcho(t)
		calls := 0
		auth := &stubAuthAPI{currentUserFn: func(context.Context) (*domain.User, error) {
			calls++
			if calls > 1 {
				return nil, fmt.Errorf("current user: %w", domain.ErrUnauthorized)
			}
			return testAdmin, nil
		}}
		fx := newSession(t, e, httptest.NewRequest(http.MethodPost, "/admin/api/session/refresh", nil), auth, testAdmin)

		if err := NewSessionHandler().Refresh(fx.c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if fx.rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", fx.rec.Code)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		e := newTestEcho(t)
		fx := newSession(t, e, httptest.NewRequest(http.MethodPost, "/admin/api/session/refresh", nil), nil, nil)

		if err := NewSessionHandler().Refresh(fx.c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if fx.rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", fx.rec.Code)
		}
	})
}
