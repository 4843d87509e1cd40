package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestSetThenPop(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/admin/logout", nil), rec)

	Set(c, Success, "You have been logged out")
	if m := Pending(c); m == nil || m.Text != "You have been logged out" {
		t.Fatalf("pending message = %+v", m)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != cookieName {
		t.Fatalf("expected flash cookie, got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	req.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(req, rec2)

	m := Pop(c2)
	if m == nil || m.Kind != Success || m.Text != "You have been logged out" {
		t.Fatalf("popped = %+v", m)
	}
	expired := rec2.Result().Cookies()
	if len(expired) != 1 || expired[0].MaxAge >= 0 {
		t.Fatalf("flash cookie not expired: %+v", expired)
	}
}

func TestPop_IgnoresGarbage(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "%%%"})
	c := e.NewContext(req, httptest.NewRecorder())

	if m := Pop(c); m != nil {
		t.Fatalf("expected nil, got %+v", m)
	}
}

func TestPop_NoCookie(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if m := Pop(c); m != nil {
		t.Fatalf("expected nil, got %+v", m)
	}
}
