// Package flash carries one-shot toast messages across a redirect in a
// short-lived cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	cookieName = "admin_flash"
	maxAge     = 60
	ctxKey     = "flash"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Set queues a message for the next rendered page. A later Set in the same
// request replaces an earlier one.
func Set(c echo.Context, kind Kind, text string) {
	m := Message{Kind: kind, Text: text}
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.Set(ctxKey, &m)
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending message, if any, and expires the cookie.
func Pop(c echo.Context) *Message {
	ck, err := c.Cookie(cookieName)
	if err != nil || ck.Value == "" {
		return nil
	}
	c.SetCookie(&http.Cookie{Name: cookieName, Path: "/", MaxAge: -1, HttpOnly: true})

	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return nil
	}
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil || m.Text == "" {
		return nil
	}
	return &m
}

// Pending returns the message set during this request, if any.
func Pending(c echo.Context) *Message {
	m, _ := c.Get(ctxKey).(*Message)
	return m
}
