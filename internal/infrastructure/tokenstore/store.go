// Package tokenstore keeps each browser's admin session in a server-side slot
// keyed by an opaque session cookie, and mirrors the token into a second
// cookie that request-time checks can read without touching the backend.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

const (
	// SessionCookie identifies the browser; its value keys the slot.
	SessionCookie = "admin_sid"
	// TokenCookie mirrors the API token.
	TokenCookie = "admin_token"

	tokenCookieMaxAge = 86400
	defaultTTL        = 30 * 24 * time.Hour
	defaultPrefix     = "admin:session:"
)

// ErrMissing is returned by a Backend when the slot does not exist.
var ErrMissing = errors.New("tokenstore: slot not found")

// Backend persists opaque slots with an expiry.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Options struct {
	// TTL bounds how long an untouched slot survives in the backend.
	TTL time.Duration
	// Secure marks both cookies Secure.
	Secure bool
	// Prefix is prepended to the session id to form the backend key.
	Prefix string
}

// Store is the process-wide half of the token store.
type Store struct {
	backend Backend
	opts    Options
	log     zerolog.Logger
}

func New(backend Backend, opts Options, log zerolog.Logger) *Store {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}
	return &Store{backend: backend, opts: opts, log: log}
}

// Bind returns the store handle for the browser behind c, issuing a session
// cookie when the request carries none.
func (s *Store) Bind(c echo.Context) *Handle {
	sid := ""
	if ck, err := c.Cookie(SessionCookie); err == nil {
		if _, perr := uuid.Parse(ck.Value); perr == nil {
			sid = ck.Value
		}
	}
	if sid == "" {
		sid = uuid.NewString()
		c.SetCookie(&http.Cookie{
			Name:     SessionCookie,
			Value:    sid,
			Path:     "/",
			MaxAge:   int(s.opts.TTL / time.Second),
			HttpOnly: true,
			Secure:   s.opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		// later readers in the same request see the new id
		c.Request().AddCookie(&http.Cookie{Name: SessionCookie, Value: sid})
	}
	return &Handle{store: s, c: c, sid: sid}
}

// record is the persisted slot layout.
type record struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user,omitempty"`
}

// Handle is the token store bound to one browser session.
type Handle struct {
	store *Store
	c     echo.Context
	sid   string
}

var _ ports.TokenStore = (*Handle)(nil)

// SessionID is the browser session id the handle is bound to.
func (h *Handle) SessionID() string { return h.sid }

func (h *Handle) key() string { return h.store.opts.Prefix + h.sid }

func (h *Handle) Save(ctx context.Context, token string, user *domain.User) error {
	if token == "" {
		return fmt.Errorf("tokenstore: empty token")
	}
	raw, err := json.Marshal(record{Token: token, User: user})
	if err != nil {
		return fmt.Errorf("tokenstore: encode: %w", err)
	}
	if err := h.store.backend.Set(ctx, h.key(), raw, h.store.opts.TTL); err != nil {
		return fmt.Errorf("tokenstore: save: %w", err)
	}
	h.setTokenCookie(token, tokenCookieMaxAge)
	return nil
}

func (h *Handle) Read(ctx context.Context) (domain.Session, error) {
	raw, err := h.store.backend.Get(ctx, h.key())
	if errors.Is(err, ErrMissing) {
		if _, cerr := h.c.Cookie(TokenCookie); cerr == nil {
			h.setTokenCookie("", -1)
		}
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("tokenstore: read: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Token == "" {
		h.store.log.Warn().Str("sid", h.sid).Msg("tokenstore: discarding malformed session slot")
		if cerr := h.Clear(ctx); cerr != nil {
			return domain.Session{}, cerr
		}
		return domain.Session{}, nil
	}
	return domain.Session{Token: rec.Token, User: rec.User}, nil
}

func (h *Handle) Clear(ctx context.Context) error {
	h.setTokenCookie("", -1)
	if err := h.store.backend.Delete(ctx, h.key()); err != nil && !errors.Is(err, ErrMissing) {
		return fmt.Errorf("tokenstore: clear: %w", err)
	}
	return nil
}

func (h *Handle) setTokenCookie(value string, maxAge int) {
	h.c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.store.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
