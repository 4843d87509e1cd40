package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/api/metrics"
	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

const (
	// LoginPath is where anonymous visitors are sent.
	LoginPath = "/admin/login"
	// DashboardPath is the landing view after login.
	DashboardPath = "/admin/dashboard"
)

const (
	msgLoginFailed       = "Login failed"
	msgMissingCredential = "Phone and password are required"
)

// Controller is the single source of truth for who is logged in during one
// browser request. Its state machine:
//
//	Initializing -> Anonymous | Authenticated   (Init)
//	Anonymous    -> Authenticated               (Login)
//	Authenticated -> Anonymous                  (Logout, 401 from the API)
//
// All methods are safe for concurrent use; views fan out API calls that share
// one controller.
type Controller struct {
	api   ports.AuthAPI
	store ports.TokenStore
	nav   ports.Navigator
	log   zerolog.Logger

	initOnce sync.Once

	mu          sync.RWMutex
	state       domain.SessionState
	user        *domain.User
	provisional bool
	// expired is set by the first Unauthorized call; later ones are no-ops
	// until a new login.
	expired bool
}

func NewController(api ports.AuthAPI, store ports.TokenStore, nav ports.Navigator, log zerolog.Logger) *Controller {
	return &Controller{
		api:   api,
		store: store,
		nav:   nav,
		log:   log,
		state: domain.StateInitializing,
	}
}

// Init performs the one-time check. Later calls return immediately.
func (c *Controller) Init(ctx context.Context) {
	c.initOnce.Do(func() { c.init(ctx) })
}

func (c *Controller) init(ctx context.Context) {
	sess, err := c.store.Read(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("session: token store unavailable")
	}
	if !sess.HasToken() {
		c.setAnonymous()
		return
	}

	if sess.User != nil {
		c.mu.Lock()
		if c.state == domain.StateInitializing {
			c.user = sess.User
			c.state = domain.StateAuthenticated
			c.provisional = true
		}
		c.mu.Unlock()
	}

	err = c.RefreshCurrentUser(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnauthorized):
		// the 401 interceptor already ended the session
	case sess.User == nil:
		c.log.Warn().Err(err).Msg("session: verification failed without cached user")
		if cerr := c.store.Clear(ctx); cerr != nil {
			c.log.Error().Err(cerr).Msg("session: clear token store")
		}
		c.setAnonymous()
	default:
		c.log.Warn().Err(err).Msg("session: verification failed, keeping cached user")
	}

	// Unauthorized may have raced ahead of the cached user being applied.
	c.mu.Lock()
	if c.state == domain.StateInitializing {
		c.state = domain.StateAnonymous
	}
	c.mu.Unlock()
}

// Login exchanges credentials for a session. It never returns an error: on
// failure the state is untouched and msg explains why.
func (c *Controller) Login(ctx context.Context, phone, password string) (ok bool, msg string) {
	if phone == "" || password == "" {
		return false, msgMissingCredential
	}

	res, err := c.api.Login(c.bind(ctx), phone, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		c.log.Info().Err(err).Str("phone", phone).Msg("session: login rejected")
		return false, userMessage(err, msgLoginFailed)
	}

	if err := c.store.Save(ctx, res.Token, res.User); err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		c.log.Error().Err(err).Msg("session: persist login")
		return false, msgLoginFailed
	}

	c.mu.Lock()
	c.user = res.User
	c.state = domain.StateAuthenticated
	c.provisional = false
	c.expired = false
	c.mu.Unlock()

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.log.Info().Int64("user_id", res.User.ID).Str("role", res.User.Role).Msg("session: logged in")
	return true, ""
}

// Logout ends the session locally regardless of whether the server call
// succeeds, then navigates to the login view.
func (c *Controller) Logout(ctx context.Context) {
	if c.Token(ctx) != "" {
		if err := c.api.Logout(c.bind(ctx)); err != nil {
			c.log.Warn().Err(err).Msg("session: server logout failed, clearing locally")
		}
	}
	if err := c.store.Clear(ctx); err != nil {
		c.log.Error().Err(err).Msg("session: clear token store")
	}
	c.setAnonymous()
	c.navigate(LoginPath)
}

// RefreshCurrentUser re-fetches the current user and replaces the in-memory
// and persisted copies. A failure leaves the session as it was.
func (c *Controller) RefreshCurrentUser(ctx context.Context) error {
	token := c.Token(ctx)
	if token == "" {
		return nil
	}

	user, err := c.api.CurrentUser(c.bind(ctx))
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.expired {
		c.mu.Unlock()
		return domain.ErrUnauthorized
	}
	c.user = user
	c.state = domain.StateAuthenticated
	c.provisional = false
	c.mu.Unlock()

	if err := c.store.Save(ctx, token, user); err != nil {
		c.log.Error().Err(err).Msg("session: persist refreshed user")
	}
	return nil
}

// Unauthorized ends the session after the API rejected the token. Only the
// first call per controller clears the store and navigates.
func (c *Controller) Unauthorized(ctx context.Context) {
	c.mu.Lock()
	if c.expired {
		c.mu.Unlock()
		return
	}
	c.expired = true
	c.user = nil
	c.provisional = false
	c.state = domain.StateAnonymous
	c.mu.Unlock()

	metrics.SessionsExpiredTotal.Inc()
	if err := c.store.Clear(ctx); err != nil {
		c.log.Error().Err(err).Msg("session: clear token store")
	}
	c.navigate(LoginPath)
}

// Token reads the bearer token from the token store.
func (c *Controller) Token(ctx context.Context) string {
	c.mu.RLock()
	expired := c.expired
	c.mu.RUnlock()
	if expired {
		return ""
	}
	sess, err := c.store.Read(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("session: read token")
		return ""
	}
	return sess.Token
}

func (c *Controller) State() domain.SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// User returns a copy of the current user, or nil when anonymous.
func (c *Controller) User() *domain.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user != nil
}

// Provisional reports whether the user comes from the cache and has not been
// confirmed by the API yet.
func (c *Controller) Provisional() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.provisional
}

// Expired reports whether the API rejected the session during this request.
func (c *Controller) Expired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expired
}

func (c *Controller) setAnonymous() {
	c.mu.Lock()
	c.user = nil
	c.provisional = false
	c.state = domain.StateAnonymous
	c.mu.Unlock()
}

func (c *Controller) navigate(path string) {
	if c.nav != nil {
		c.nav.Navigate(path)
	}
}

// bind makes sure API calls issued by the controller itself carry it.
func (c *Controller) bind(ctx context.Context) context.Context {
	if ControllerFrom(ctx) == c {
		return ctx
	}
	return WithController(ctx, c)
}

type userMessager interface {
	UserMessage(fallback string) string
}

// userMessage prefers the message an API error carries. Transport failures
// fall back to the generic text.
func userMessage(err error, fallback string) string {
	var um userMessager
	if errors.As(err, &um) {
		return um.UserMessage(fallback)
	}
	return fallback
}
