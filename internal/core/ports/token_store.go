package ports

import (
	"context"

	"github.com/chaldal/admin-console/internal/core/domain"
)

// TokenStore is the durable mirror of one browser's session: a persistent
// slot plus a cookie copy of the token that request-time checks can read.
type TokenStore interface {
	// Save writes the token and user to the slot and the token cookie.
	Save(ctx context.Context, token string, user *domain.User) error
	// Read returns the stored session, or an empty one. Malformed stored
	// values are treated as absent and cleared; only I/O failures are errors.
	Read(ctx context.Context) (domain.Session, error)
	// Clear removes the slot and expires the cookie.
	Clear(ctx context.Context) error
}

// Navigator receives navigation requests. Only the first request of a
// request cycle takes effect.
type Navigator interface {
	Navigate(path string)
}
