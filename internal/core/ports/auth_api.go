package ports

import (
	"context"

	"github.com/chaldal/admin-console/internal/core/domain"
)

// LoginResult is the data part of a successful login response.
type LoginResult struct {
	Token     string       `json:"token"`
	User      *domain.User `json:"user"`
	Abilities []string     `json:"abilities,omitempty"`
}

// AuthAPI is the authentication surface of the remote API.
type AuthAPI interface {
	Login(ctx context.Context, phone, password string) (*LoginResult, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, current, password, confirmation string) error
}
