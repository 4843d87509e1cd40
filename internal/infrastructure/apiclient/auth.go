package apiclient

import (
	"context"
	"net/http"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

var _ ports.AuthAPI = (*Client)(nil)

// Login exchanges credentials for a token. It is sent without a credential
// and a 401 here is a plain failure, not a session expiry.
func (c *Client) Login(ctx context.Context, phone, password string) (*ports.LoginResult, error) {
	buf, err := jsonReader(map[string]string{"phone": phone, "password": password})
	if err != nil {
		return nil, err
	}
	data, err := c.send(ctx, request{
		endpoint:    "auth.login",
		method:      http.MethodPost,
		path:        "/login",
		body:        buf,
		contentType: "application/json",
		anonymous:   true,
	})
	if err != nil {
		return nil, err
	}

	var res ports.LoginResult
	if err := decodeInto(data, &res); err != nil {
		return nil, err
	}
	if res.Token == "" || res.User == nil {
		return nil, &APIError{Method: http.MethodPost, Path: "/login", Status: http.StatusOK, Message: "Login response did not include a session", kind: domain.ErrUpstream}
	}
	return &res, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	data, err := c.get(ctx, "auth.user", "/user", nil)
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := field(data, "user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.sendJSON(ctx, "auth.logout", http.MethodPost, "/logout", struct{}{})
	return err
}

func (c *Client) ChangePassword(ctx context.Context, current, password, confirmation string) error {
	_, err := c.sendJSON(ctx, "auth.change_password", http.MethodPost, "/change-password", map[string]string{
		"current_password":      current,
		"password":              password,
		"password_confirmation": confirmation,
	})
	return err
}
