package apiclient

import (
	"context"
	"net/http"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

var _ ports.AddressAPI = (*Client)(nil)

const addressesPath = "/user/addresses"

func (c *Client) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	data, err := c.get(ctx, "addresses.list", addressesPath, nil)
	if err != nil {
		return nil, err
	}
	var out []domain.Address
	if err := field(data, "addresses", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAddress(ctx context.Context, a domain.Address) (*domain.Address, error) {
	data, err := c.sendJSON(ctx, "addresses.create", http.MethodPost, addressesPath, a)
	if err != nil {
		return nil, err
	}
	var out domain.Address
	if err := field(data, "address", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAddress(ctx context.Context, id int64, a domain.Address) (*domain.Address, error) {
	data, err := c.sendJSON(ctx, "addresses.update", http.MethodPut, idPath("user/addresses", id), a)
	if err != nil {
		return nil, err
	}
	var out domain.Address
	if err := field(data, "address", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	return c.delete(ctx, "addresses.delete", idPath("user/addresses", id))
}

func (c *Client) SetDefaultAddress(ctx context.Context, id int64) error {
	_, err := c.sendJSON(ctx, "addresses.set_default", http.MethodPost, idPath("user/addresses", id, "set-default"), struct{}{})
	return err
}
