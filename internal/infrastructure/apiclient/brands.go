package apiclient

import (
	"context"
	"net/http"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

var _ ports.BrandAPI = (*Client)(nil)

func (c *Client) ListBrands(ctx context.Context, q ports.ListQuery) (*domain.Page[domain.Brand], error) {
	data, err := c.get(ctx, "brands.list", "/brands", listValues(q))
	if err != nil {
		return nil, err
	}
	var page domain.Page[domain.Brand]
	if err := field(data, "brands", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetBrand(ctx context.Context, id int64) (*domain.Brand, error) {
	data, err := c.get(ctx, "brands.get", idPath("brands", id), nil)
	if err != nil {
		return nil, err
	}
	var b domain.Brand
	if err := field(data, "brand", &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) CreateBrand(ctx context.Context, fields ports.FormFields, logo *ports.Upload) (*domain.Brand, error) {
	data, err := c.postForm(ctx, "brands.create", "/brands", fields, single(logo))
	if err != nil {
		return nil, err
	}
	var b domain.Brand
	if err := field(data, "brand", &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) UpdateBrand(ctx context.Context, id int64, fields ports.FormFields, logo *ports.Upload) (*domain.Brand, error) {
	data, err := c.update(ctx, "brands.update", idPath("brands", id), fields, single(logo))
	if err != nil {
		return nil, err
	}
	var b domain.Brand
	if err := field(data, "brand", &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) SetBrandActive(ctx context.Context, id int64, active bool) error {
	_, err := c.sendJSON(ctx, "brands.status", http.MethodPost, idPath("brands", id, "status"), map[string]bool{"is_active": active})
	return err
}

func (c *Client) DeleteBrand(ctx context.Context, id int64) error {
	return c.delete(ctx, "brands.delete", idPath("brands", id))
}
