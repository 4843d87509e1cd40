package apiclient

import (
	"context"
	"net/http"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

var _ ports.CategoryAPI = (*Client)(nil)

func (c *Client) ListCategories(ctx context.Context, q ports.ListQuery) ([]domain.Category, error) {
	data, err := c.get(ctx, "categories.list", "/categories", listValues(q))
	if err != nil {
		return nil, err
	}
	var out []domain.Category
	if err := field(data, "categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParentCategories lists the categories eligible as a parent.
func (c *Client) ParentCategories(ctx context.Context) ([]domain.Category, error) {
	data, err := c.get(ctx, "categories.parents", "/categories/parents-dropdown", nil)
	if err != nil {
		return nil, err
	}
	var out []domain.Category
	if err := field(data, "categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	data, err := c.get(ctx, "categories.get", idPath("categories", id), nil)
	if err != nil {
		return nil, err
	}
	var cat domain.Category
	if err := field(data, "category", &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) CreateCategory(ctx context.Context, fields ports.FormFields, image *ports.Upload) (*domain.Category, error) {
	data, err := c.postForm(ctx, "categories.create", "/categories", fields, single(image))
	if err != nil {
		return nil, err
	}
	var cat domain.Category
	if err := field(data, "category", &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, fields ports.FormFields, image *ports.Upload) (*domain.Category, error) {
	data, err := c.update(ctx, "categories.update", idPath("categories", id), fields, single(image))
	if err != nil {
		return nil, err
	}
	var cat domain.Category
	if err := field(data, "category", &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) SetCategoryActive(ctx context.Context, id int64, active bool) error {
	_, err := c.sendJSON(ctx, "categories.status", http.MethodPost, idPath("categories", id, "status"), map[string]bool{"is_active": active})
	return err
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.delete(ctx, "categories.delete", idPath("categories", id))
}

// UpdateCategoryOrder persists new order values in a single call.
func (c *Client) UpdateCategoryOrder(ctx context.Context, updates []domain.OrderUpdate) error {
	_, err := c.sendJSON(ctx, "categories.reorder", http.MethodPost, "/categories/update-order", map[string][]domain.OrderUpdate{"categories": updates})
	return err
}
