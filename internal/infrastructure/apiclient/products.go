package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

var _ ports.ProductAPI = (*Client)(nil)

func listValues(q ports.ListQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.CategoryID > 0 {
		v.Set("category_id", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.BrandID > 0 {
		v.Set("brand_id", strconv.FormatInt(q.BrandID, 10))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.ParentOnly {
		v.Set("parent_only", "1")
	}
	return v
}

func (c *Client) ListProducts(ctx context.Context, q ports.ListQuery) (*domain.Page[domain.Product], error) {
	data, err := c.get(ctx, "products.list", "/products", listValues(q))
	if err != nil {
		return nil, err
	}
	var page domain.Page[domain.Product]
	if err := field(data, "products", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	data, err := c.get(ctx, "products.get", idPath("products", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeProduct(data)
}

// CreateProduct posts the product with its initial images in one multipart
// body. The first image becomes the primary one server-side.
func (c *Client) CreateProduct(ctx context.Context, fields ports.FormFields, images []ports.Upload) (*domain.Product, error) {
	data, err := c.postForm(ctx, "products.create", "/products", fields, images)
	if err != nil {
		return nil, err
	}
	return decodeProduct(data)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, fields ports.FormFields) (*domain.Product, error) {
	data, err := c.update(ctx, "products.update", idPath("products", id), fields, nil)
	if err != nil {
		return nil, err
	}
	return decodeProduct(data)
}

func (c *Client) SetProductStatus(ctx context.Context, id int64, status string) error {
	_, err := c.sendJSON(ctx, "products.status", http.MethodPost, idPath("products", id, "status"), map[string]string{"status": status})
	return err
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.delete(ctx, "products.delete", idPath("products", id))
}

func (c *Client) UploadProductImages(ctx context.Context, id int64, images []ports.Upload) error {
	if len(images) == 0 {
		return nil
	}
	_, err := c.postForm(ctx, "products.images.upload", idPath("products", id, "images"), nil, images)
	return err
}

func (c *Client) DeleteProductImage(ctx context.Context, productID, imageID int64) error {
	return c.delete(ctx, "products.images.delete", idPath("products", productID, "images", strconv.FormatInt(imageID, 10)))
}

// decodeProduct accepts both {"product": {...}} and a bare product object.
func decodeProduct(data []byte) (*domain.Product, error) {
	var p domain.Product
	if err := field(data, "product", &p); err == nil {
		return &p, nil
	}
	if err := decodeInto(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
