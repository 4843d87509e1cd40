package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

// ProductDraft is a submitted product form: its fields, the image set as
// edited in the form and the files behind the set's pending uploads.
type ProductDraft struct {
	Fields ports.FormFields
	Images *domain.ImageSet
	// Files maps an upload name in Images to its content.
	Files map[string][]byte
}

// ProductService runs the multi-call product save sequences.
type ProductService struct {
	api ports.ProductAPI
	log zerolog.Logger
}

func NewProductService(api ports.ProductAPI, log zerolog.Logger) *ProductService {
	return &ProductService{api: api, log: log}
}

// Create posts the product together with its images. The primary upload is
// sent first since the API makes the first image primary.
func (s *ProductService) Create(ctx context.Context, d ProductDraft) (*domain.Product, error) {
	if err := applyPricing(&d.Fields); err != nil {
		return nil, err
	}
	uploads := s.uploads(d, true)
	p, err := s.api.CreateProduct(ctx, d.Fields, uploads)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info().Int64("product_id", p.ID).Int("images", len(uploads)).Msg("product created")
	return p, nil
}

// Update saves the fields, then uploads new images, then deletes removed
// ones. Each step runs only when the one before it succeeded.
func (s *ProductService) Update(ctx context.Context, id int64, d ProductDraft) (*domain.Product, error) {
	if err := applyPricing(&d.Fields); err != nil {
		return nil, err
	}
	if d.Images != nil {
		if primary, ok := d.Images.Primary(); ok && primary.Upload == "" && primary.ID != 0 {
			d.Fields.Add("primary_image_id", strconv.FormatInt(primary.ID, 10))
		}
	}

	p, err := s.api.UpdateProduct(ctx, id, d.Fields)
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	if uploads := s.uploads(d, false); len(uploads) > 0 {
		if err := s.api.UploadProductImages(ctx, id, uploads); err != nil {
			return p, fmt.Errorf("upload images for product %d: %w", id, err)
		}
	}

	if d.Images != nil {
		for _, imageID := range d.Images.Deleted() {
			if err := s.api.DeleteProductImage(ctx, id, imageID); err != nil {
				return p, fmt.Errorf("delete image %d of product %d: %w", imageID, id, err)
			}
		}
	}

	s.log.Info().Int64("product_id", id).Msg("product updated")
	return p, nil
}

func (s *ProductService) uploads(d ProductDraft, primaryFirst bool) []ports.Upload {
	if d.Images == nil {
		return nil
	}
	var out []ports.Upload
	for _, slot := range d.Images.Slots() {
		if slot.Upload == "" {
			continue
		}
		content, ok := d.Files[slot.Upload]
		if !ok {
			s.log.Warn().Str("file", slot.Upload).Msg("product image without content skipped")
			continue
		}
		u := ports.Upload{Field: "images[]", Filename: slot.Upload, Content: content}
		if primaryFirst && slot.IsPrimary {
			out = append([]ports.Upload{u}, out...)
			continue
		}
		out = append(out, u)
	}
	return out
}

// applyPricing recomputes sale_price from base_price and
// discount_percentage when a discount is given.
func applyPricing(fields *ports.FormFields) error {
	baseRaw := fields.Get("base_price")
	pctRaw := fields.Get("discount_percentage")
	if baseRaw == "" || pctRaw == "" {
		return nil
	}
	base, err := strconv.ParseFloat(baseRaw, 64)
	if err != nil {
		return fmt.Errorf("base_price: %w", domain.ErrInvalidPrice)
	}
	pct, err := strconv.ParseFloat(pctRaw, 64)
	if err != nil {
		return fmt.Errorf("discount_percentage: %w", domain.ErrInvalidDiscount)
	}
	if pct == 0 {
		return nil
	}
	sale, err := domain.SalePrice(base, pct)
	if err != nil {
		return err
	}

	value := strconv.FormatFloat(sale, 'f', 2, 64)
	for i, kv := range *fields {
		if kv[0] == "sale_price" {
			(*fields)[i][1] = value
			return nil
		}
	}
	fields.Add("sale_price", value)
	return nil
}

// CategoryService owns operations that need more than one category call.
type CategoryService struct {
	api ports.CategoryAPI
	log zerolog.Logger
}

func NewCategoryService(api ports.CategoryAPI, log zerolog.Logger) *CategoryService {
	return &CategoryService{api: api, log: log}
}

// Move swaps the category with its neighbour among siblings and persists the
// two new order values.
func (s *CategoryService) Move(ctx context.Context, id int64, dir domain.Direction) error {
	all, err := s.api.ListCategories(ctx, ports.ListQuery{})
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	updates, err := domain.SwapOrder(all, id, dir)
	if err != nil {
		return err
	}
	if err := s.api.UpdateCategoryOrder(ctx, updates); err != nil {
		return fmt.Errorf("update category order: %w", err)
	}
	s.log.Info().Int64("category_id", id).Str("direction", string(dir)).Msg("category moved")
	return nil
}
