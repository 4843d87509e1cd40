package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

type stubProductAPI struct {
	ports.ProductAPI
	calls []string

	createFn func(fields ports.FormFields, images []ports.Upload) (*domain.Product, error)
	updateFn func(id int64, fields ports.FormFields) (*domain.Product, error)
	uploadFn func(id int64, images []ports.Upload) error
	deleted  []int64
}

func (s *stubProductAPI) CreateProduct(_ context.Context, fields ports.FormFields, images []ports.Upload) (*domain.Product, error) {
	s.calls = append(s.calls, "create")
	return s.createFn(fields, images)
}

func (s *stubProductAPI) UpdateProduct(_ context.Context, id int64, fields ports.FormFields) (*domain.Product, error) {
	s.calls = append(s.calls, "update")
	return s.updateFn(id, fields)
}

func (s *stubProductAPI) UploadProductImages(_ context.Context, id int64, images []ports.Upload) error {
	s.calls = append(s.calls, "upload")
	if s.uploadFn == nil {
		return nil
	}
	return s.uploadFn(id, images)
}

func (s *stubProductAPI) DeleteProductImage(_ context.Context, _, imageID int64) error {
	s.calls = append(s.calls, "delete-image")
	s.deleted = append(s.deleted, imageID)
	return nil
}

func TestProductService_CreateSendsPrimaryFirstAndPricing(t *testing.T) {
	var gotFields ports.FormFields
	var gotImages []ports.Upload
	api := &stubProductAPI{createFn: func(fields ports.FormFields, images []ports.Upload) (*domain.Product, error) {
		gotFields, gotImages = fields, images
		return &domain.Product{ID: 5}, nil
	}}
	svc := NewProductService(api, zerolog.Nop())

	set := domain.NewImageSet(nil)
	set.Add("a.jpg")
	set.Add("b.jpg")
	if err := set.SetPrimary(1); err != nil {
		t.Fatal(err)
	}

	fields := ports.FormFields{{"name", "Rice"}, {"base_price", "100"}, {"discount_percentage", "25"}, {"sale_price", "100"}}
	p, err := svc.Create(context.Background(), ProductDraft{
		Fields: fields,
		Images: set,
		Files:  map[string][]byte{"a.jpg": []byte("A"), "b.jpg": []byte("B")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != 5 {
		t.Fatalf("unexpected product %+v", p)
	}
	if len(gotImages) != 2 || gotImages[0].Filename != "b.jpg" {
		t.Fatalf("expected primary b.jpg first, got %+v", gotImages)
	}
	if got := gotFields.Get("sale_price"); got != "75.00" {
		t.Fatalf("expected sale_price 75.00, got %s", got)
	}
}

func TestProductService_CreateRejectsBadDiscount(t *testing.T) {
	api := &stubProductAPI{}
	svc := NewProductService(api, zerolog.Nop())

	_, err := svc.Create(context.Background(), ProductDraft{Fields: ports.FormFields{{"base_price", "100"}, {"discount_percentage", "120"}}})
	if !errors.Is(err, domain.ErrInvalidDiscount) {
		t.Fatalf("expected ErrInvalidDiscount, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no API calls, got %v", api.calls)
	}
}

func TestProductService_UpdateSequence(t *testing.T) {
	var gotFields ports.FormFields
	api := &stubProductAPI{updateFn: func(id int64, fields ports.FormFields) (*domain.Product, error) {
		gotFields = fields
		return &domain.Product{ID: id}, nil
	}}
	svc := NewProductService(api, zerolog.Nop())

	set := domain.NewImageSet([]domain.ProductImage{{ID: 10, IsPrimary: true}, {ID: 11}})
	_ = set.Remove(0)
	set.Add("new.png")

	_, err := svc.Update(context.Background(), 3, ProductDraft{
		Fields: ports.FormFields{{"name", "Rice"}},
		Images: set,
		Files:  map[string][]byte{"new.png": []byte("N")},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	want := []string{"update", "upload", "delete-image"}
	if len(api.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, api.calls)
	}
	for i := range want {
		if api.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, api.calls)
		}
	}
	if len(api.deleted) != 1 || api.deleted[0] != 10 {
		t.Fatalf("expected image 10 deleted, got %v", api.deleted)
	}
	if got := gotFields.Get("primary_image_id"); got != "11" {
		t.Fatalf("expected promoted primary 11, got %q", got)
	}
}

func TestProductService_UpdateFailureStopsSequence(t *testing.T) {
	api := &stubProductAPI{updateFn: func(int64, ports.FormFields) (*domain.Product, error) {
		return nil, domain.ErrValidation
	}}
	svc := NewProductService(api, zerolog.Nop())

	set := domain.NewImageSet([]domain.ProductImage{{ID: 10}})
	_ = set.Remove(0)
	set.Add("x.png")

	_, err := svc.Update(context.Background(), 3, ProductDraft{Images: set, Files: map[string][]byte{"x.png": {1}}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(api.calls) != 1 {
		t.Fatalf("expected dependent calls to be skipped, got %v", api.calls)
	}
}

func TestProductService_UploadFailureSkipsDeletes(t *testing.T) {
	api := &stubProductAPI{
		updateFn: func(id int64, _ ports.FormFields) (*domain.Product, error) { return &domain.Product{ID: id}, nil },
		uploadFn: func(int64, []ports.Upload) error { return domain.ErrUpstream },
	}
	svc := NewProductService(api, zerolog.Nop())

	set := domain.NewImageSet([]domain.ProductImage{{ID: 10}})
	_ = set.Remove(0)
	set.Add("x.png")

	if _, err := svc.Update(context.Background(), 3, ProductDraft{Images: set, Files: map[string][]byte{"x.png": {1}}}); err == nil {
		t.Fatal("expected upload error")
	}
	if len(api.deleted) != 0 {
		t.Fatalf("expected no deletions after failed upload, got %v", api.deleted)
	}
}

type stubCategoryAPI struct {
	ports.CategoryAPI
	categories []domain.Category
	updates    []domain.OrderUpdate
}

func (s *stubCategoryAPI) ListCategories(context.Context, ports.ListQuery) ([]domain.Category, error) {
	return s.categories, nil
}

func (s *stubCategoryAPI) UpdateCategoryOrder(_ context.Context, updates []domain.OrderUpdate) error {
	s.updates = updates
	return nil
}

func TestCategoryService_Move(t *testing.T) {
	parent := int64(1)
	api := &stubCategoryAPI{categories: []domain.Category{
		{ID: 1, Order: 1},
		{ID: 2, Order: 1, ParentID: &parent},
		{ID: 3, Order: 2, ParentID: &parent},
		{ID: 4, Order: 2},
	}}
	svc := NewCategoryService(api, zerolog.Nop())

	if err := svc.Move(context.Background(), 3, domain.MoveUp); err != nil {
		t.Fatalf("move: %v", err)
	}
	if len(api.updates) != 2 || api.updates[0] != (domain.OrderUpdate{ID: 3, Order: 1}) || api.updates[1] != (domain.OrderUpdate{ID: 2, Order: 2}) {
		t.Fatalf("unexpected updates %+v", api.updates)
	}

	api.updates = nil
	if err := svc.Move(context.Background(), 2, domain.MoveUp); !errors.Is(err, domain.ErrCannotMove) {
		t.Fatalf("expected ErrCannotMove, got %v", err)
	}
	if api.updates != nil {
		t.Fatal("expected no order update")
	}
}
