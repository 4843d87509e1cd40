package ports

import (
	"context"

	"github.com/chaldal/admin-console/internal/core/domain"
)

// ListQuery carries pagination and the optional listing filters. Zero values
// are left out of the request.
type ListQuery struct {
	Page       int
	PerPage    int
	Status     string
	CategoryID int64
	BrandID    int64
	Search     string
	ParentOnly bool
}

// Upload is a file forwarded to the API in a multipart body.
type Upload struct {
	Field    string
	Filename string
	Content  []byte
}

// FormFields is an ordered list of multipart text fields.
type FormFields [][2]string

// Add appends a field.
func (f *FormFields) Add(name, value string) {
	*f = append(*f, [2]string{name, value})
}

// Get returns the first value of name.
func (f FormFields) Get(name string) string {
	for _, kv := range f {
		if kv[0] == name {
			return kv[1]
		}
	}
	return ""
}

type ProductAPI interface {
	ListProducts(ctx context.Context, q ListQuery) (*domain.Page[domain.Product], error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, fields FormFields, images []Upload) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, fields FormFields) (*domain.Product, error)
	SetProductStatus(ctx context.Context, id int64, status string) error
	DeleteProduct(ctx context.Context, id int64) error
	UploadProductImages(ctx context.Context, id int64, images []Upload) error
	DeleteProductImage(ctx context.Context, productID, imageID int64) error
}

type CategoryAPI interface {
	ListCategories(ctx context.Context, q ListQuery) ([]domain.Category, error)
	ParentCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, fields FormFields, image *Upload) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, fields FormFields, image *Upload) (*domain.Category, error)
	SetCategoryActive(ctx context.Context, id int64, active bool) error
	DeleteCategory(ctx context.Context, id int64) error
	UpdateCategoryOrder(ctx context.Context, updates []domain.OrderUpdate) error
}

type BrandAPI interface {
	ListBrands(ctx context.Context, q ListQuery) (*domain.Page[domain.Brand], error)
	GetBrand(ctx context.Context, id int64) (*domain.Brand, error)
	CreateBrand(ctx context.Context, fields FormFields, logo *Upload) (*domain.Brand, error)
	UpdateBrand(ctx context.Context, id int64, fields FormFields, logo *Upload) (*domain.Brand, error)
	SetBrandActive(ctx context.Context, id int64, active bool) error
	DeleteBrand(ctx context.Context, id int64) error
}

// AddressAPI manages the addresses of the signed-in account.
type AddressAPI interface {
	ListAddresses(ctx context.Context) ([]domain.Address, error)
	CreateAddress(ctx context.Context, a domain.Address) (*domain.Address, error)
	UpdateAddress(ctx context.Context, id int64, a domain.Address) (*domain.Address, error)
	DeleteAddress(ctx context.Context, id int64) error
	SetDefaultAddress(ctx context.Context, id int64) error
}

type DashboardAPI interface {
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
	SalesChart(ctx context.Context, period string) ([]domain.SalesPoint, error)
}
