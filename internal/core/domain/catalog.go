package domain

const (
	ProductActive   = "active"
	ProductInactive = "inactive"
	ProductDraft    = "draft"
)

// Ref is the {id, name} projection the API embeds for related records.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductImage is an uploaded image attached to a product. Image is a path
// relative to the storage base URL.
type ProductImage struct {
	ID        int64  `json:"id,omitempty"`
	ProductID int64  `json:"product_id,omitempty"`
	Image     string `json:"image"`
	IsPrimary bool   `json:"is_primary"`
}

type Product struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	NameBn             string         `json:"name_bn,omitempty"`
	Slug               string         `json:"slug"`
	Description        string         `json:"description,omitempty"`
	DescriptionBn      string         `json:"description_bn,omitempty"`
	CategoryID         int64          `json:"category_id"`
	Category           *Ref           `json:"category,omitempty"`
	BrandID            *int64         `json:"brand_id,omitempty"`
	Brand              *Ref           `json:"brand,omitempty"`
	UnitID             *int64         `json:"unit_id,omitempty"`
	Images             []ProductImage `json:"images"`
	SKU                string         `json:"sku"`
	Barcode            string         `json:"barcode,omitempty"`
	BasePrice          float64        `json:"base_price"`
	SalePrice          float64        `json:"sale_price"`
	DiscountPercentage float64        `json:"discount_percentage,omitempty"`
	Weight             float64        `json:"weight,omitempty"`
	IsVATApplicable    bool           `json:"is_vat_applicable"`
	VATPercentage      float64        `json:"vat_percentage,omitempty"`
	IsFeatured         bool           `json:"is_featured"`
	IsPopular          bool           `json:"is_popular"`
	StockAlertQuantity int            `json:"stock_alert_quantity,omitempty"`
	Status             string         `json:"status"`
	CurrentStock       int            `json:"current_stock"`
	MetaTitle          string         `json:"meta_title,omitempty"`
	MetaDescription    string         `json:"meta_description,omitempty"`
	MetaKeywords       string         `json:"meta_keywords,omitempty"`
}

// PrimaryImage returns the image flagged primary, falling back to the first.
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

type Category struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	NameBn        string `json:"name_bn,omitempty"`
	Slug          string `json:"slug"`
	Description   string `json:"description,omitempty"`
	DescriptionBn string `json:"description_bn,omitempty"`
	Image         string `json:"image,omitempty"`
	ParentID      *int64 `json:"parent_id,omitempty"`
	IsActive      bool   `json:"is_active"`
	Order         int    `json:"order"`
}

// SameParent reports whether c and o hang off the same parent (or are both
// top level).
func (c Category) SameParent(o Category) bool {
	switch {
	case c.ParentID == nil && o.ParentID == nil:
		return true
	case c.ParentID == nil || o.ParentID == nil:
		return false
	default:
		return *c.ParentID == *o.ParentID
	}
}

type Brand struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	NameBn        string `json:"name_bn,omitempty"`
	Slug          string `json:"slug"`
	Description   string `json:"description,omitempty"`
	DescriptionBn string `json:"description_bn,omitempty"`
	Logo          string `json:"logo,omitempty"`
	IsActive      bool   `json:"is_active"`
}

// Address kinds accepted by the API.
const (
	AddressHome  = "home"
	AddressWork  = "work"
	AddressOther = "other"
)

// Address is a delivery address saved on the signed-in account.
type Address struct {
	ID                 int64    `json:"id"`
	UserID             int64    `json:"user_id,omitempty"`
	AddressLine        string   `json:"address_line"`
	Area               string   `json:"area"`
	City               string   `json:"city"`
	PostalCode         string   `json:"postal_code,omitempty"`
	Landmark           string   `json:"landmark,omitempty"`
	IsDefault          bool     `json:"is_default"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	Type               string   `json:"type,omitempty"`
	ContactPersonName  string   `json:"contact_person_name,omitempty"`
	ContactPersonPhone string   `json:"contact_person_phone,omitempty"`
}

// Page is one page of a paginated listing as returned by the API.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page,omitempty"`
	Total       int64 `json:"total"`
}

// HasPrev and HasNext drive pagination links.
func (p *Page[T]) HasPrev() bool { return p.CurrentPage > 1 }
func (p *Page[T]) HasNext() bool { return p.CurrentPage < p.LastPage }

type OverallStats struct {
	TotalOrders    int64   `json:"total_orders"`
	TotalCustomers int64   `json:"total_customers"`
	TotalProducts  int64   `json:"total_products"`
	TotalRevenue   float64 `json:"total_revenue"`
}

type PeriodStats struct {
	Orders       int64   `json:"orders"`
	Revenue      float64 `json:"revenue"`
	NewCustomers int64   `json:"new_customers"`
}

type DashboardStats struct {
	Overall                 OverallStats     `json:"overall"`
	Today                   PeriodStats      `json:"today"`
	Monthly                 PeriodStats      `json:"monthly"`
	PendingOrders           []map[string]any `json:"pending_orders"`
	LowStockProducts        []map[string]any `json:"low_stock_products"`
	UnreadMessages          []map[string]any `json:"unread_messages"`
	OrderStatusDistribution map[string]int64 `json:"order_status_distribution"`
}

// SalesPoint is one bucket of the sales chart. Only one of the label fields
// is set, depending on the requested period.
type SalesPoint struct {
	Time   string  `json:"time,omitempty"`
	Day    string  `json:"day,omitempty"`
	Date   string  `json:"date,omitempty"`
	Month  string  `json:"month,omitempty"`
	Year   string  `json:"year,omitempty"`
	Sales  float64 `json:"sales"`
	Orders int64   `json:"orders"`
}

// Label returns whichever label field the API populated.
func (p SalesPoint) Label() string {
	for _, s := range []string{p.Time, p.Day, p.Date, p.Month, p.Year} {
		if s != "" {
			return s
		}
	}
	return ""
}
