package devapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chaldal/admin-console/internal/core/domain"
)

// errInUse rejects deletes of records other records still point at.
var errInUse = errors.New("record is in use")

// fieldErrors reports per-field validation failures in insertion order.
type fieldErrors struct {
	keys []string
	msgs map[string][]string
}

func (f *fieldErrors) add(field, msg string) {
	if f.msgs == nil {
		f.msgs = make(map[string][]string)
	}
	if _, ok := f.msgs[field]; !ok {
		f.keys = append(f.keys, field)
	}
	f.msgs[field] = append(f.msgs[field], msg)
}

func (f *fieldErrors) Error() string { return "validation failed" }
func (f *fieldErrors) empty() bool   { return len(f.keys) == 0 }

// Catalog is the in-memory store behind the catalog endpoints.
type Catalog struct {
	mu         sync.RWMutex
	nextID     int64
	categories map[int64]domain.Category
	brands     map[int64]domain.Brand
	products   map[int64]domain.Product
	addresses  map[int64]domain.Address
	// addresses are numbered apart from the catalog records
	lastAddressID int64
	now           func() time.Time
}

func NewCatalog() *Catalog {
	return &Catalog{
		categories: make(map[int64]domain.Category),
		brands:     make(map[int64]domain.Brand),
		products:   make(map[int64]domain.Product),
		addresses:  make(map[int64]domain.Address),
		now:        time.Now,
	}
}

func (s *Catalog) id() int64 {
	s.nextID++
	return s.nextID
}

func paginate[T any](items []T, page, perPage int) *domain.Page[T] {
	if perPage <= 0 {
		perPage = 10
	}
	if page <= 0 {
		page = 1
	}
	total := len(items)
	last := (total + perPage - 1) / perPage
	if last == 0 {
		last = 1
	}
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return &domain.Page[T]{
		Data:        append([]T{}, items[start:end]...),
		CurrentPage: page,
		LastPage:    last,
		PerPage:     perPage,
		Total:       int64(total),
	}
}

func matches(search string, values ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}

// ── categories ───────────────────────────────────────────────────────────────

func (s *Catalog) Categories(parentOnly bool, search string) []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if parentOnly && c.ParentID != nil {
			continue
		}
		if !matches(search, c.Name, c.Slug) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Catalog) Category(id int64) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrNotFound
	}
	return c, nil
}

// SaveCategory creates c when its ID is zero, otherwise replaces it.
func (s *Catalog) SaveCategory(c domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fe fieldErrors
	for _, other := range s.categories {
		if other.ID != c.ID && other.Slug == c.Slug {
			fe.add("slug", "The slug has already been taken.")
		}
	}
	if c.ParentID != nil {
		parent, ok := s.categories[*c.ParentID]
		switch {
		case !ok:
			fe.add("parent_id", "The selected parent id is invalid.")
		case parent.ID == c.ID:
			fe.add("parent_id", "A category cannot be its own parent.")
		}
	}
	if !fe.empty() {
		return domain.Category{}, &fe
	}

	if c.ID == 0 {
		c.ID = s.id()
		if c.Order == 0 {
			for _, other := range s.categories {
				if other.SameParent(c) && other.Order >= c.Order {
					c.Order = other.Order + 1
				}
			}
			if c.Order == 0 {
				c.Order = 1
			}
		}
	} else {
		old, ok := s.categories[c.ID]
		if !ok {
			return domain.Category{}, domain.ErrNotFound
		}
		if c.Image == "" {
			c.Image = old.Image
		}
		if c.Order == 0 {
			c.Order = old.Order
		}
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Catalog) SetCategoryActive(id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsActive = active
	s.categories[id] = c
	return nil
}

func (s *Catalog) DeleteCategory(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	for _, c := range s.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return errInUse
		}
	}
	for _, p := range s.products {
		if p.CategoryID == id {
			return errInUse
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Catalog) UpdateCategoryOrder(updates []domain.OrderUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		if _, ok := s.categories[u.ID]; !ok {
			return domain.ErrNotFound
		}
	}
	for _, u := range updates {
		c := s.categories[u.ID]
		c.Order = u.Order
		s.categories[u.ID] = c
	}
	return nil
}

// ── brands ───────────────────────────────────────────────────────────────────

func (s *Catalog) Brands(search string, page, perPage int) *domain.Page[domain.Brand] {
	s.mu.RLock()
	out := make([]domain.Brand, 0, len(s.brands))
	for _, b := range s.brands {
		if matches(search, b.Name, b.Slug) {
			out = append(out, b)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, page, perPage)
}

func (s *Catalog) Brand(id int64) (domain.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.brands[id]
	if !ok {
		return domain.Brand{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *Catalog) SaveBrand(b domain.Brand) (domain.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.brands {
		if other.ID != b.ID && other.Slug == b.Slug {
			fe := &fieldErrors{}
			fe.add("slug", "The slug has already been taken.")
			return domain.Brand{}, fe
		}
	}
	if b.ID == 0 {
		b.ID = s.id()
	} else {
		old, ok := s.brands[b.ID]
		if !ok {
			return domain.Brand{}, domain.ErrNotFound
		}
		if b.Logo == "" {
			b.Logo = old.Logo
		}
	}
	s.brands[b.ID] = b
	return b, nil
}

func (s *Catalog) SetBrandActive(id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.brands[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.IsActive = active
	s.brands[id] = b
	return nil
}

func (s *Catalog) DeleteBrand(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.brands[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range s.products {
		if p.BrandID != nil && *p.BrandID == id {
			return errInUse
		}
	}
	delete(s.brands, id)
	return nil
}

// ── products ─────────────────────────────────────────────────────────────────

type productFilter struct {
	Status     string
	CategoryID int64
	BrandID    int64
	Search     string
}

func (s *Catalog) Products(f productFilter, page, perPage int) *domain.Page[domain.Product] {
	s.mu.RLock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		if f.BrandID != 0 && (p.BrandID == nil || *p.BrandID != f.BrandID) {
			continue
		}
		if !matches(f.Search, p.Name, p.SKU, p.Slug) {
			continue
		}
		out = append(out, s.withRefs(p))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, page, perPage)
}

func (s *Catalog) Product(id int64) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return s.withRefs(p), nil
}

// withRefs fills the embedded category and brand projections. Callers hold
// the lock.
func (s *Catalog) withRefs(p domain.Product) domain.Product {
	if c, ok := s.categories[p.CategoryID]; ok {
		p.Category = &domain.Ref{ID: c.ID, Name: c.Name}
	}
	if p.BrandID != nil {
		if b, ok := s.brands[*p.BrandID]; ok {
			p.Brand = &domain.Ref{ID: b.ID, Name: b.Name}
		}
	}
	p.Images = append([]domain.ProductImage{}, p.Images...)
	return p
}

// SaveProduct creates p (ID zero) with the given image paths, or replaces
// the product's fields keeping its images. primaryImageID, when non-zero,
// moves the primary flag.
func (s *Catalog) SaveProduct(p domain.Product, images []string, primaryImageID int64) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fe fieldErrors
	if _, ok := s.categories[p.CategoryID]; !ok {
		fe.add("category_id", "The selected category id is invalid.")
	}
	if p.BrandID != nil {
		if _, ok := s.brands[*p.BrandID]; !ok {
			fe.add("brand_id", "The selected brand id is invalid.")
		}
	}
	for _, other := range s.products {
		if other.ID == p.ID {
			continue
		}
		if other.Slug == p.Slug {
			fe.add("slug", "The slug has already been taken.")
		}
		if other.SKU == p.SKU {
			fe.add("sku", "The sku has already been taken.")
		}
	}
	if !fe.empty() {
		return domain.Product{}, &fe
	}

	if p.ID == 0 {
		p.ID = s.id()
		p.Images = nil
		for i, path := range images {
			p.Images = append(p.Images, domain.ProductImage{ID: s.id(), ProductID: p.ID, Image: path, IsPrimary: i == 0})
		}
	} else {
		old, ok := s.products[p.ID]
		if !ok {
			return domain.Product{}, domain.ErrNotFound
		}
		p.Images = old.Images
		if primaryImageID != 0 {
			found := false
			for i := range p.Images {
				if p.Images[i].ID == primaryImageID {
					found = true
				}
			}
			if found {
				for i := range p.Images {
					p.Images[i].IsPrimary = p.Images[i].ID == primaryImageID
				}
			}
		}
	}
	s.products[p.ID] = p
	return s.withRefs(p), nil
}

func (s *Catalog) SetProductStatus(id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	s.products[id] = p
	return nil
}

func (s *Catalog) DeleteProduct(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// AddProductImages appends images. The first image of a product without
// images becomes primary.
func (s *Catalog) AddProductImages(id int64, paths []string) ([]domain.ProductImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var added []domain.ProductImage
	for _, path := range paths {
		img := domain.ProductImage{ID: s.id(), ProductID: id, Image: path, IsPrimary: len(p.Images) == 0}
		p.Images = append(p.Images, img)
		added = append(added, img)
	}
	s.products[id] = p
	return added, nil
}

// DeleteProductImage removes an image; a removed primary passes to the first
// remaining image.
func (s *Catalog) DeleteProductImage(productID, imageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	idx := -1
	for i, img := range p.Images {
		if img.ID == imageID {
			idx = i
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	wasPrimary := p.Images[idx].IsPrimary
	p.Images = append(p.Images[:idx:idx], p.Images[idx+1:]...)
	if wasPrimary && len(p.Images) > 0 {
		p.Images[0].IsPrimary = true
	}
	s.products[productID] = p
	return nil
}

// Stats summarises the catalog for the dashboard.
func (s *Catalog) Stats() domain.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.DashboardStats{
		Overall:                 domain.OverallStats{TotalProducts: int64(len(s.products))},
		PendingOrders:           []map[string]any{},
		UnreadMessages:          []map[string]any{},
		OrderStatusDistribution: map[string]int64{},
	}
	low := []map[string]any{}
	for _, p := range s.products {
		if p.StockAlertQuantity > 0 && p.CurrentStock <= p.StockAlertQuantity {
			low = append(low, map[string]any{"id": p.ID, "name": p.Name, "current_stock": p.CurrentStock})
		}
	}
	stats.LowStockProducts = low
	return stats
}

// SalesChart returns empty buckets labelled for period.
func (s *Catalog) SalesChart(period string) []domain.SalesPoint {
	now := s.now()
	var out []domain.SalesPoint
	switch period {
	case "today":
		for h := 0; h < 24; h++ {
			out = append(out, domain.SalesPoint{Time: time.Date(0, 1, 1, h, 0, 0, 0, time.UTC).Format("15:04")})
		}
	case "month":
		days := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
		for d := 1; d <= days; d++ {
			out = append(out, domain.SalesPoint{Date: time.Date(now.Year(), now.Month(), d, 0, 0, 0, 0, now.Location()).Format("Jan 02")})
		}
	case "year":
		for m := time.January; m <= time.December; m++ {
			out = append(out, domain.SalesPoint{Month: m.String()[:3]})
		}
	default:
		for i := 6; i >= 0; i-- {
			out = append(out, domain.SalesPoint{Day: now.AddDate(0, 0, -i).Format("Mon")})
		}
	}
	return out
}
