package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

// maxUploadBytes caps a single uploaded image.
const maxUploadBytes = 5 << 20

type loginForm struct {
	Phone    string `form:"phone" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type passwordForm struct {
	CurrentPassword      string `form:"current_password" validate:"required"`
	Password             string `form:"password" validate:"required,min=6"`
	PasswordConfirmation string `form:"password_confirmation" validate:"required,eqfield=Password"`
}

type categoryForm struct {
	ID            int64  `form:"-"`
	Name          string `form:"name" validate:"required,max=255"`
	NameBn        string `form:"name_bn" validate:"max=255"`
	Slug          string `form:"slug" validate:"omitempty,min=2,max=255,slug"`
	Description   string `form:"description"`
	DescriptionBn string `form:"description_bn"`
	ParentID      int64  `form:"parent_id" validate:"gte=0"`
	IsActive      bool   `form:"is_active"`
	Image         string `form:"-"`
}

func categoryFormFrom(cat *domain.Category) categoryForm {
	f := categoryForm{
		ID:            cat.ID,
		Name:          cat.Name,
		NameBn:        cat.NameBn,
		Slug:          cat.Slug,
		Description:   cat.Description,
		DescriptionBn: cat.DescriptionBn,
		IsActive:      cat.IsActive,
		Image:         cat.Image,
	}
	if cat.ParentID != nil {
		f.ParentID = *cat.ParentID
	}
	return f
}

// fields fills a blank slug from the name before building the body.
func (f *categoryForm) fields() ports.FormFields {
	f.Slug = slugOrDerived(f.Slug, f.Name)
	var out ports.FormFields
	out.Add("name", f.Name)
	out.Add("slug", f.Slug)
	addOptional(&out, "name_bn", f.NameBn)
	addOptional(&out, "description", f.Description)
	addOptional(&out, "description_bn", f.DescriptionBn)
	if f.ParentID > 0 {
		out.Add("parent_id", strconv.FormatInt(f.ParentID, 10))
	}
	out.Add("is_active", boolField(f.IsActive))
	return out
}

type brandForm struct {
	ID            int64  `form:"-"`
	Name          string `form:"name" validate:"required,max=255"`
	NameBn        string `form:"name_bn" validate:"max=255"`
	Slug          string `form:"slug" validate:"omitempty,min=2,max=255,slug"`
	Description   string `form:"description"`
	DescriptionBn string `form:"description_bn"`
	IsActive      bool   `form:"is_active"`
	Logo          string `form:"-"`
}

func brandFormFrom(b *domain.Brand) brandForm {
	return brandForm{
		ID:            b.ID,
		Name:          b.Name,
		NameBn:        b.NameBn,
		Slug:          b.Slug,
		Description:   b.Description,
		DescriptionBn: b.DescriptionBn,
		IsActive:      b.IsActive,
		Logo:          b.Logo,
	}
}

func (f *brandForm) fields() ports.FormFields {
	f.Slug = slugOrDerived(f.Slug, f.Name)
	var out ports.FormFields
	out.Add("name", f.Name)
	out.Add("slug", f.Slug)
	addOptional(&out, "name_bn", f.NameBn)
	addOptional(&out, "description", f.Description)
	addOptional(&out, "description_bn", f.DescriptionBn)
	out.Add("is_active", boolField(f.IsActive))
	return out
}

type addressForm struct {
	ID                 int64  `form:"-"`
	AddressLine        string `form:"address_line" validate:"required,max=255"`
	Area               string `form:"area" validate:"required,max=100"`
	City               string `form:"city" validate:"required,max=100"`
	PostalCode         string `form:"postal_code" validate:"max=20"`
	Landmark           string `form:"landmark" validate:"max=255"`
	Type               string `form:"type" validate:"omitempty,oneof=home work other"`
	ContactPersonName  string `form:"contact_person_name" validate:"max=255"`
	ContactPersonPhone string `form:"contact_person_phone" validate:"max=20"`
	Latitude           string `form:"latitude" validate:"omitempty,latitude"`
	Longitude          string `form:"longitude" validate:"omitempty,longitude"`
	IsDefault          bool   `form:"-"`
}

func addressFormFrom(a *domain.Address) addressForm {
	f := addressForm{
		ID:                 a.ID,
		AddressLine:        a.AddressLine,
		Area:               a.Area,
		City:               a.City,
		PostalCode:         a.PostalCode,
		Landmark:           a.Landmark,
		Type:               a.Type,
		ContactPersonName:  a.ContactPersonName,
		ContactPersonPhone: a.ContactPersonPhone,
		IsDefault:          a.IsDefault,
	}
	if a.Latitude != nil {
		f.Latitude = strconv.FormatFloat(*a.Latitude, 'f', -1, 64)
	}
	if a.Longitude != nil {
		f.Longitude = strconv.FormatFloat(*a.Longitude, 'f', -1, 64)
	}
	return f
}

func (f *addressForm) trim() {
	for _, s := range []*string{
		&f.AddressLine, &f.Area, &f.City, &f.PostalCode, &f.Landmark,
		&f.Type, &f.ContactPersonName, &f.ContactPersonPhone, &f.Latitude, &f.Longitude,
	} {
		*s = strings.TrimSpace(*s)
	}
}

// address builds the request body. Coordinates were validated already.
func (f *addressForm) address() domain.Address {
	a := domain.Address{
		AddressLine:        f.AddressLine,
		Area:               f.Area,
		City:               f.City,
		PostalCode:         f.PostalCode,
		Landmark:           f.Landmark,
		Type:               f.Type,
		ContactPersonName:  f.ContactPersonName,
		ContactPersonPhone: f.ContactPersonPhone,
	}
	if v, err := strconv.ParseFloat(f.Latitude, 64); err == nil {
		a.Latitude = &v
	}
	if v, err := strconv.ParseFloat(f.Longitude, 64); err == nil {
		a.Longitude = &v
	}
	return a
}

type productForm struct {
	ID                 int64   `form:"-"`
	Name               string  `form:"name" validate:"required,max=255"`
	NameBn             string  `form:"name_bn" validate:"max=255"`
	Slug               string  `form:"slug" validate:"omitempty,min=2,max=255,slug"`
	Description        string  `form:"description"`
	DescriptionBn      string  `form:"description_bn"`
	CategoryID         int64   `form:"category_id" validate:"required,gt=0"`
	BrandID            int64   `form:"brand_id" validate:"gte=0"`
	SKU                string  `form:"sku" validate:"max=64"`
	Barcode            string  `form:"barcode" validate:"max=64"`
	BasePrice          float64 `form:"base_price" validate:"gte=0"`
	DiscountPercentage float64 `form:"discount_percentage" validate:"gte=0,lte=100"`
	SalePrice          float64 `form:"sale_price" validate:"gte=0"`
	Weight             float64 `form:"weight" validate:"gte=0"`
	StockAlertQuantity int     `form:"stock_alert_quantity" validate:"gte=0"`
	IsVATApplicable    bool    `form:"is_vat_applicable"`
	VATPercentage      float64 `form:"vat_percentage" validate:"gte=0,lte=100"`
	IsFeatured         bool    `form:"is_featured"`
	IsPopular          bool    `form:"is_popular"`
	Status             string  `form:"status" validate:"omitempty,oneof=active inactive draft"`
	MetaTitle          string  `form:"meta_title" validate:"max=255"`
	MetaDescription    string  `form:"meta_description"`
	MetaKeywords       string  `form:"meta_keywords"`

	// image edits
	PrimaryImage   string  `form:"primary_image"`
	PrimaryUpload  int     `form:"primary_upload" validate:"gte=0"`
	DeleteImageIDs []int64 `form:"delete_image_ids"`

	Images []domain.ProductImage `form:"-"`
}

func productFormFrom(p *domain.Product) productForm {
	f := productForm{
		ID:                 p.ID,
		Name:               p.Name,
		NameBn:             p.NameBn,
		Slug:               p.Slug,
		Description:        p.Description,
		DescriptionBn:      p.DescriptionBn,
		CategoryID:         p.CategoryID,
		SKU:                p.SKU,
		Barcode:            p.Barcode,
		BasePrice:          p.BasePrice,
		DiscountPercentage: p.DiscountPercentage,
		SalePrice:          p.SalePrice,
		Weight:             p.Weight,
		StockAlertQuantity: p.StockAlertQuantity,
		IsVATApplicable:    p.IsVATApplicable,
		VATPercentage:      p.VATPercentage,
		IsFeatured:         p.IsFeatured,
		IsPopular:          p.IsPopular,
		Status:             p.Status,
		MetaTitle:          p.MetaTitle,
		MetaDescription:    p.MetaDescription,
		MetaKeywords:       p.MetaKeywords,
		Images:             p.Images,
	}
	if p.BrandID != nil {
		f.BrandID = *p.BrandID
	}
	return f
}

// fields builds the product body. On create a blank SKU is generated.
func (f *productForm) fields(creating bool, now time.Time) ports.FormFields {
	f.Slug = slugOrDerived(f.Slug, f.Name)
	if creating && strings.TrimSpace(f.SKU) == "" {
		f.SKU = domain.GenerateSKU(now)
	}
	if f.Status == "" {
		f.Status = domain.ProductActive
	}
	if f.SalePrice == 0 {
		f.SalePrice = f.BasePrice
	}

	var out ports.FormFields
	out.Add("name", f.Name)
	out.Add("slug", f.Slug)
	addOptional(&out, "name_bn", f.NameBn)
	addOptional(&out, "description", f.Description)
	addOptional(&out, "description_bn", f.DescriptionBn)
	out.Add("category_id", strconv.FormatInt(f.CategoryID, 10))
	if f.BrandID > 0 {
		out.Add("brand_id", strconv.FormatInt(f.BrandID, 10))
	}
	addOptional(&out, "sku", f.SKU)
	addOptional(&out, "barcode", f.Barcode)
	out.Add("base_price", money(f.BasePrice))
	out.Add("discount_percentage", money(f.DiscountPercentage))
	out.Add("sale_price", money(f.SalePrice))
	if f.Weight > 0 {
		out.Add("weight", strconv.FormatFloat(f.Weight, 'f', -1, 64))
	}
	out.Add("stock_alert_quantity", strconv.Itoa(f.StockAlertQuantity))
	out.Add("is_vat_applicable", boolField(f.IsVATApplicable))
	if f.IsVATApplicable {
		out.Add("vat_percentage", money(f.VATPercentage))
	}
	out.Add("is_featured", boolField(f.IsFeatured))
	out.Add("is_popular", boolField(f.IsPopular))
	out.Add("status", f.Status)
	addOptional(&out, "meta_title", f.MetaTitle)
	addOptional(&out, "meta_description", f.MetaDescription)
	addOptional(&out, "meta_keywords", f.MetaKeywords)
	return out
}

// imageSet applies the form's image edits to the product's current images
// and returns the set along with the content of new uploads.
func (f *productForm) imageSet(existing []domain.ProductImage, uploads []upload) (*domain.ImageSet, map[string][]byte, error) {
	set := domain.NewImageSet(existing)

	if strings.HasPrefix(f.PrimaryImage, "id:") {
		if i := set.Index(f.PrimaryImage); i >= 0 {
			if err := set.SetPrimary(i); err != nil {
				return nil, nil, err
			}
		}
	}
	for _, id := range f.DeleteImageIDs {
		set.RemoveKey(fmt.Sprintf("id:%d", id))
	}

	files := make(map[string][]byte, len(uploads))
	first := set.Len()
	for _, u := range uploads {
		set.Add(u.name)
		files[u.name] = u.content
	}
	if f.PrimaryUpload > 0 {
		if err := set.SetPrimary(first + f.PrimaryUpload - 1); err != nil {
			return nil, nil, &FormError{Fields: []FieldMessage{{Field: "images", Message: "primary upload position is out of range"}}}
		}
	}
	return set, files, nil
}

type upload struct {
	name    string
	content []byte
}

// readUploads loads the files posted under field. Names are made unique
// within the request.
func readUploads(c echo.Context, field string) ([]upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// not multipart, or no body
		return nil, nil
	}
	var out []upload
	seen := map[string]int{}
	for _, fh := range form.File[field] {
		content, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		name := fh.Filename
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%d-%s", n, name)
		}
		seen[fh.Filename]++
		out = append(out, upload{name: name, content: content})
	}
	return out, nil
}

// readSingleUpload returns the first file under field as an API upload.
func readSingleUpload(c echo.Context, field string) (*ports.Upload, error) {
	files, err := readUploads(c, field)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &ports.Upload{Field: field, Filename: files[0].name, Content: files[0].content}, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadBytes {
		return nil, &FormError{Fields: []FieldMessage{{Field: "images", Message: fh.Filename + " is larger than 5 MB"}}}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
}

func slugOrDerived(slug, name string) string {
	if s := strings.TrimSpace(slug); s != "" {
		return s
	}
	return domain.Slugify(name)
}

func addOptional(f *ports.FormFields, name, value string) {
	if v := strings.TrimSpace(value); v != "" {
		f.Add(name, v)
	}
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
