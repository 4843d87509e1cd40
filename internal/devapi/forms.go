package devapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/chaldal/admin-console/internal/core/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return domain.ValidSlug(fl.Field().String())
	})
	return v
}

// check validates in and reports failures keyed by form field name.
func check(in any) *fieldErrors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	fe := &fieldErrors{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		fe.add("form", err.Error())
		return fe
	}
	for _, e := range ve {
		fe.add(e.Field(), validationMessage(e))
	}
	return fe
}

func validationMessage(e validator.FieldError) string {
	field := strings.ReplaceAll(e.Field(), "_", " ")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "slug":
		return fmt.Sprintf("The %s format is invalid.", field)
	case "min", "gte":
		return fmt.Sprintf("The %s must be at least %s.", field, e.Param())
	case "max", "lte":
		return fmt.Sprintf("The %s may not be greater than %s.", field, e.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}

// values is a flattened request body.
type values map[string]string

// readValues accepts a JSON object or a (multipart) form body.
func readValues(c echo.Context) (values, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		var raw map[string]any
		if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
			return nil, err
		}
		out := make(values, len(raw))
		for k, v := range raw {
			switch t := v.(type) {
			case nil:
			case string:
				out[k] = t
			case bool:
				out[k] = boolString(t)
			case float64:
				out[k] = strconv.FormatFloat(t, 'f', -1, 64)
			default:
				b, _ := json.Marshal(t)
				out[k] = string(b)
			}
		}
		return out, nil
	}

	params, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	out := make(values, len(params))
	for k, vs := range params {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out, nil
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (v values) str(k string) string { return strings.TrimSpace(v[k]) }

func (v values) int64(k string) int64 {
	n, _ := strconv.ParseInt(v.str(k), 10, 64)
	return n
}

func (v values) int(k string) int {
	n, _ := strconv.Atoi(v.str(k))
	return n
}

func (v values) float(k string) float64 {
	f, _ := strconv.ParseFloat(v.str(k), 64)
	return f
}

func (v values) bool(k string) bool {
	switch strings.ToLower(v.str(k)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// optionalID returns nil for a missing or zero id.
func (v values) optionalID(k string) *int64 {
	if n := v.int64(k); n > 0 {
		return &n
	}
	return nil
}

// storedFiles records the names of uploaded files under field and returns
// the relative storage paths they would be written to.
func storedFiles(c echo.Context, field, dir string) []string {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	var out []string
	for _, fh := range form.File[field] {
		out = append(out, path.Join(dir, uuid.NewString()[:8]+"-"+path.Base(fh.Filename)))
	}
	return out
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

type categoryInput struct {
	Name          string `form:"name" validate:"required,max=255"`
	NameBn        string `form:"name_bn" validate:"max=255"`
	Slug          string `form:"slug" validate:"required,min=2,max=255,slug"`
	Description   string `form:"description"`
	DescriptionBn string `form:"description_bn"`
	ParentID      *int64 `form:"parent_id"`
	IsActive      bool   `form:"is_active"`
	Order         int    `form:"order" validate:"gte=0"`
}

func categoryFrom(v values) categoryInput {
	in := categoryInput{
		Name:          v.str("name"),
		NameBn:        v.str("name_bn"),
		Slug:          v.str("slug"),
		Description:   v.str("description"),
		DescriptionBn: v.str("description_bn"),
		ParentID:      v.optionalID("parent_id"),
		IsActive:      true,
		Order:         v.int("order"),
	}
	if _, set := v["is_active"]; set {
		in.IsActive = v.bool("is_active")
	}
	if in.Slug == "" {
		in.Slug = domain.Slugify(in.Name)
	}
	return in
}

type brandInput struct {
	Name          string `form:"name" validate:"required,max=255"`
	NameBn        string `form:"name_bn" validate:"max=255"`
	Slug          string `form:"slug" validate:"required,min=2,max=255,slug"`
	Description   string `form:"description"`
	DescriptionBn string `form:"description_bn"`
	IsActive      bool   `form:"is_active"`
}

func brandFrom(v values) brandInput {
	in := brandInput{
		Name:          v.str("name"),
		NameBn:        v.str("name_bn"),
		Slug:          v.str("slug"),
		Description:   v.str("description"),
		DescriptionBn: v.str("description_bn"),
		IsActive:      true,
	}
	if _, set := v["is_active"]; set {
		in.IsActive = v.bool("is_active")
	}
	if in.Slug == "" {
		in.Slug = domain.Slugify(in.Name)
	}
	return in
}

type productInput struct {
	Name               string  `form:"name" validate:"required,max=255"`
	NameBn             string  `form:"name_bn" validate:"max=255"`
	Slug               string  `form:"slug" validate:"required,min=2,max=255,slug"`
	Description        string  `form:"description"`
	CategoryID         int64   `form:"category_id" validate:"required,gt=0"`
	BrandID            *int64  `form:"brand_id"`
	SKU                string  `form:"sku" validate:"max=64"`
	Barcode            string  `form:"barcode" validate:"max=64"`
	BasePrice          float64 `form:"base_price" validate:"gte=0"`
	SalePrice          float64 `form:"sale_price" validate:"gte=0"`
	DiscountPercentage float64 `form:"discount_percentage" validate:"gte=0,lte=100"`
	Status             string  `form:"status" validate:"oneof=active inactive draft"`
	IsFeatured         bool    `form:"is_featured"`
	IsPopular          bool    `form:"is_popular"`
	CurrentStock       int     `form:"current_stock" validate:"gte=0"`
	StockAlertQuantity int     `form:"stock_alert_quantity" validate:"gte=0"`
	PrimaryImageID     int64   `form:"primary_image_id"`
}

func productFrom(v values) productInput {
	in := productInput{
		Name:               v.str("name"),
		NameBn:             v.str("name_bn"),
		Slug:               v.str("slug"),
		Description:        v.str("description"),
		CategoryID:         v.int64("category_id"),
		BrandID:            v.optionalID("brand_id"),
		SKU:                v.str("sku"),
		Barcode:            v.str("barcode"),
		BasePrice:          v.float("base_price"),
		SalePrice:          v.float("sale_price"),
		DiscountPercentage: v.float("discount_percentage"),
		Status:             v.str("status"),
		IsFeatured:         v.bool("is_featured"),
		IsPopular:          v.bool("is_popular"),
		CurrentStock:       v.int("current_stock"),
		StockAlertQuantity: v.int("stock_alert_quantity"),
		PrimaryImageID:     v.int64("primary_image_id"),
	}
	if in.Slug == "" {
		in.Slug = domain.Slugify(in.Name)
	}
	if in.Status == "" {
		in.Status = domain.ProductActive
	}
	if in.SalePrice == 0 {
		in.SalePrice = in.BasePrice
	}
	return in
}

func (in productInput) product(id int64) domain.Product {
	return domain.Product{
		ID:                 id,
		Name:               in.Name,
		NameBn:             in.NameBn,
		Slug:               in.Slug,
		Description:        in.Description,
		CategoryID:         in.CategoryID,
		BrandID:            in.BrandID,
		SKU:                in.SKU,
		Barcode:            in.Barcode,
		BasePrice:          in.BasePrice,
		SalePrice:          in.SalePrice,
		DiscountPercentage: in.DiscountPercentage,
		Status:             in.Status,
		IsFeatured:         in.IsFeatured,
		IsPopular:          in.IsPopular,
		CurrentStock:       in.CurrentStock,
		StockAlertQuantity: in.StockAlertQuantity,
	}
}
