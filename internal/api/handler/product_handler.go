package handler

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/chaldal/admin-console/internal/api/view"
	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
	"github.com/chaldal/admin-console/internal/core/service"
)

const productsPath = "/admin/products"

var productStatuses = []string{domain.ProductActive, domain.ProductInactive, domain.ProductDraft}

// optionsPerPage bounds the brand list loaded for select boxes.
const optionsPerPage = 200

type ProductHandler struct {
	products   ports.ProductAPI
	categories ports.CategoryAPI
	brands     ports.BrandAPI
	service    *service.ProductService
	log        zerolog.Logger
	now        func() time.Time
}

func NewProductHandler(products ports.ProductAPI, categories ports.CategoryAPI, brands ports.BrandAPI, svc *service.ProductService, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products:   products,
		categories: categories,
		brands:     brands,
		service:    svc,
		log:        log,
		now:        time.Now,
	}
}

type productList struct {
	Page       *domain.Page[domain.Product]
	Categories []domain.Category
	Brands     []domain.Brand
	Statuses   []string
	Filter     ports.ListQuery
	Query      template.URL
}

type productFormData struct {
	Categories []domain.Category
	Brands     []domain.Brand
	Statuses   []string
}

// options loads the category and brand choices concurrently.
func (h *ProductHandler) options(c echo.Context) ([]domain.Category, []domain.Brand, error) {
	ctx := c.Request().Context()
	var (
		g    errgroup.Group
		cats []domain.Category
		brs  *domain.Page[domain.Brand]
	)
	g.Go(func() (err error) {
		cats, err = h.categories.ListCategories(ctx, ports.ListQuery{})
		return err
	})
	g.Go(func() (err error) {
		brs, err = h.brands.ListBrands(ctx, ports.ListQuery{PerPage: optionsPerPage})
		return err
	})
	err := g.Wait()
	var brands []domain.Brand
	if brs != nil {
		brands = brs.Data
	}
	return cats, brands, err
}

func (h *ProductHandler) List(c echo.Context) error {
	filter := ports.ListQuery{
		Page:       queryInt(c, "page"),
		Status:     c.QueryParam("status"),
		CategoryID: queryID(c, "category_id"),
		BrandID:    queryID(c, "brand_id"),
		Search:     c.QueryParam("search"),
	}

	ctx := c.Request().Context()
	var (
		g       errgroup.Group
		page    *domain.Page[domain.Product]
		listErr error
	)
	g.Go(func() error {
		page, listErr = h.products.ListProducts(ctx, filter)
		return listErr
	})
	cats, brands, optErr := h.options(c)
	_ = g.Wait()
	if expired(c, listErr, optErr) {
		return nil
	}

	p := newPage(c, "Products", "products")
	if listErr != nil {
		h.log.Warn().Err(listErr).Msg("list products")
		p.Error = "Could not load products"
	} else if optErr != nil {
		h.log.Warn().Err(optErr).Msg("load product filters")
	}
	p.Data = productList{
		Page:       page,
		Categories: cats,
		Brands:     brands,
		Statuses:   productStatuses,
		Filter:     filter,
		Query:      template.URL(filterQuery(filter).Encode()),
	}
	return c.Render(http.StatusOK, "products", p)
}

// filterQuery keeps the active filters across pagination links.
func filterQuery(f ports.ListQuery) url.Values {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.CategoryID > 0 {
		v.Set("category_id", strconv.FormatInt(f.CategoryID, 10))
	}
	if f.BrandID > 0 {
		v.Set("brand_id", strconv.FormatInt(f.BrandID, 10))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	return v
}

func (h *ProductHandler) New(c echo.Context) error {
	p := newPage(c, "New product", "products")
	p.Form = productForm{Status: domain.ProductActive}
	return h.renderForm(c, http.StatusOK, p)
}

func (h *ProductHandler) Edit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	prod, err := h.products.GetProduct(c.Request().Context(), id)
	if err != nil {
		return actionFailed(c, h.log, err, "Could not load product", productsPath)
	}
	p := newPage(c, "Edit product", "products")
	p.Form = productFormFrom(prod)
	return h.renderForm(c, http.StatusOK, p)
}

func (h *ProductHandler) renderForm(c echo.Context, code int, p view.Page) error {
	cats, brands, err := h.options(c)
	if expired(c, err) {
		return nil
	}
	if err != nil {
		h.log.Warn().Err(err).Msg("load product form options")
	}
	p.Data = productFormData{Categories: cats, Brands: brands, Statuses: productStatuses}
	return c.Render(code, "product_form", p)
}

// Create posts the product with its images in one request.
func (h *ProductHandler) Create(c echo.Context) error {
	var form productForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	p := newPage(c, "New product", "products")
	p.Form = &form

	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, formFailed(&p, err, ""), p)
	}
	uploads, err := readUploads(c, "images")
	if err != nil {
		return h.renderForm(c, formFailed(&p, err, "Could not read the uploaded images"), p)
	}
	images, files, err := form.imageSet(nil, uploads)
	if err != nil {
		return h.renderForm(c, formFailed(&p, err, ""), p)
	}

	draft := service.ProductDraft{Fields: form.fields(true, h.now()), Images: images, Files: files}
	prod, err := h.service.Create(c.Request().Context(), draft)
	if expired(c, err) {
		return nil
	}
	if err != nil {
		h.log.Info().Err(err).Msg("create product rejected")
		return h.renderForm(c, formFailed(&p, err, "Could not create product"), p)
	}
	return succeeded(c, "Product "+prod.Name+" created", productsPath)
}

// Update saves fields, then new images, then removals. A failure after the
// fields were saved reports which step did not complete.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var form productForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	form.ID = id

	ctx := c.Request().Context()
	current, err := h.products.GetProduct(ctx, id)
	if err != nil {
		return actionFailed(c, h.log, err, "Could not load product", productsPath)
	}
	form.Images = current.Images

	p := newPage(c, "Edit product", "products")
	p.Form = &form
	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, formFailed(&p, err, ""), p)
	}
	uploads, err := readUploads(c, "images")
	if err != nil {
		return h.renderForm(c, formFailed(&p, err, "Could not read the uploaded images"), p)
	}
	images, files, err := form.imageSet(current.Images, uploads)
	if err != nil {
		return h.renderForm(c, formFailed(&p, err, ""), p)
	}

	draft := service.ProductDraft{Fields: form.fields(false, h.now()), Images: images, Files: files}
	saved, err := h.service.Update(ctx, id, draft)
	if expired(c, err) {
		return nil
	}
	if err != nil && saved != nil {
		return actionFailed(c, h.log, err, "Product saved, but its images could not be updated", productsPath+"/"+strconv.FormatInt(id, 10)+"/edit")
	}
	if err != nil {
		h.log.Info().Err(err).Int64("product_id", id).Msg("update product rejected")
		return h.renderForm(c, formFailed(&p, err, "Could not update product"), p)
	}
	return succeeded(c, "Product updated", productsPath)
}

type statusForm struct {
	Status string `form:"status" validate:"required,oneof=active inactive draft"`
}

func (h *ProductHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var form statusForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		return actionFailed(c, h.log, err, "Unknown product status", productsPath)
	}
	if err := h.products.SetProductStatus(c.Request().Context(), id, form.Status); err != nil {
		return actionFailed(c, h.log, err, "Could not change product status", productsPath)
	}
	return succeeded(c, "Product status updated", productsPath)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.products.DeleteProduct(c.Request().Context(), id); err != nil {
		return actionFailed(c, h.log, err, "Could not delete product", productsPath)
	}
	return succeeded(c, "Product deleted", productsPath)
}
