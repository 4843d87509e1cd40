package handler

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

const brandsPath = "/admin/brands"

type BrandHandler struct {
	api ports.BrandAPI
	log zerolog.Logger
}

func NewBrandHandler(api ports.BrandAPI, log zerolog.Logger) *BrandHandler {
	return &BrandHandler{api: api, log: log}
}

type brandList struct {
	Page   *domain.Page[domain.Brand]
	Search string
	Query  template.URL
}

func (h *BrandHandler) List(c echo.Context) error {
	q := ports.ListQuery{Page: queryInt(c, "page"), Search: c.QueryParam("search")}
	page, err := h.api.ListBrands(c.Request().Context(), q)
	if expired(c, err) {
		return nil
	}

	p := newPage(c, "Brands", "brands")
	if err != nil {
		h.log.Warn().Err(err).Msg("list brands")
		p.Error = "Could not load brands"
	}
	keep := url.Values{}
	if q.Search != "" {
		keep.Set("search", q.Search)
	}
	p.Data = brandList{Page: page, Search: q.Search, Query: template.URL(keep.Encode())}
	return c.Render(http.StatusOK, "brands", p)
}

func (h *BrandHandler) New(c echo.Context) error {
	p := newPage(c, "New brand", "brands")
	p.Form = brandForm{IsActive: true}
	return c.Render(http.StatusOK, "brand_form", p)
}

func (h *BrandHandler) Edit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	b, err := h.api.GetBrand(c.Request().Context(), id)
	if err != nil {
		return actionFailed(c, h.log, err, "Could not load brand", brandsPath)
	}
	p := newPage(c, "Edit brand", "brands")
	p.Form = brandFormFrom(b)
	return c.Render(http.StatusOK, "brand_form", p)
}

func (h *BrandHandler) Create(c echo.Context) error {
	return h.save(c, 0)
}

func (h *BrandHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return h.save(c, id)
}

func (h *BrandHandler) save(c echo.Context, id int64) error {
	var form brandForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	form.ID = id

	title := "New brand"
	if id != 0 {
		title = "Edit brand"
	}
	p := newPage(c, title, "brands")
	p.Form = &form

	if err := c.Validate(&form); err != nil {
		return c.Render(formFailed(&p, err, ""), "brand_form", p)
	}
	logo, err := readSingleUpload(c, "logo")
	if err != nil {
		return c.Render(formFailed(&p, err, "Could not read the uploaded logo"), "brand_form", p)
	}

	ctx := c.Request().Context()
	fields := form.fields()
	if id == 0 {
		_, err = h.api.CreateBrand(ctx, fields, logo)
	} else {
		_, err = h.api.UpdateBrand(ctx, id, fields, logo)
	}
	if expired(c, err) {
		return nil
	}
	if err != nil {
		h.log.Info().Err(err).Int64("brand_id", id).Msg("save brand rejected")
		return c.Render(formFailed(&p, err, "Could not save brand"), "brand_form", p)
	}

	if id == 0 {
		return succeeded(c, "Brand created", brandsPath)
	}
	return succeeded(c, "Brand updated", brandsPath)
}

type activeForm struct {
	IsActive bool `form:"is_active"`
}

func (h *BrandHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var form activeForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := h.api.SetBrandActive(c.Request().Context(), id, form.IsActive); err != nil {
		return actionFailed(c, h.log, err, "Could not change brand status", brandsPath)
	}
	return succeeded(c, "Brand status updated", brandsPath)
}

func (h *BrandHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.api.DeleteBrand(c.Request().Context(), id); err != nil {
		return actionFailed(c, h.log, err, "Could not delete brand", brandsPath)
	}
	return succeeded(c, "Brand deleted", brandsPath)
}
