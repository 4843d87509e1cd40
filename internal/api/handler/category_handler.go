package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/api/flash"
	"github.com/chaldal/admin-console/internal/api/view"
	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
	"github.com/chaldal/admin-console/internal/core/service"
)

const categoriesPath = "/admin/categories"

type CategoryHandler struct {
	api     ports.CategoryAPI
	service *service.CategoryService
	log     zerolog.Logger
}

func NewCategoryHandler(api ports.CategoryAPI, svc *service.CategoryService, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{api: api, service: svc, log: log}
}

type categoryList struct {
	Categories []domain.Category
	// Names resolves parent ids for display.
	Names      map[int64]string
	ParentOnly bool
	Search     string
}

type categoryFormData struct {
	Parents []domain.Category
}

func (h *CategoryHandler) List(c echo.Context) error {
	q := ports.ListQuery{
		ParentOnly: c.QueryParam("parent_only") == "true",
		Search:     c.QueryParam("search"),
	}
	cats, err := h.api.ListCategories(c.Request().Context(), q)
	if expired(c, err) {
		return nil
	}

	p := newPage(c, "Categories", "categories")
	if err != nil {
		h.log.Warn().Err(err).Msg("list categories")
		p.Error = "Could not load categories"
	}
	names := make(map[int64]string, len(cats))
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}
	p.Data = categoryList{Categories: cats, Names: names, ParentOnly: q.ParentOnly, Search: q.Search}
	return c.Render(http.StatusOK, "categories", p)
}

func (h *CategoryHandler) New(c echo.Context) error {
	p := newPage(c, "New category", "categories")
	p.Form = categoryForm{IsActive: true}
	return h.renderForm(c, http.StatusOK, p)
}

func (h *CategoryHandler) Edit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	cat, err := h.api.GetCategory(c.Request().Context(), id)
	if err != nil {
		return actionFailed(c, h.log, err, "Could not load category", categoriesPath)
	}
	p := newPage(c, "Edit category", "categories")
	p.Form = categoryFormFrom(cat)
	return h.renderForm(c, http.StatusOK, p)
}

// renderForm loads the parent choices. Without them the form still works
// for top-level categories.
func (h *CategoryHandler) renderForm(c echo.Context, code int, p view.Page) error {
	parents, err := h.api.ParentCategories(c.Request().Context())
	if expired(c, err) {
		return nil
	}
	if err != nil {
		h.log.Warn().Err(err).Msg("load parent categories")
	}
	p.Data = categoryFormData{Parents: parents}
	return c.Render(code, "category_form", p)
}

func (h *CategoryHandler) Create(c echo.Context) error {
	return h.save(c, 0)
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return h.save(c, id)
}

func (h *CategoryHandler) save(c echo.Context, id int64) error {
	var form categoryForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	form.ID = id

	title := "New category"
	if id != 0 {
		title = "Edit category"
	}
	p := newPage(c, title, "categories")
	p.Form = &form

	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, formFailed(&p, err, ""), p)
	}
	if id != 0 && form.ParentID == id {
		p.Error = "A category cannot be its own parent"
		p.Errors = map[string]string{"parent_id": p.Error}
		return h.renderForm(c, http.StatusUnprocessableEntity, p)
	}
	image, err := readSingleUpload(c, "image")
	if err != nil {
		return h.renderForm(c, formFailed(&p, err, "Could not read the uploaded image"), p)
	}

	ctx := c.Request().Context()
	fields := form.fields()
	if id == 0 {
		_, err = h.api.CreateCategory(ctx, fields, image)
	} else {
		_, err = h.api.UpdateCategory(ctx, id, fields, image)
	}
	if expired(c, err) {
		return nil
	}
	if err != nil {
		h.log.Info().Err(err).Int64("category_id", id).Msg("save category rejected")
		return h.renderForm(c, formFailed(&p, err, "Could not save category"), p)
	}

	if id == 0 {
		return succeeded(c, "Category created", categoriesPath)
	}
	return succeeded(c, "Category updated", categoriesPath)
}

func (h *CategoryHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var form activeForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := h.api.SetCategoryActive(c.Request().Context(), id, form.IsActive); err != nil {
		return actionFailed(c, h.log, err, "Could not change category status", categoriesPath)
	}
	return succeeded(c, "Category status updated", categoriesPath)
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.api.DeleteCategory(c.Request().Context(), id); err != nil {
		return actionFailed(c, h.log, err, "Could not delete category", categoriesPath)
	}
	return succeeded(c, "Category deleted", categoriesPath)
}

// Move swaps the category with its neighbour. Reaching either end is not an
// error, just nothing to do.
func (h *CategoryHandler) Move(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	dir := domain.Direction(c.QueryParam("dir"))
	if dir != domain.MoveUp && dir != domain.MoveDown {
		return echo.NewHTTPError(http.StatusBadRequest, "dir must be up or down")
	}

	err = h.service.Move(c.Request().Context(), id, dir)
	switch {
	case errors.Is(err, domain.ErrCannotMove):
		flash.Set(c, flash.Info, "Category is already at the edge")
		return c.Redirect(http.StatusFound, categoriesPath)
	case err != nil:
		return actionFailed(c, h.log, err, "Could not reorder categories", categoriesPath)
	}
	return succeeded(c, "Category order updated", categoriesPath)
}
