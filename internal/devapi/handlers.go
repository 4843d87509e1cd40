package devapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chaldal/admin-console/internal/core/domain"
)

// ── auth ─────────────────────────────────────────────────────────────────────

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	if req.Phone == "" || req.Password == "" {
		fe := &fieldErrors{}
		if req.Phone == "" {
			fe.add("phone", "The phone field is required.")
		}
		if req.Password == "" {
			fe.add("password", "The password field is required.")
		}
		return invalid(c, fe)
	}

	token, user, err := s.Auth.Login(req.Phone, req.Password)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, errInactive):
		return fail(c, http.StatusForbidden, "Your account is inactive")
	case err != nil:
		return err
	}
	if !user.HasRole(domain.AdminRoles...) {
		return fail(c, http.StatusForbidden, "You do not have access to the admin panel")
	}
	s.log.Info().Int64("user_id", user.ID).Msg("devapi: login")
	return ok(c, http.StatusOK, map[string]any{"token": token, "user": user, "abilities": []string{"*"}}, "Login successful")
}

func (s *Server) currentUser(c echo.Context) error {
	return ok(c, http.StatusOK, map[string]any{"user": ctxUser(c)}, "")
}

func (s *Server) logout(c echo.Context) error {
	if cl, _ := c.Get("claims").(*claims); cl != nil {
		s.Auth.Revoke(cl)
	}
	return ok(c, http.StatusOK, nil, "Logged out successfully")
}

type changePasswordRequest struct {
	CurrentPassword      string `json:"current_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (s *Server) changePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	fe := &fieldErrors{}
	if len(req.Password) < 8 {
		fe.add("password", "The password must be at least 8 characters.")
	}
	if req.Password != req.PasswordConfirmation {
		fe.add("password", "The password confirmation does not match.")
	}
	if !fe.empty() {
		return invalid(c, fe)
	}
	err := s.Auth.ChangePassword(ctxUser(c).ID, req.CurrentPassword, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		fe.add("current_password", "The current password is incorrect.")
		return invalid(c, fe)
	}
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, nil, "Password changed successfully")
}

// ── dashboard ────────────────────────────────────────────────────────────────

func (s *Server) dashboardStats(c echo.Context) error {
	return ok(c, http.StatusOK, s.Catalog.Stats(), "")
}

func (s *Server) salesChart(c echo.Context) error {
	return ok(c, http.StatusOK, map[string]any{"chart_data": s.Catalog.SalesChart(c.QueryParam("period"))}, "")
}

// ── categories ───────────────────────────────────────────────────────────────

func (s *Server) listCategories(c echo.Context) error {
	parentOnly := c.QueryParam("parent_only") == "1" || c.QueryParam("parent_only") == "true"
	cats := s.Catalog.Categories(parentOnly, c.QueryParam("search"))
	return ok(c, http.StatusOK, map[string]any{"categories": cats}, "")
}

func (s *Server) parentCategories(c echo.Context) error {
	return ok(c, http.StatusOK, map[string]any{"categories": s.Catalog.Categories(true, "")}, "")
}

func (s *Server) getCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	cat, err := s.Catalog.Category(id)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, map[string]any{"category": cat}, "")
}

func (s *Server) createCategory(c echo.Context) error {
	return s.saveCategory(c, 0, http.StatusCreated, "Category created successfully")
}

func (s *Server) updateCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	return s.saveCategory(c, id, http.StatusOK, "Category updated successfully")
}

func (s *Server) saveCategory(c echo.Context, id int64, status int, msg string) error {
	v, err := readValues(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	in := categoryFrom(v)
	if fe := check(in); fe != nil {
		return invalid(c, fe)
	}
	cat := domain.Category{
		ID:            id,
		Name:          in.Name,
		NameBn:        in.NameBn,
		Slug:          in.Slug,
		Description:   in.Description,
		DescriptionBn: in.DescriptionBn,
		ParentID:      in.ParentID,
		IsActive:      in.IsActive,
		Order:         in.Order,
	}
	if files := storedFiles(c, "image", "categories"); len(files) > 0 {
		cat.Image = files[0]
	}
	saved, err := s.Catalog.SaveCategory(cat)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, status, map[string]any{"category": saved}, msg)
}

type activeRequest struct {
	IsActive bool `json:"is_active"`
}

func (s *Server) categoryStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var req activeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	if err := s.Catalog.SetCategoryActive(id, req.IsActive); err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, nil, "Category status updated successfully")
}

func (s *Server) deleteCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := s.Catalog.DeleteCategory(id); err != nil {
		if errors.Is(err, errInUse) {
			return fail(c, http.StatusBadRequest, "Cannot delete category with subcategories or products")
		}
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, nil, "Category deleted successfully")
}

type orderRequest struct {
	Categories []domain.OrderUpdate `json:"categories"`
}

func (s *Server) updateCategoryOrder(c echo.Context) error {
	var req orderRequest
	if err := c.Bind(&req); err != nil || len(req.Categories) == 0 {
		fe := &fieldErrors{}
		fe.add("categories", "The categories field is required.")
		return invalid(c, fe)
	}
	if err := s.Catalog.UpdateCategoryOrder(req.Categories); err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, nil, "Category order updated successfully")
}

// ── brands ───────────────────────────────────────────────────────────────────

func (s *Server) listBrands(c echo.Context) error {
	v := values{"page": c.QueryParam("page"), "per_page": c.QueryParam("per_page")}
	page := s.Catalog.Brands(c.QueryParam("search"), v.int("page"), v.int("per_page"))
	return ok(c, http.StatusOK, map[string]any{"brands": page}, "")
}

func (s *Server) getBrand(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	b, err := s.Catalog.Brand(id)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, map[string]any{"brand": b}, "")
}

func (s *Server) createBrand(c echo.Context) error {
	return s.saveBrand(c, 0, http.StatusCreated, "Brand created successfully")
}

func (s *Server) updateBrand(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	return s.saveBrand(c, id, http.StatusOK, "Brand updated successfully")
}

func (s *Server) saveBrand(c echo.Context, id int64, status int, msg string) error {
	v, err := readValues(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	in := brandFrom(v)
	if fe := check(in); fe != nil {
		return invalid(c, fe)
	}
	b := domain.Brand{
		ID:            id,
		Name:          in.Name,
		NameBn:        in.NameBn,
		Slug:          in.Slug,
		Description:   in.Description,
		DescriptionBn: in.DescriptionBn,
		IsActive:      in.IsActive,
	}
	if files := storedFiles(c, "logo", "brands"); len(files) > 0 {
		b.Logo = files[0]
	}
	saved, err := s.Catalog.SaveBrand(b)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, status, map[string]any{"brand": saved}, msg)
}

func (s *Server) brandStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var req activeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	if err := s.Catalog.SetBrandActive(id, req.IsActive); err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, nil, "Brand status updated successfully")
}

func (s *Server) deleteBrand(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := s.Catalog.DeleteBrand(id); err != nil {
		if errors.Is(err, errInUse) {
			return fail(c, http.StatusBadRequest, "Cannot delete brand with associated products")
		}
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, nil, "Brand deleted successfully")
}

// ── products ─────────────────────────────────────────────────────────────────

func (s *Server) listProducts(c echo.Context) error {
	q := values{}
	for _, k := range []string{"page", "per_page", "category_id", "brand_id"} {
		q[k] = c.QueryParam(k)
	}
	f := productFilter{
		Status:     c.QueryParam("status"),
		CategoryID: q.int64("category_id"),
		BrandID:    q.int64("brand_id"),
		Search:     c.QueryParam("search"),
	}
	page := s.Catalog.Products(f, q.int("page"), q.int("per_page"))
	return ok(c, http.StatusOK, map[string]any{"products": page}, "")
}

func (s *Server) getProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	p, err := s.Catalog.Product(id)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, map[string]any{"product": p}, "")
}

func (s *Server) createProduct(c echo.Context) error {
	return s.saveProduct(c, 0, http.StatusCreated, "Product created successfully")
}

func (s *Server) updateProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	return s.saveProduct(c, id, http.StatusOK, "Product updated successfully")
}

func (s *Server) saveProduct(c echo.Context, id int64, status int, msg string) error {
	v, err := readValues(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	in := productFrom(v)
	if in.SKU == "" {
		in.SKU = domain.GenerateSKU(time.Now())
	}
	if fe := check(in); fe != nil {
		return invalid(c, fe)
	}

	var images []string
	if id == 0 {
		images = storedFiles(c, "images[]", "products")
	}
	saved, err := s.Catalog.SaveProduct(in.product(id), images, in.PrimaryImageID)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, status, map[string]any{"product": saved}, msg)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) productStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	switch req.Status {
	case domain.ProductActive, domain.ProductInactive, domain.ProductDraft:
	default:
		fe := &fieldErrors{}
		fe.add("status", "The selected status is invalid.")
		return invalid(c, fe)
	}
	if err := s.Catalog.SetProductStatus(id, req.Status); err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, nil, "Product status updated successfully")
}

func (s *Server) deleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := s.Catalog.DeleteProduct(id); err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, nil, "Product deleted successfully")
}

func (s *Server) uploadProductImages(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	paths := storedFiles(c, "images[]", "products")
	if len(paths) == 0 {
		fe := &fieldErrors{}
		fe.add("images", "The images field is required.")
		return invalid(c, fe)
	}
	added, err := s.Catalog.AddProductImages(id, paths)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, map[string]any{"images": added}, "Images uploaded successfully")
}

func (s *Server) deleteProductImage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	imageID, err := pathID(c, "imageId")
	if err != nil {
		return respondErr(c, err)
	}
	if err := s.Catalog.DeleteProductImage(id, imageID); err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, nil, "Image deleted successfully")
}
