package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/api/flash"
	"github.com/chaldal/admin-console/internal/api/middleware"
	"github.com/chaldal/admin-console/internal/api/view"
	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
	"github.com/chaldal/admin-console/internal/core/service"
)

var errNotStubbed = errors.New("not stubbed")

type stubAuthAPI struct {
	loginFn          func(ctx context.Context, phone, password string) (*ports.LoginResult, error)
	currentUserFn    func(ctx context.Context) (*domain.User, error)
	logoutFn         func(ctx context.Context) error
	changePasswordFn func(ctx context.Context, current, password, confirmation string) error
}

func (s *stubAuthAPI) Login(ctx context.Context, phone, password string) (*ports.LoginResult, error) {
	if s.loginFn == nil {
		return nil, errNotStubbed
	}
	return s.loginFn(ctx, phone, password)
}

func (s *stubAuthAPI) CurrentUser(ctx context.Context) (*domain.User, error) {
	if s.currentUserFn == nil {
		return nil, errNotStubbed
	}
	return s.currentUserFn(ctx)
}

func (s *stubAuthAPI) Logout(ctx context.Context) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx)
}

func (s *stubAuthAPI) ChangePassword(ctx context.Context, current, password, confirmation string) error {
	if s.changePasswordFn == nil {
		return errNotStubbed
	}
	return s.changePasswordFn(ctx, current, password, confirmation)
}

// stubCatalog implements every catalog port; unset functions fail.
type stubCatalog struct {
	listProductsFn   func(ctx context.Context, q ports.ListQuery) (*domain.Page[domain.Product], error)
	getProductFn     func(ctx context.Context, id int64) (*domain.Product, error)
	createProductFn  func(ctx context.Context, fields ports.FormFields, images []ports.Upload) (*domain.Product, error)
	updateProductFn  func(ctx context.Context, id int64, fields ports.FormFields) (*domain.Product, error)
	productStatusFn  func(ctx context.Context, id int64, status string) error
	deleteProductFn  func(ctx context.Context, id int64) error
	uploadImagesFn   func(ctx context.Context, id int64, images []ports.Upload) error
	deleteImageFn    func(ctx context.Context, productID, imageID int64) error
	listCategoriesFn func(ctx context.Context, q ports.ListQuery) ([]domain.Category, error)
	parentsFn        func(ctx context.Context) ([]domain.Category, error)
	getCategoryFn    func(ctx context.Context, id int64) (*domain.Category, error)
	createCategoryFn func(ctx context.Context, fields ports.FormFields, image *ports.Upload) (*domain.Category, error)
	updateCategoryFn func(ctx context.Context, id int64, fields ports.FormFields, image *ports.Upload) (*domain.Category, error)
	categoryActiveFn func(ctx context.Context, id int64, active bool) error
	deleteCategoryFn func(ctx context.Context, id int64) error
	categoryOrderFn  func(ctx context.Context, updates []domain.OrderUpdate) error
	listBrandsFn     func(ctx context.Context, q ports.ListQuery) (*domain.Page[domain.Brand], error)
	getBrandFn       func(ctx context.Context, id int64) (*domain.Brand, error)
	createBrandFn    func(ctx context.Context, fields ports.FormFields, logo *ports.Upload) (*domain.Brand, error)
	updateBrandFn    func(ctx context.Context, id int64, fields ports.FormFields, logo *ports.Upload) (*domain.Brand, error)
	brandActiveFn    func(ctx context.Context, id int64, active bool) error
	deleteBrandFn    func(ctx context.Context, id int64) error
	statsFn          func(ctx context.Context) (*domain.DashboardStats, error)
	chartFn          func(ctx context.Context, period string) ([]domain.SalesPoint, error)
	listAddressesFn  func(ctx context.Context) ([]domain.Address, error)
	createAddressFn  func(ctx context.Context, a domain.Address) (*domain.Address, error)
	updateAddressFn  func(ctx context.Context, id int64, a domain.Address) (*domain.Address, error)
	deleteAddressFn  func(ctx context.Context, id int64) error
	defaultAddressFn func(ctx context.Context, id int64) error
}

func (s *stubCatalog) ListProducts(ctx context.Context, q ports.ListQuery) (*domain.Page[domain.Product], error) {
	if s.listProductsFn == nil {
		return nil, errNotStubbed
	}
	return s.listProductsFn(ctx, q)
}

func (s *stubCatalog) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if s.getProductFn == nil {
		return nil, errNotStubbed
	}
	return s.getProductFn(ctx, id)
}

func (s *stubCatalog) CreateProduct(ctx context.Context, fields ports.FormFields, images []ports.Upload) (*domain.Product, error) {
	if s.createProductFn == nil {
		return nil, errNotStubbed
	}
	return s.createProductFn(ctx, fields, images)
}

func (s *stubCatalog) UpdateProduct(ctx context.Context, id int64, fields ports.FormFields) (*domain.Product, error) {
	if s.updateProductFn == nil {
		return nil, errNotStubbed
	}
	return s.updateProductFn(ctx, id, fields)
}

func (s *stubCatalog) SetProductStatus(ctx context.Context, id int64, status string) error {
	if s.productStatusFn == nil {
		return errNotStubbed
	}
	return s.productStatusFn(ctx, id, status)
}

func (s *stubCatalog) DeleteProduct(ctx context.Context, id int64) error {
	if s.deleteProductFn == nil {
		return errNotStubbed
	}
	return s.deleteProductFn(ctx, id)
}

func (s *stubCatalog) UploadProductImages(ctx context.Context, id int64, images []ports.Upload) error {
	if s.uploadImagesFn == nil {
		return errNotStubbed
	}
	return s.uploadImagesFn(ctx, id, images)
}

func (s *stubCatalog) DeleteProductImage(ctx context.Context, productID, imageID int64) error {
	if s.deleteImageFn == nil {
		return errNotStubbed
	}
	return s.deleteImageFn(ctx, productID, imageID)
}

func (s *stubCatalog) ListCategories(ctx context.Context, q ports.ListQuery) ([]domain.Category, error) {
	if s.listCategoriesFn == nil {
		return nil, errNotStubbed
	}
	return s.listCategoriesFn(ctx, q)
}

func (s *stubCatalog) ParentCategories(ctx context.Context) ([]domain.Category, error) {
	if s.parentsFn == nil {
		return nil, errNotStubbed
	}
	return s.parentsFn(ctx)
}

func (s *stubCatalog) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	if s.getCategoryFn == nil {
		return nil, errNotStubbed
	}
	return s.getCategoryFn(ctx, id)
}

func (s *stubCatalog) CreateCategory(ctx context.Context, fields ports.FormFields, image *ports.Upload) (*domain.Category, error) {
	if s.createCategoryFn == nil {
		return nil, errNotStubbed
	}
	return s.createCategoryFn(ctx, fields, image)
}

func (s *stubCatalog) UpdateCategory(ctx context.Context, id int64, fields ports.FormFields, image *ports.Upload) (*domain.Category, error) {
	if s.updateCategoryFn == nil {
		return nil, errNotStubbed
	}
	return s.updateCategoryFn(ctx, id, fields, image)
}

func (s *stubCatalog) SetCategoryActive(ctx context.Context, id int64, active bool) error {
	if s.categoryActiveFn == nil {
		return errNotStubbed
	}
	return s.categoryActiveFn(ctx, id, active)
}

func (s *stubCatalog) DeleteCategory(ctx context.Context, id int64) error {
	if s.deleteCategoryFn == nil {
		return errNotStubbed
	}
	return s.deleteCategoryFn(ctx, id)
}

func (s *stubCatalog) UpdateCategoryOrder(ctx context.Context, updates []domain.OrderUpdate) error {
	if s.categoryOrderFn == nil {
		return errNotStubbed
	}
	return s.categoryOrderFn(ctx, updates)
}

func (s *stubCatalog) ListBrands(ctx context.Context, q ports.ListQuery) (*domain.Page[domain.Brand], error) {
	if s.listBrandsFn == nil {
		return nil, errNotStubbed
	}
	return s.listBrandsFn(ctx, q)
}

func (s *stubCatalog) GetBrand(ctx context.Context, id int64) (*domain.Brand, error) {
	if s.getBrandFn == nil {
		return nil, errNotStubbed
	}
	return s.getBrandFn(ctx, id)
}

func (s *stubCatalog) CreateBrand(ctx context.Context, fields ports.FormFields, logo *ports.Upload) (*domain.Brand, error) {
	if s.createBrandFn == nil {
		return nil, errNotStubbed
	}
	return s.createBrandFn(ctx, fields, logo)
}

func (s *stubCatalog) UpdateBrand(ctx context.Context, id int64, fields ports.FormFields, logo *ports.Upload) (*domain.Brand, error) {
	if s.updateBrandFn == nil {
		return nil, errNotStubbed
	}
	return s.updateBrandFn(ctx, id, fields, logo)
}

func (s *stubCatalog) SetBrandActive(ctx context.Context, id int64, active bool) error {
	if s.brandActiveFn == nil {
		return errNotStubbed
	}
	return s.brandActiveFn(ctx, id, active)
}

func (s *stubCatalog) DeleteBrand(ctx context.Context, id int64) error {
	if s.deleteBrandFn == nil {
		return errNotStubbed
	}
	return s.deleteBrandFn(ctx, id)
}

func (s *stubCatalog) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	if s.statsFn == nil {
		return nil, errNotStubbed
	}
	return s.statsFn(ctx)
}

func (s *stubCatalog) SalesChart(ctx context.Context, period string) ([]domain.SalesPoint, error) {
	if s.chartFn == nil {
		return nil, errNotStubbed
	}
	return s.chartFn(ctx, period)
}

func (s *stubCatalog) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	if s.listAddressesFn == nil {
		return nil, errNotStubbed
	}
	return s.listAddressesFn(ctx)
}

func (s *stubCatalog) CreateAddress(ctx context.Context, a domain.Address) (*domain.Address, error) {
	if s.createAddressFn == nil {
		return nil, errNotStubbed
	}
	return s.createAddressFn(ctx, a)
}

func (s *stubCatalog) UpdateAddress(ctx context.Context, id int64, a domain.Address) (*domain.Address, error) {
	if s.updateAddressFn == nil {
		return nil, errNotStubbed
	}
	return s.updateAddressFn(ctx, id, a)
}

func (s *stubCatalog) DeleteAddress(ctx context.Context, id int64) error {
	if s.deleteAddressFn == nil {
		return errNotStubbed
	}
	return s.deleteAddressFn(ctx, id)
}

func (s *stubCatalog) SetDefaultAddress(ctx context.Context, id int64) error {
	if s.defaultAddressFn == nil {
		return errNotStubbed
	}
	return s.defaultAddressFn(ctx, id)
}

type memStore struct {
	mu   sync.Mutex
	sess domain.Session
}

func (m *memStore) Save(_ context.Context, token string, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = domain.Session{Token: token, User: user}
	return nil
}

func (m *memStore) Read(context.Context) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess, nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = domain.Session{}
	return nil
}

var testAdmin = &domain.User{ID: 1, Name: "Rahim", Phone: "01700000000", Role: domain.RoleAdmin}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	r, err := view.New("https://cdn.test/storage")
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = r
	return e
}

// sessionFixture is a request context with a controller bound to it.
type sessionFixture struct {
	c     echo.Context
	rec   *httptest.ResponseRecorder
	nav   *middleware.Navigator
	ctrl  *service.Controller
	store *memStore
}

// newSession binds a controller to req. With a user, the session starts
// verified; without one it is anonymous.
func newSession(t *testing.T, e *echo.Echo, req *http.Request, auth *stubAuthAPI, user *domain.User) *sessionFixture {
	t.Helper()
	if auth == nil {
		auth = &stubAuthAPI{}
	}
	store := &memStore{}
	if user != nil {
		store.sess = domain.Session{Token: "tok", User: user}
		if auth.currentUserFn == nil {
			auth.currentUserFn = func(context.Context) (*domain.User, error) { return user, nil }
		}
	}
	nav := &middleware.Navigator{}
	ctrl := service.NewController(auth, store, nav, zerolog.Nop())
	ctrl.Init(service.WithController(req.Context(), ctrl))

	req = req.WithContext(service.WithController(req.Context(), ctrl))
	rec := httptest.NewRecorder()
	return &sessionFixture{c: e.NewContext(req, rec), rec: rec, nav: nav, ctrl: ctrl, store: store}
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

type testFile struct {
	field, name, content string
}

func multipartRequest(t *testing.T, target string, values url.Values, files ...testFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range values {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := io.WriteString(part, f.content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func flashCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "admin_flash" && ck.MaxAge > 0 {
			return ck
		}
	}
	return nil
}

// flashText reads back the flash message a response queued.
func flashText(e *echo.Echo, rec *httptest.ResponseRecorder) string {
	ck := flashCookie(rec)
	if ck == nil {
		return ""
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	m := flash.Pop(e.NewContext(req, httptest.NewRecorder()))
	if m == nil {
		return ""
	}
	return m.Text
}
