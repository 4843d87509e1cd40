// Package devapi is an in-memory stand-in for the remote admin API. It speaks
// the same envelope and endpoints so the console can run and be tested
// without the real backend.
package devapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/core/domain"
)

type envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  *fieldErrors `json:"errors,omitempty"`
}

// MarshalJSON writes the errors object in insertion order.
func (f *fieldErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(k)
		msgs, err := json.Marshal(f.msgs[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(msgs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func ok(c echo.Context, status int, data any, msg string) error {
	return c.JSON(status, envelope{Success: true, Data: data, Message: msg})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, envelope{Success: false, Message: msg})
}

func invalid(c echo.Context, fe *fieldErrors) error {
	return c.JSON(http.StatusUnprocessableEntity, envelope{Success: false, Message: "The given data was invalid.", Errors: fe})
}

// respondErr maps store errors onto the API's status codes.
func respondErr(c echo.Context, err error) error {
	var fe *fieldErrors
	switch {
	case errors.As(err, &fe):
		return invalid(c, fe)
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, errInUse):
		return fail(c, http.StatusBadRequest, "Cannot delete: other records still reference it")
	case errors.Is(err, domain.ErrUnauthorized):
		return fail(c, http.StatusUnauthorized, "Unauthenticated.")
	default:
		return err
	}
}

// Server bundles the stand-in services.
type Server struct {
	Auth    *AuthService
	Catalog *Catalog
	log     zerolog.Logger
}

func NewServer(auth *AuthService, catalog *Catalog, log zerolog.Logger) *Server {
	return &Server{Auth: auth, Catalog: catalog, log: log}
}

// Router builds the Echo instance serving /api/v1/admin.
func (s *Server) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	admin := e.Group("/api/v1/admin")
	admin.POST("/login", s.login)

	authed := admin.Group("", s.bearer)
	authed.GET("/user", s.currentUser)
	authed.POST("/logout", s.logout)
	authed.POST("/change-password", s.changePassword)

	authed.GET("/dashboard/stats", s.dashboardStats)
	authed.GET("/dashboard/sales-chart", s.salesChart)

	authed.GET("/categories", s.listCategories)
	authed.GET("/categories/parents-dropdown", s.parentCategories)
	authed.POST("/categories/update-order", s.updateCategoryOrder)
	authed.GET("/categories/:id", s.getCategory)
	authed.POST("/categories", s.createCategory)
	authed.POST("/categories/:id", s.updateCategory)
	authed.PUT("/categories/:id", s.updateCategory)
	authed.POST("/categories/:id/status", s.categoryStatus)
	authed.DELETE("/categories/:id", s.deleteCategory)

	authed.GET("/brands", s.listBrands)
	authed.GET("/brands/:id", s.getBrand)
	authed.POST("/brands", s.createBrand)
	authed.POST("/brands/:id", s.updateBrand)
	authed.PUT("/brands/:id", s.updateBrand)
	authed.POST("/brands/:id/status", s.brandStatus)
	authed.DELETE("/brands/:id", s.deleteBrand)

	authed.GET("/user/addresses", s.listAddresses)
	authed.POST("/user/addresses", s.createAddress)
	authed.PUT("/user/addresses/:id", s.updateAddress)
	authed.DELETE("/user/addresses/:id", s.deleteAddress)
	authed.POST("/user/addresses/:id/set-default", s.setDefaultAddress)

	authed.GET("/products", s.listProducts)
	authed.GET("/products/:id", s.getProduct)
	authed.POST("/products", s.createProduct)
	authed.POST("/products/:id", s.updateProduct)
	authed.PUT("/products/:id", s.updateProduct)
	authed.POST("/products/:id/status", s.productStatus)
	authed.DELETE("/products/:id", s.deleteProduct)
	authed.POST("/products/:id/images", s.uploadProductImages)
	authed.DELETE("/products/:id/images/:imageId", s.deleteProductImage)

	return e
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = fail(c, he.Code, http.StatusText(he.Code))
		return
	}
	s.log.Error().Err(err).Str("path", c.Path()).Msg("devapi: unhandled error")
	_ = fail(c, http.StatusInternalServerError, "Server Error")
}

// bearer validates the token and stores the user and claims on the context.
func (s *Server) bearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		parts := strings.SplitN(c.Request().Header.Get("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return fail(c, http.StatusUnauthorized, "Unauthenticated.")
		}
		user, cl, err := s.Auth.Verify(parts[1])
		if err != nil {
			return fail(c, http.StatusUnauthorized, "Unauthenticated.")
		}
		c.Set("user", user)
		c.Set("claims", cl)
		return next(c)
	}
}

func ctxUser(c echo.Context) *domain.User {
	u, _ := c.Get("user").(*domain.User)
	return u
}
