package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/chaldal/admin-console/docs"
	"github.com/chaldal/admin-console/internal/api/handler"
	"github.com/chaldal/admin-console/internal/api/middleware"
	"github.com/chaldal/admin-console/internal/api/view"
	"github.com/chaldal/admin-console/internal/core/service"
	"github.com/chaldal/admin-console/internal/infrastructure/apiclient"
	"github.com/chaldal/admin-console/internal/infrastructure/tokenstore"
)

const sessionAPIPath = "/admin/api/session"

// Deps is what the router wires into handlers.
type Deps struct {
	Log      zerolog.Logger
	Store    *tokenstore.Store
	API      *apiclient.Client
	Renderer echo.Renderer
	// Readiness lists the dependencies /health/ready pings.
	Readiness map[string]handler.Pinger
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = d.Renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "admin_console",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	log := d.Log
	productService := service.NewProductService(d.API, log.With().Str("component", "products").Logger())
	categoryService := service.NewCategoryService(d.API, log.With().Str("component", "categories").Logger())

	authHandler := handler.NewAuthHandler(d.API, log)
	sessionHandler := handler.NewSessionHandler()
	dashboardHandler := handler.NewDashboardHandler(d.API, log)
	productHandler := handler.NewProductHandler(d.API, d.API, d.API, productService, log)
	categoryHandler := handler.NewCategoryHandler(d.API, categoryService, log)
	brandHandler := handler.NewBrandHandler(d.API, log)
	addressHandler := handler.NewAddressHandler(d.API, log)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.StaticFS("/static", view.Static())
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, service.DashboardPath)
	})

	// --- Admin views ---
	admin := e.Group("/admin",
		middleware.EdgeGuard(sessionAPIPath, sessionAPIPath+"/refresh"),
		middleware.Session(middleware.SessionConfig{Store: d.Store, API: d.API, Log: log}),
	)
	guard := middleware.RouteGuard()

	admin.GET("/login", authHandler.ShowLogin)
	admin.POST("/login", authHandler.Login)
	admin.POST("/logout", authHandler.Logout)
	admin.GET("/password", authHandler.ShowPassword, guard)
	admin.POST("/password", authHandler.ChangePassword, guard)

	admin.GET("/dashboard", dashboardHandler.Show, guard)

	products := admin.Group("/products", guard)
	products.GET("", productHandler.List)
	products.GET("/new", productHandler.New)
	products.POST("", productHandler.Create)
	products.GET("/:id/edit", productHandler.Edit)
	products.POST("/:id", productHandler.Update)
	products.POST("/:id/status", productHandler.SetStatus)
	products.POST("/:id/delete", productHandler.Delete)

	categories := admin.Group("/categories", guard)
	categories.GET("", categoryHandler.List)
	categories.GET("/new", categoryHandler.New)
	categories.POST("", categoryHandler.Create)
	categories.GET("/:id/edit", categoryHandler.Edit)
	categories.POST("/:id", categoryHandler.Update)
	categories.POST("/:id/status", categoryHandler.SetStatus)
	categories.POST("/:id/delete", categoryHandler.Delete)
	categories.POST("/:id/move", categoryHandler.Move)

	brands := admin.Group("/brands", guard)
	brands.GET("", brandHandler.List)
	brands.GET("/new", brandHandler.New)
	brands.POST("", brandHandler.Create)
	brands.GET("/:id/edit", brandHandler.Edit)
	brands.POST("/:id", brandHandler.Update)
	brands.POST("/:id/status", brandHandler.SetStatus)
	brands.POST("/:id/delete", brandHandler.Delete)

	addresses := admin.Group("/addresses", guard)
	addresses.GET("", addressHandler.List)
	addresses.GET("/new", addressHandler.New)
	addresses.POST("", addressHandler.Create)
	addresses.GET("/:id/edit", addressHandler.Edit)
	addresses.POST("/:id", addressHandler.Update)
	addresses.POST("/:id/default", addressHandler.SetDefault)
	addresses.POST("/:id/delete", addressHandler.Delete)

	// --- Session JSON ---
	admin.GET("/api/session", sessionHandler.Show)
	admin.POST("/api/session/refresh", sessionHandler.Refresh)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
