package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/storefront/storefront-api/docs"
	"github.com/storefront/storefront-api/internal/api/handler"
	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// bodyLimit caps request bodies; avatars travel as base64 JSON.
const bodyLimit = "10M"

// Dependencies are the services and settings the router wires into handlers.
type Dependencies struct {
	Auth    ports.AuthService
	Users   ports.UserService
	Orders  ports.OrderService
	Sales   ports.SalesService
	Catalog ports.CatalogService

	// Checks are the readiness probes, keyed by dependency name.
	Checks      map[string]handler.DependencyCheck
	Cookie      handler.CookieConfig
	FrontendURL string
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{deps.FrontendURL},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "storefront",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookie, deps.Log)
	userHandler := handler.NewUserHandler(deps.Users)
	orderHandler := handler.NewOrderHandler(deps.Orders)
	salesHandler := handler.NewSalesHandler(deps.Sales)
	productHandler := handler.NewProductHandler(deps.Catalog)

	authenticated := middleware.Auth(deps.Auth)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	v1 := e.Group("/api/v1")

	// --- Auth routes ---
	v1.POST("/register", authHandler.Register)
	v1.POST("/login", authHandler.Login)
	v1.GET("/logout", authHandler.Logout)
	v1.POST("/password/forgot", authHandler.ForgotPassword)
	v1.PUT("/password/reset/:token", authHandler.ResetPassword)
	v1.PUT("/password/update", authHandler.UpdatePassword, authenticated)

	// --- Profile routes ---
	v1.GET("/me", userHandler.Profile, authenticated)
	v1.PUT("/me/update", userHandler.UpdateProfile, authenticated)
	v1.PUT("/me/upload_avatar", userHandler.UploadAvatar, authenticated)
	v1.GET("/me/orders", orderHandler.MyOrders, authenticated)

	// --- Orders and catalog ---
	v1.POST("/orders/new", orderHandler.Create, authenticated)
	v1.GET("/orders/:id", orderHandler.Get, authenticated)
	v1.GET("/products", productHandler.List)
	v1.GET("/products/:id", productHandler.Get)

	// --- Admin routes ---
	admin := v1.Group("/admin", authenticated, adminOnly)
	admin.GET("/users", userHandler.List)
	admin.GET("/users/:id", userHandler.Get)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.GET("/orders", orderHandler.List)
	admin.PUT("/orders/:id", orderHandler.UpdateStatus)
	admin.DELETE("/orders/:id", orderHandler.Delete)
	admin.GET("/get_sales", salesHandler.GetSales)
	admin.POST("/products", productHandler.Create)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

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
			event := log.Info()
			switch {
			case v.Status >= 500:
				event = log.Error().Err(v.Error)
			case v.Status >= 400:
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
