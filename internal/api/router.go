package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/artistgrade/storefront/docs"
	"github.com/artistgrade/storefront/internal/api/handler"
	"github.com/artistgrade/storefront/internal/api/middleware"
	"github.com/artistgrade/storefront/internal/api/session"
	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

const (
	loginPath       = "/login"
	maxRequestBody  = "12M"
	metricSubsystem = "http"
)

// Dependencies are the services and adapters the HTTP layer calls into.
type Dependencies struct {
	Auth         ports.AuthService
	Catalog      ports.CatalogService
	Orders       ports.OrderService
	Users        ports.UserService
	Dashboard    ports.DashboardService
	Requests     ports.RequestService
	Sessions     *session.Manager
	Provider     handler.ProviderGateway
	HealthChecks map[string]handler.HealthCheck
}

type Options struct {
	ViewsDir       string
	AllowOrigins   []string
	RequestTimeout time.Duration
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, opts Options, log zerolog.Logger) *echo.Echo {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricSubsystem,
		Registerer: opts.Registerer,
	}))
	if len(opts.AllowOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     opts.AllowOrigins,
			AllowCredentials: true,
		}))
	}
	e.Use(echomiddleware.BodyLimit(maxRequestBody))
	if opts.RequestTimeout > 0 {
		e.Use(echomiddleware.ContextTimeout(opts.RequestTimeout))
	}
	e.Use(deps.Sessions.Middleware())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions, deps.Provider, log)
	productHandler := handler.NewProductHandler(deps.Catalog)
	orderHandler := handler.NewOrderHandler(deps.Orders)
	userHandler := handler.NewUserHandler(deps.Users, deps.Dashboard)
	requestHandler := handler.NewRequestHandler(deps.Requests)
	pageHandler := handler.NewPageHandler(opts.ViewsDir)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)

	apiSession := middleware.RequireAPISession(deps.Auth)
	admin := middleware.RBAC(deps.Auth, domain.RoleAdmin)

	// --- Auth ---
	e.POST(loginPath, authHandler.Login)
	e.GET("/logout", authHandler.Logout)
	e.GET("/auth/:provider", authHandler.BeginProviderAuth)
	e.GET("/auth/:provider/callback", authHandler.ProviderCallback)

	// --- Pages ---
	e.GET("/checkout", pageHandler.Checkout, middleware.RequirePageSession(deps.Auth, loginPath))

	// --- Custom requests ---
	e.POST("/submit-request", requestHandler.Submit)

	api := e.Group("/api")
	api.POST("/register", authHandler.Register)
	api.GET("/current_user", authHandler.CurrentUser)

	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	api.POST("/products", productHandler.Create, admin)
	api.PUT("/products/:id", productHandler.Update, admin)
	api.DELETE("/products/:id", productHandler.Delete, admin)

	api.POST("/orders", orderHandler.Create, apiSession)
	api.GET("/orders", orderHandler.List, admin)
	api.GET("/orders/:id", orderHandler.Get, admin)
	api.PUT("/orders/:id/status", orderHandler.UpdateStatus, admin)
	api.DELETE("/orders/:id", orderHandler.Delete, admin)

	api.GET("/users", userHandler.List, admin)
	api.PUT("/users/:id", userHandler.Update, admin)
	api.DELETE("/users/:id", userHandler.Delete, admin)
	api.GET("/dashboard-counts", userHandler.DashboardCounts, admin)

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
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
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
