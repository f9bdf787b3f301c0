package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/abcretailers/identity-gateway/docs"
	"github.com/abcretailers/identity-gateway/internal/api/handler"
	"github.com/abcretailers/identity-gateway/internal/api/middleware"
	"github.com/abcretailers/identity-gateway/internal/core/domain"
	"github.com/abcretailers/identity-gateway/internal/core/ports"
)

// Dependencies is everything the HTTP layer needs. RateLimitCache may be nil,
// which disables login throttling. Metrics defaults to the global registry.
type Dependencies struct {
	Registration ports.RegistrationService
	Login        ports.LoginService
	Sessions     ports.SessionService
	Dashboard    ports.DashboardService
	Storage      handler.StorageInitializer
	Orphans      handler.OrphanStore

	RateLimitCache redis.Cmdable
	LoginRateLimit int
	HealthChecks   []handler.DependencyCheck
	Metrics        *prometheus.Registry
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "identity_gateway",
		Registerer: registerer,
	}))

	authHandler := handler.NewAuthHandler(deps.Registration, deps.Login, deps.Sessions, deps.Log)
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboard, deps.Log)
	adminHandler := handler.NewAdminHandler(deps.Storage, deps.Orphans, deps.Log)
	authMiddleware := middleware.Auth(deps.Sessions)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login, middleware.LoginRateLimit(deps.RateLimitCache, deps.LoginRateLimit, deps.Log))
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/session", authHandler.Session, authMiddleware)

	// --- Authenticated routes ---
	e.GET("/dashboard", dashboardHandler.Get, authMiddleware)

	admin := e.Group("/admin", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	admin.POST("/storage/initialize", adminHandler.InitializeStorage)
	admin.GET("/orphans", adminHandler.ListOrphans)
	admin.POST("/orphans/:username/resolve", adminHandler.ResolveOrphan)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(deps.HealthChecks...).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
