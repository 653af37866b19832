package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/erp/seafreight/internal/infrastructure/auth"
	"github.com/erp/seafreight/internal/infrastructure/config"
	"github.com/erp/seafreight/internal/infrastructure/logger"
	"github.com/erp/seafreight/internal/interfaces/http/dto"
	"github.com/erp/seafreight/internal/interfaces/http/handler"
	"github.com/erp/seafreight/internal/interfaces/http/middleware"
)

// RateService is what the HTTP layer needs from the rate search service.
type RateService interface {
	handler.RateSearcher
	handler.ProviderStatus
}

// Dependencies are the collaborators the engine is built from. Nil optional
// fields switch the matching feature off.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Version string
	Rates   RateService

	// Optional
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist
	RateLimiter    *middleware.RateLimiter
	HTTPMetrics    *middleware.HTTPMetrics
	Gatherer       prometheus.Gatherer
}

// NewEngine builds the gin engine with the full middleware stack and routes.
func NewEngine(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters:
	// 1. RequestID - Generate/propagate request ID
	// 2. Tracing - Server span, then request_id on it
	// 3. Logger - Request-scoped logger and access log
	// 4. Recovery - Catch panics, logged with the request logger
	// 5. Metrics - Prometheus request metrics
	// 6. Security headers, CORS, body limit
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Recovery())
	if deps.HTTPMetrics != nil {
		engine.Use(deps.HTTPMetrics.Handler())
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSFromConfig(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	systemHandler := handler.NewSystemHandler(cfg.App.Name, deps.Version, deps.Rates)
	engine.GET("/health", systemHandler.Health)
	if deps.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	if deps.JWTService != nil {
		jwtConfig := middleware.DefaultJWTConfig(deps.JWTService)
		jwtConfig.TokenBlacklist = deps.TokenBlacklist
		jwtConfig.Logger = log
		r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	}

	rateHandler := handler.NewRateHandler(deps.Rates)
	rateRoutes := NewDomainGroup("rates", "/rates")
	if deps.RateLimiter != nil {
		rateRoutes.Use(middleware.RateLimit(deps.RateLimiter))
	}
	rateRoutes.POST("/search", rateHandler.Search)
	rateRoutes.POST("/export", rateHandler.Export)
	r.Register(rateRoutes)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	r.Register(systemRoutes)

	r.Setup()
	for _, route := range r.Routes() {
		log.Debug("Route registered",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}
	return engine
}
