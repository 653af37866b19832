package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	freightapp "github.com/erp/seafreight/internal/application/freight"
	"github.com/erp/seafreight/internal/domain/freight"
	"github.com/erp/seafreight/internal/infrastructure/auth"
	"github.com/erp/seafreight/internal/infrastructure/cargofive"
	"github.com/erp/seafreight/internal/infrastructure/config"
	"github.com/erp/seafreight/internal/infrastructure/logger"
	"github.com/erp/seafreight/internal/infrastructure/telemetry"
	"github.com/erp/seafreight/internal/interfaces/http/middleware"
	"github.com/erp/seafreight/internal/interfaces/http/router"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

//	@title			Seafreight Rates API
//	@version		1.0
//	@description	Ocean freight rate search backed by the CargoFive public rates API
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Telemetry providers; each is a no-op when switched off
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log, logger.ParseLevel(cfg.Telemetry.LogsLevel))

	log.Info("Starting seafreight",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	// Rate provider
	provider, err := newRateProvider(cfg.Cargofive, log)
	if err != nil {
		log.Fatal("Failed to initialize CargoFive provider", zap.Error(err))
	}
	searchMetrics, err := telemetry.NewRateSearchMetrics(mp.Meter(cfg.Telemetry.ServiceName))
	if err != nil {
		log.Fatal("Failed to initialize rate search metrics", zap.Error(err))
	}
	rateService := freightapp.NewRateSearchService(provider,
		freightapp.WithMetrics(searchMetrics),
		freightapp.WithLogger(log),
		freightapp.WithEnabled(cfg.Cargofive.Enabled),
	)
	if !rateService.Enabled() {
		log.Warn("CargoFive provider is disabled; rate searches will be rejected")
	}

	deps := router.Dependencies{
		Config:  cfg,
		Logger:  log,
		Version: Version,
		Rates:   rateService,
	}

	// Authentication
	if cfg.JWT.Enabled {
		deps.JWTService = auth.NewJWTService(cfg.JWT)
		deps.TokenBlacklist = newTokenBlacklist(ctx, cfg.Redis, log)
	}

	// Prometheus
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.HTTPMetrics = middleware.NewHTTPMetrics(reg)
	deps.Gatherer = reg

	// Rate limiting
	if cfg.HTTP.RateLimitRequests > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		deps.RateLimiter = limiter
	}

	engine := router.NewEngine(deps)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newRateProvider builds the CargoFive provider. It returns a nil provider
// when the integration is switched off.
func newRateProvider(cfg config.CargofiveConfig, log *zap.Logger) (freight.RateProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	c5 := cargofive.NewConfig(cfg.APIKey)
	c5.Verbose = cfg.Verbose
	if cfg.BaseURL != "" {
		c5.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		c5.TimeoutSeconds = cfg.Timeout
	}

	gateway, err := cargofive.NewGateway(c5, cargofive.WithLogger(log.Named("cargofive")))
	if err != nil {
		return nil, err
	}
	return cargofive.NewProvider(gateway, cargofive.NewNormalizer()), nil
}

// newTokenBlacklist connects to Redis when configured and falls back to an
// in-process blacklist otherwise.
func newTokenBlacklist(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) auth.TokenBlacklist {
	if cfg.Enabled {
		bl, err := auth.NewRedisTokenBlacklist(ctx, cfg)
		if err == nil {
			log.Info("Token blacklist backed by Redis", zap.String("addr", cfg.Addr()))
			return bl
		}
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
	}
	return auth.NewInMemoryTokenBlacklist()
}
