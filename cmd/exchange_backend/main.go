package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/smbrine/exchange-api-test-task/internal/core/domain"
	portssvc "github.com/smbrine/exchange-api-test-task/internal/core/ports/services"
	"github.com/smbrine/exchange-api-test-task/internal/core/services"
	"github.com/smbrine/exchange-api-test-task/internal/handlers"
	"github.com/smbrine/exchange-api-test-task/internal/middleware"
	"github.com/smbrine/exchange-api-test-task/internal/platform/config"
	repocache "github.com/smbrine/exchange-api-test-task/internal/repositories/cache"
	"github.com/smbrine/exchange-api-test-task/internal/repositories/upstream"
	pkgcache "github.com/smbrine/exchange-api-test-task/pkg/cache"
)

// @title Exchange API
// @version 1.0
// @description Currency conversion service backed by CBR and currency-api rate snapshots.

// @BasePath /
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	runtimeCfg, err := config.NewRuntimeLoader(cfg.ConfigPath, cfg.ReloadInterval)
	if err != nil {
		// Not fatal: the loader falls back to defaults (cache enabled).
		logger.Warn("Runtime config unavailable, using defaults", slog.String("error", err.Error()))
	}

	// The cache is optional: when Redis is unreachable the service degrades
	// to fetching every rate from upstream.
	redisClient, err := pkgcache.NewRedisClient(context.Background(), cfg.RedisURL)
	if err != nil {
		logger.Warn("Redis unavailable, running without cache", slog.String("error", err.Error()))
		redisClient = nil
	}
	defer pkgcache.CloseRedisClient(redisClient)

	rateCache := repocache.NewRedisCache(redisClient, runtimeCfg, logger)
	cbrProvider := upstream.NewCBRProvider(cfg.CBRAPIURL, rateCache)
	currencyAPIProvider := upstream.NewCurrencyAPIProvider(cfg.CurrencyAPIURL, rateCache)
	rateService := services.NewRateService(rateCache, cbrProvider, currencyAPIProvider, domain.ReferenceCurrency)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, &portssvc.ServiceContainer{Rate: rateService})

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
