package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"supplychain-analytics/internal/analytics"
	"supplychain-analytics/internal/auth"
	"supplychain-analytics/internal/cache"
	"supplychain-analytics/internal/config"
	"supplychain-analytics/internal/db"
	httphandler "supplychain-analytics/internal/http"
	"supplychain-analytics/internal/http/middleware"
	"supplychain-analytics/internal/logger"
	"supplychain-analytics/internal/repository"
	"supplychain-analytics/internal/service"
	"supplychain-analytics/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment, cfg.LogDir)

	dataSource, err := buildSource(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to initialize data source")
	}

	resultCache := cache.New(time.Duration(cfg.Analytics.CacheTTLSeconds) * time.Second)
	evaluator := analytics.NewEvaluator(cfg.Analytics.LowStockThreshold, cfg.Analytics.DelayFromTimes)

	queries := service.NewQueryService(dataSource, resultCache, evaluator,
		cfg.Analytics.DefaultRangeDays, cfg.Analytics.MaxRangeDays, appLogger)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(queries, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment,
		cfg.RateLimit.RequestsPerMinute, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().
		Str("addr", addr).
		Str("backend", cfg.Source.Backend).
		Int("cache_ttl_seconds", cfg.Analytics.CacheTTLSeconds).
		Msg("starting supply chain analytics service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}

func buildSource(cfg *config.Config, appLogger zerolog.Logger) (source.Source, error) {
	switch cfg.Source.Backend {
	case "csv":
		return source.NewCSVSource(cfg.Source.LogisticsCSV, cfg.Source.InventoryCSV, appLogger), nil
	case "sqlite":
		return source.NewSQLiteSource(cfg.Source.SQLitePath, appLogger)
	case "postgres":
		database, err := db.New(db.Options{
			DSN:             cfg.DB.DSN,
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		}, appLogger)
		if err != nil {
			return nil, err
		}
		return repository.NewRecordRepository(database, appLogger), nil
	case "s3":
		return source.NewS3Source(source.S3Config{
			Bucket:       cfg.Source.S3Bucket,
			Region:       cfg.Source.S3Region,
			Endpoint:     cfg.Source.S3Endpoint,
			AccessKey:    cfg.Source.S3AccessKey,
			SecretKey:    cfg.Source.S3SecretKey,
			LogisticsKey: cfg.Source.S3LogisticsKey,
			InventoryKey: cfg.Source.S3InventoryKey,
		}, appLogger), nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}
}
