package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/user/feed-service/internal/adapter/postgres"
	redis_adapter "github.com/user/feed-service/internal/adapter/redis"
	"github.com/user/feed-service/internal/delivery/http/handler"
	"github.com/user/feed-service/internal/delivery/http/router"
	"github.com/user/feed-service/internal/olx"
	"github.com/user/feed-service/internal/usecase"
	"github.com/user/feed-service/pkg/config"
	"github.com/user/feed-service/pkg/logger"
	"github.com/user/feed-service/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logLevel := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	logger.Init(os.Stdout, logLevel)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	ctx := context.Background()

	// --- Database Connections ---
	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	slog.Info("PostgreSQL connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connection established")

	// --- Repositories ---
	propertyRepo := postgres.NewPropertyRepo(dbpool)
	metadataRepo := postgres.NewOlxMetadataRepo(dbpool)
	feedGuardRepo := redis_adapter.NewFeedGuardRepo(rdb)

	// --- Use Cases ---
	validator := olx.NewValidator(cfg.AllowedStates())
	feedClient := &http.Client{Timeout: time.Duration(cfg.FeedFetchTimeoutSeconds) * time.Second}
	guardTTL := time.Duration(cfg.FeedGuardHours) * time.Hour

	importer := usecase.NewImporter(propertyRepo, feedGuardRepo, feedClient, guardTTL)
	exporter := usecase.NewExporter(propertyRepo, metadataRepo, validator)
	olxManager := usecase.NewOlxManager(propertyRepo, metadataRepo, validator, cfg.OlxMaxListings)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(importer, exporter, olxManager, propertyRepo, feedGuardRepo)
	httpRouter := router.New(apiHandler, cfg.AdminToken)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exiting")
}
