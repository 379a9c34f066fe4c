package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"maintenance-logbook-backend/config"
	"maintenance-logbook-backend/internal/account"
	"maintenance-logbook-backend/internal/api"
	"maintenance-logbook-backend/internal/attachment"
	"maintenance-logbook-backend/internal/auth"
	"maintenance-logbook-backend/internal/db"
	"maintenance-logbook-backend/internal/lifecycle"
	"maintenance-logbook-backend/internal/monitor"
	"maintenance-logbook-backend/internal/sla"
	"maintenance-logbook-backend/internal/store"
)

func main() {
	// A missing .env is fine; the config file and real environment still apply.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	logger.Info("configuration loaded", zap.String("path", configPath))

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	appStore := store.NewGormStore(gormDB, logger.Named("store"))

	attachments, err := attachment.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxImageBytes, logger.Named("attachment"))
	if err != nil {
		logger.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	evaluator := sla.NewEvaluator(cfg.SLAThresholds())
	complaints := lifecycle.NewService(appStore, evaluator, cfg.Uploads.MaxImages, logger.Named("lifecycle"))
	accounts := account.NewService(appStore, tokens, cfg.Auth.BcryptCost, logger.Named("account"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	escalations := monitor.NewService(complaints, cfg.Monitor.Interval, logger.Named("monitor"))
	go escalations.Run(ctx)

	handler := api.NewHandler(complaints, accounts, attachments, appStore, logger.Named("api"))
	router := api.NewRouter(handler, tokens, api.RouterConfig{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        cfg.Server.CacheTTL,
		UploadDir:       attachments.Dir(),
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server Shutdown", zap.Error(err))
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("server gracefully stopped")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	return zc.Build()
}
