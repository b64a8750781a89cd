package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"devisflow/internal/app"
	"devisflow/internal/config"
	"devisflow/internal/handler"
	"devisflow/internal/router"
	"devisflow/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// A missing .env is fine; the environment may already carry everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	sessions := service.NewSessionRegistry(a.Service, cfg.Log.BufferSize)

	// Nil stores must reach the health handler as untyped nils.
	var dbPinger handler.Pinger
	if a.DB != nil {
		dbPinger = a.DB
	}
	var rdb redis.UniversalClient
	if a.Redis != nil {
		rdb = a.Redis
	}

	r := router.Setup(cfg, logger,
		handler.NewExtractionHandler(sessions, a.Service, a.Preferences, cfg.Pipeline.MaxFileSizeMB<<20),
		handler.NewSessionHandler(sessions),
		handler.NewLogHandler(sessions),
		handler.NewPreferenceHandler(a.Preferences),
		handler.NewProviderHandler(a.Gateway),
		handler.NewHealthHandler(dbPinger, rdb),
	)

	srv := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		// Also caps SSE streams; clients reconnect.
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("environment", cfg.Server.Environment),
			zap.Int("providers", len(a.Gateway.Providers())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
