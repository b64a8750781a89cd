// Package app wires the extraction pipeline from configuration. Both the HTTP
// server and the CLI build their dependencies here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"devisflow/internal/config"
	"devisflow/internal/cost"
	"devisflow/internal/credential"
	"devisflow/internal/gateway"
	_ "devisflow/internal/gateway/all"
	"devisflow/internal/pdftext"
	"devisflow/internal/port"
	"devisflow/internal/preferences"
	"devisflow/internal/prompt"
	"devisflow/internal/repository/postgres"
	"devisflow/internal/service"
	s3storage "devisflow/internal/storage/s3"
)

// App holds the wired pipeline and the optional stores behind it. DB and
// Redis are nil when disabled.
type App struct {
	Config      *config.Config
	Gateway     *gateway.Gateway
	Service     service.ExtractionService
	Preferences port.PreferenceStore
	DB          *sqlx.DB
	Redis       *redis.Client
}

// Build creates every component enabled in cfg. Call Close when done.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg}

	gw, err := gateway.New(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("initializing gateway: %w", err)
	}
	a.Gateway = gw

	stores := []port.CredentialStore{credential.NewConfigStore(&cfg.LLM)}
	if cfg.DB.Enabled {
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.DB = db
		stores = append(stores, postgres.NewAPIKeyRepo(db))
		log.Info("credential store enabled", zap.String("host", cfg.DB.Host))
	}

	if cfg.Redis.Enabled {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.Preferences = preferences.NewRedisStore(a.Redis)
		log.Info("preference store enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		a.Preferences = preferences.NewMemoryStore()
	}

	opts := service.ExtractionOptions{DemoMode: cfg.Pipeline.DemoMode}
	if cfg.Storage.Enabled {
		storage, err := s3storage.NewS3Client(ctx, &cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		opts.Storage = storage
		opts.Bucket = cfg.Storage.Bucket
		log.Info("upload archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}
	if cfg.Pipeline.DemoMode {
		log.Warn("demo mode is on: documents without bedding vocabulary are replaced by sample text")
	}

	a.Service = service.NewExtractionService(
		gw,
		pdftext.NewExtractor(log.Named("pdftext")),
		credential.NewChain(stores...),
		prompt.NewBuilder(cfg.Pipeline.MaxTextLength),
		cost.NewCalculator(cfg.Pricing),
		opts,
	)
	return a, nil
}

// Close releases the database pool and the Redis client.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}
