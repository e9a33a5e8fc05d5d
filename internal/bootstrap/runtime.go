// Package bootstrap assembles the shared runtime pieces for the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"funprofile/internal/cache"
	"funprofile/internal/config"
	"funprofile/internal/database"
	"funprofile/internal/middleware"
	"funprofile/internal/observability"
)

// Runtime holds the shared infrastructure handles.
type Runtime struct {
	Config          *config.Config
	DB              *gorm.DB
	ShutdownTracing func(context.Context) error
}

// InitRuntime loads config, sets up logging, tracing, the database and
// redis. Redis failure is tolerated; everything else is fatal.
func InitRuntime(ctx context.Context) (*Runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	middleware.InitLogger(cfg.Env)

	shutdownTracing, err := observability.InitTracing(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	if err := cache.InitRedis(cfg.RedisURL); err != nil {
		slog.Warn("running without cache", "error", err)
	}

	return &Runtime{
		Config:          cfg,
		DB:              db,
		ShutdownTracing: shutdownTracing,
	}, nil
}
