// Package bootstrap builds the shared runtime pieces both binaries need from
// a loaded configuration.
package bootstrap

import (
	"fmt"

	"github.com/raaihank/record-sentinel/internal/cache"
	"github.com/raaihank/record-sentinel/internal/config"
	"github.com/raaihank/record-sentinel/internal/logger"
	"github.com/raaihank/record-sentinel/internal/records"
	"go.uber.org/zap"
)

// NewLogger creates the process logger from the logging section
func NewLogger(cfg *config.Config) (*logger.Logger, error) {
	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}

	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled:  cfg.Logging.File.Enabled,
			Path:     cfg.Logging.File.Path,
			MaxSize:  cfg.Logging.File.MaxSize,
			MaxAge:   cfg.Logging.File.MaxAge,
			Compress: cfg.Logging.File.Compress,
		}
	}

	return logger.New(loggerConfig)
}

// OpenStore opens the configured record store, wrapped in the Redis cache
// when caching is enabled. A cache that cannot be reached is logged and
// skipped.
func OpenStore(cfg *config.Config, log *logger.Logger) (records.Store, error) {
	var store records.Store

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pg, err := records.NewPostgresStore(records.PostgresConfig{
			DatabaseURL:     cfg.Storage.DatabaseURL,
			MaxOpenConns:    cfg.Storage.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Storage.ConnMaxIdleTime,
		}, log.WithComponent("postgres").Logger)
		if err != nil {
			return nil, err
		}
		store = pg
	case config.DriverMemory, "":
		store = records.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	log.Info("Record store opened", zap.String("driver", cfg.Storage.Driver))

	if !cfg.Cache.Enabled {
		return store, nil
	}

	cacheLog := log.WithComponent("cache").Logger
	recordCache, err := cache.NewRecordCache(&cache.Config{
		RedisURL:       cfg.Cache.RedisURL,
		MaxConnections: cfg.Cache.MaxConnections,
		MinIdleConns:   cfg.Cache.MinIdleConns,
		DefaultTTL:     cfg.Cache.DefaultTTL,
		KeyPrefix:      cfg.Cache.KeyPrefix,
	}, cacheLog)
	if err != nil {
		log.Warn("Record cache unavailable, continuing without it", zap.Error(err))
		return store, nil
	}

	return cache.NewCachedStore(store, recordCache, cacheLog), nil
}
