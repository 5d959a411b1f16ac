package bootstrap

import (
	"context"
	"testing"

	"github.com/raaihank/record-sentinel/internal/config"
	"github.com/raaihank/record-sentinel/internal/logger"
	"github.com/raaihank/record-sentinel/internal/records"
)

func TestOpenStore(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		store, err := OpenStore(config.GetDefaults(), logger.NewNop())
		if err != nil {
			t.Fatalf("Failed to open memory store: %v", err)
		}
		defer store.Close()

		if _, ok := store.(*records.MemoryStore); !ok {
			t.Errorf("Expected *records.MemoryStore, got %T", store)
		}
	})

	t.Run("UnreachableCache", func(t *testing.T) {
		cfg := config.GetDefaults()
		cfg.Cache.Enabled = true
		cfg.Cache.RedisURL = "redis://127.0.0.1:1/0"

		store, err := OpenStore(cfg, logger.NewNop())
		if err != nil {
			t.Fatalf("An unreachable cache must not fail startup, got %v", err)
		}
		defer store.Close()

		if _, err := store.List(context.Background()); err != nil {
			t.Errorf("Expected a working store, got %v", err)
		}
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		cfg := config.GetDefaults()
		cfg.Storage.Driver = "sqlite"
		if _, err := OpenStore(cfg, logger.NewNop()); err == nil {
			t.Error("Expected error for unknown driver")
		}
	})
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(config.GetDefaults())
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if log.Level().String() != config.GetDefaults().Logging.Level {
		t.Errorf("Expected level %s, got %s", config.GetDefaults().Logging.Level, log.Level())
	}
}
