package cache

import (
	"context"

	"github.com/google/uuid"
	"github.com/raaihank/record-sentinel/internal/records"
	"go.uber.org/zap"
)

// CachedStore is a records.Store that reads through and writes through a
// RecordCache. Cache failures are logged and never fail the operation.
type CachedStore struct {
	records.Store
	cache  *RecordCache
	logger *zap.Logger
}

// NewCachedStore decorates store with cache
func NewCachedStore(store records.Store, cache *RecordCache, logger *zap.Logger) *CachedStore {
	return &CachedStore{Store: store, cache: cache, logger: logger}
}

// Get serves from the cache when possible and fills it on a miss
func (s *CachedStore) Get(ctx context.Context, id uuid.UUID) (records.Record, error) {
	if record, ok, err := s.cache.Get(ctx, id); err != nil {
		s.logger.Warn("Record cache unavailable", zap.Error(err))
	} else if ok {
		return record, nil
	}

	record, err := s.Store.Get(ctx, id)
	if err != nil {
		return records.Record{}, err
	}
	s.remember(ctx, record)
	return record, nil
}

// Add stores the record and caches it
func (s *CachedStore) Add(ctx context.Context, record records.Record) (records.Record, error) {
	stored, err := s.Store.Add(ctx, record)
	if err != nil {
		return records.Record{}, err
	}
	s.remember(ctx, stored)
	return stored, nil
}

// Update replaces the record and refreshes the cache
func (s *CachedStore) Update(ctx context.Context, record records.Record) (records.Record, error) {
	stored, err := s.Store.Update(ctx, record)
	if err != nil {
		return records.Record{}, err
	}
	s.remember(ctx, stored)
	return stored, nil
}

// Delete removes the record and drops it from the cache
func (s *CachedStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate cached record", zap.String("record_id", id.String()), zap.Error(err))
	}
	return nil
}

// Close closes the cache and the underlying store
func (s *CachedStore) Close() error {
	if err := s.cache.Close(); err != nil {
		s.logger.Warn("Failed to close record cache", zap.Error(err))
	}
	return s.Store.Close()
}

func (s *CachedStore) remember(ctx context.Context, record records.Record) {
	if err := s.cache.Store(ctx, record); err != nil {
		s.logger.Warn("Failed to cache record", zap.String("record_id", record.ID.String()), zap.Error(err))
	}
}
