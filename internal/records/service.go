package records

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raaihank/record-sentinel/internal/logger"
	"github.com/raaihank/record-sentinel/internal/masking"
	"go.uber.org/zap"
)

const defaultSyncTimeout = 30 * time.Second

// Service implements record management on top of a Store. All logging goes
// through the masking engine.
type Service struct {
	store       Store
	syncer      Syncer
	publisher   Publisher
	logger      *logger.Logger
	syncTimeout time.Duration
	now         func() time.Time

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewService creates a record service. syncer and publisher may be nil.
func NewService(store Store, syncer Syncer, publisher Publisher, log *logger.Logger) *Service {
	return &Service{
		store:       store,
		syncer:      syncer,
		publisher:   publisher,
		logger:      log.WithComponent("records"),
		syncTimeout: defaultSyncTimeout,
		now:         time.Now,
	}
}

// List returns every record
func (s *Service) List(ctx context.Context) ([]Record, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Records listed", zap.Int("count", len(out)))
	return out, nil
}

// Get returns one record
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	s.logger.Info("Viewing record details", zap.Object("record", record))
	return record, nil
}

// Add validates and stores a new record, then syncs it in the background
func (s *Service) Add(ctx context.Context, record Record) (Record, error) {
	s.logger.Info("Adding new record",
		logger.MaskedName("name", record.FirstName, record.LastName),
		logger.Masked("national_id", masking.CategoryNationalID, record.NationalID),
		logger.Masked("email", masking.CategoryEmail, record.Email),
		logger.Masked("address", masking.CategoryStreetAddress, record.Address),
		logger.Masked("city", masking.CategoryCity, record.City),
		logger.Masked("postal_code", masking.CategoryPostalCode, record.PostalCode),
		logger.Masked("phone", masking.CategoryPhone, record.Phone),
	)

	if err := record.Validate(); err != nil {
		s.logger.Warn("Rejected record", zap.Error(err))
		return Record{}, err
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := s.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	stored, err := s.store.Add(ctx, record)
	if err != nil {
		return Record{}, fmt.Errorf("failed to add record: %w", err)
	}

	s.publish(EventAdded, stored)
	s.syncInBackground(stored)

	s.logger.Info("Record added successfully", zap.String("record_id", stored.ID.String()))
	return stored, nil
}

// Update validates and replaces an existing record, then syncs it
func (s *Service) Update(ctx context.Context, record Record) (Record, error) {
	s.logger.Info("Updating record",
		zap.String("record_id", record.ID.String()),
		logger.Masked("national_id", masking.CategoryNationalID, record.NationalID),
		logger.Masked("address", masking.CategoryStreetAddress, record.Address),
		logger.Masked("city", masking.CategoryCity, record.City),
	)

	if err := record.Validate(); err != nil {
		s.logger.Warn("Rejected record update", zap.Error(err))
		return Record{}, err
	}

	record.UpdatedAt = s.now().UTC()
	stored, err := s.store.Update(ctx, record)
	if err != nil {
		return Record{}, fmt.Errorf("failed to update record: %w", err)
	}

	s.publish(EventUpdated, stored)
	s.syncInBackground(stored)

	s.logger.Info("Record updated successfully", zap.String("record_id", stored.ID.String()))
	return stored, nil
}

// Delete removes a record
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	s.logger.Info("Deleting record",
		logger.MaskedName("name", record.FirstName, record.LastName),
		logger.Masked("national_id", masking.CategoryNationalID, record.NationalID),
	)

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	s.publish(EventDeleted, record)
	s.logger.Info("Record deleted successfully", zap.String("record_id", id.String()))
	return nil
}

// Search returns records matching query. The query may itself be personal
// data, so only its masked form is logged.
func (s *Service) Search(ctx context.Context, query string) ([]Record, error) {
	s.logger.Info("Searching records", zap.String("query", masking.FullMask(query)))

	results, err := s.store.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}

	s.logger.Info("Search completed", zap.Int("found", len(results)))
	for _, record := range results {
		s.logger.Debug("Match found",
			logger.MaskedName("name", record.FirstName, record.LastName),
			logger.Masked("national_id", masking.CategoryNationalID, record.NationalID),
		)
	}
	return results, nil
}

// Seed adds the sample records when the store is empty and returns how many
// were added
func (s *Service) Seed(ctx context.Context) (int, error) {
	existing, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		s.logger.Debug("Store not empty, skipping sample data", zap.Int("count", len(existing)))
		return 0, nil
	}

	added := 0
	for _, record := range SampleRecords() {
		now := s.now().UTC()
		record.CreatedAt = now
		record.UpdatedAt = now
		if _, err := s.store.Add(ctx, record); err != nil {
			return added, fmt.Errorf("failed to seed record: %w", err)
		}
		added++
	}

	s.logger.Info("Sample data loaded", zap.Int("count", added))
	return added, nil
}

// Close stops new background syncs, waits for running ones and closes the
// store. Records written after Close are not synced.
func (s *Service) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
	return s.store.Close()
}

func (s *Service) publish(kind EventKind, record Record) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishRecordEvent(kind, record.Masked())
}

func (s *Service) syncInBackground(record Record) {
	if s.syncer == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("Record sync skipped, service is closing",
			zap.String("record_id", record.ID.String()))
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
		defer cancel()

		if err := s.syncer.SyncRecord(ctx, record); err != nil {
			s.logger.Warn("Record sync failed",
				zap.String("record_id", record.ID.String()),
				zap.Error(err))
		}
	}()
}
