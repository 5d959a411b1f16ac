package records

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory, in insertion order
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
	order   []uuid.UUID
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]Record),
	}
}

// List returns all records in insertion order
func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	return s.Search(ctx, "")
}

// Get returns the record with the given ID
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return record, nil
}

// Add stores a new record
func (s *MemoryStore) Add(_ context.Context, record Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return Record{}, fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
	}
	s.records[record.ID] = record
	s.order = append(s.order, record.ID)
	return record, nil
}

// Update replaces an existing record, keeping its creation time
func (s *MemoryStore) Update(_ context.Context, record Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[record.ID]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, record.ID)
	}
	record.CreatedAt = existing.CreatedAt
	s.records[record.ID] = record
	return record, nil
}

// Delete removes a record
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(other uuid.UUID) bool { return other == id })
	return nil
}

// Search returns the records matching query, in insertion order
func (s *MemoryStore) Search(ctx context.Context, query string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if record := s.records[id]; record.Matches(query) {
			results = append(results, record)
		}
	}
	return results, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
