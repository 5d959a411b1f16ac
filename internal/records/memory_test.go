package records

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("AddGetList", func(t *testing.T) {
		store := NewMemoryStore()
		for _, r := range SampleRecords() {
			if _, err := store.Add(ctx, r); err != nil {
				t.Fatalf("Failed to add record: %v", err)
			}
		}

		all, err := store.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(all))
		}
		if all[0].FirstName != "Jan" || all[1].FirstName != "Anna" {
			t.Error("Expected insertion order to be preserved")
		}

		got, err := store.Get(ctx, all[1].ID)
		if err != nil {
			t.Fatalf("Failed to get: %v", err)
		}
		if got.LastName != "Nowak" {
			t.Errorf("Expected Nowak, got %s", got.LastName)
		}
	})

	t.Run("DuplicateID", func(t *testing.T) {
		store := NewMemoryStore()
		r := sampleRecord()
		if _, err := store.Add(ctx, r); err != nil {
			t.Fatalf("Failed to add record: %v", err)
		}
		if _, err := store.Add(ctx, r); !errors.Is(err, ErrDuplicateID) {
			t.Errorf("Expected ErrDuplicateID, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		store := NewMemoryStore()
		r := sampleRecord()
		original, _ := store.Add(ctx, r)

		r.City = "Gdansk"
		r.CreatedAt = original.CreatedAt.AddDate(1, 0, 0)
		updated, err := store.Update(ctx, r)
		if err != nil {
			t.Fatalf("Failed to update: %v", err)
		}
		if updated.City != "Gdansk" {
			t.Errorf("Expected city update, got %s", updated.City)
		}
		if !updated.CreatedAt.Equal(original.CreatedAt) {
			t.Error("Update must keep the creation time")
		}

		r.ID = uuid.New()
		if _, err := store.Update(ctx, r); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := NewMemoryStore()
		r, _ := store.Add(ctx, sampleRecord())

		if err := store.Delete(ctx, r.ID); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if _, err := store.Get(ctx, r.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.Delete(ctx, r.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
		if all, _ := store.List(ctx); len(all) != 0 {
			t.Errorf("Expected empty store, got %d records", len(all))
		}
	})

	t.Run("Search", func(t *testing.T) {
		store := NewMemoryStore()
		for _, r := range SampleRecords() {
			store.Add(ctx, r)
		}

		results, err := store.Search(ctx, "nowak")
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(results) != 1 || results[0].FirstName != "Anna" {
			t.Errorf("Expected Anna Nowak, got %+v", results)
		}

		results, _ = store.Search(ctx, "example.com")
		if len(results) != 2 {
			t.Errorf("Expected 2 matches, got %d", len(results))
		}
	})

	t.Run("SearchCancelled", func(t *testing.T) {
		store := NewMemoryStore()
		store.Add(ctx, sampleRecord())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := store.Search(cancelled, ""); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}
