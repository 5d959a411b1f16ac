package records

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no record has the requested ID
	ErrNotFound = errors.New("record not found")
	// ErrInvalidRecord is returned when a record misses a required field
	ErrInvalidRecord = errors.New("invalid record")
	// ErrDuplicateID is returned when adding a record whose ID already exists
	ErrDuplicateID = errors.New("duplicate record id")
)

// Record is a personal record. Every field except the ID and timestamps is
// sensitive and must only be logged through its masked form.
type Record struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	NationalID  string    `db:"national_id" json:"national_id"`
	Email       string    `db:"email" json:"email"`
	Address     string    `db:"address" json:"address"`
	City        string    `db:"city" json:"city"`
	PostalCode  string    `db:"postal_code" json:"postal_code"`
	Phone       string    `db:"phone" json:"phone"`
	DateOfBirth time.Time `db:"date_of_birth" json:"date_of_birth"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// MaskedRecord is the display-safe view of a Record used in logs, events
// and exports.
type MaskedRecord struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	NationalID string    `json:"national_id"`
	Email      string    `json:"email"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Phone      string    `json:"phone"`
	BirthYear  int       `json:"birth_year,omitempty"`
}

// Store persists records
type Store interface {
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	Add(ctx context.Context, record Record) (Record, error)
	Update(ctx context.Context, record Record) (Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string) ([]Record, error)
	Close() error
}

// EventKind names a record lifecycle event
type EventKind string

const (
	EventAdded   EventKind = "record_added"
	EventUpdated EventKind = "record_updated"
	EventDeleted EventKind = "record_deleted"
)

// Publisher receives masked record lifecycle events
type Publisher interface {
	PublishRecordEvent(kind EventKind, record MaskedRecord)
}

// Syncer pushes records to a remote system
type Syncer interface {
	SyncRecord(ctx context.Context, record Record) error
}
