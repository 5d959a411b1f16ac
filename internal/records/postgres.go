package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/raaihank/record-sentinel/internal/masking"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id            UUID PRIMARY KEY,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL,
	national_id   TEXT NOT NULL,
	email         TEXT NOT NULL,
	address       TEXT NOT NULL DEFAULT '',
	city          TEXT NOT NULL DEFAULT '',
	postal_code   TEXT NOT NULL DEFAULT '',
	phone         TEXT NOT NULL DEFAULT '',
	date_of_birth TIMESTAMPTZ NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS records_created_at_idx ON records (created_at);`

const selectColumns = `id, first_name, last_name, national_id, email, address, city, postal_code, phone, date_of_birth, created_at, updated_at`

// PostgresConfig contains database configuration
type PostgresConfig struct {
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// PostgresStore persists records in PostgreSQL
type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresStore connects to PostgreSQL and makes sure the schema exists
func NewPostgresStore(config PostgresConfig, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", config.DatabaseURL)
	if err != nil {
		// lib/pq errors can echo the DSN back, so only the masked form is reported.
		return nil, fmt.Errorf("failed to connect to database %s: %s",
			masking.ConnectionString(config.DatabaseURL), connectFailure(err))
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	store := &PostgresStore{
		db:     db,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Info("Record store initialized successfully",
		zap.String("database_url", masking.ConnectionString(config.DatabaseURL)),
		zap.Int("max_open_conns", config.MaxOpenConns),
		zap.Int("max_idle_conns", config.MaxIdleConns))

	return store, nil
}

// NewPostgresStoreFromDB wraps an existing connection
func NewPostgresStoreFromDB(db *sqlx.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// EnsureSchema checks the connection and creates the records table
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// List returns all records, oldest first
func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	var out []Record
	query := `SELECT ` + selectColumns + ` FROM records ORDER BY created_at, id`
	if err := s.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return out, nil
}

// Get returns the record with the given ID
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	var record Record
	query := `SELECT ` + selectColumns + ` FROM records WHERE id = $1`
	err := s.db.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// Add inserts a new record
func (s *PostgresStore) Add(ctx context.Context, record Record) (Record, error) {
	query := `
		INSERT INTO records (id, first_name, last_name, national_id, email, address, city, postal_code, phone, date_of_birth, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :national_id, :email, :address, :city, :postal_code, :phone, :date_of_birth, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, query, record); err != nil {
		if isUniqueViolation(err) {
			return Record{}, fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
		}
		s.logger.Error("Failed to insert record",
			zap.String("record_id", record.ID.String()),
			zap.Error(err))
		return Record{}, fmt.Errorf("failed to insert record: %w", err)
	}

	s.logger.Debug("Record inserted", zap.String("record_id", record.ID.String()))
	return record, nil
}

// Update replaces an existing record, keeping its creation time
func (s *PostgresStore) Update(ctx context.Context, record Record) (Record, error) {
	query := `
		UPDATE records SET
			first_name = $2, last_name = $3, national_id = $4, email = $5, address = $6,
			city = $7, postal_code = $8, phone = $9, date_of_birth = $10, updated_at = $11
		WHERE id = $1
		RETURNING created_at`

	err := s.db.QueryRowxContext(ctx, query,
		record.ID,
		record.FirstName,
		record.LastName,
		record.NationalID,
		record.Email,
		record.Address,
		record.City,
		record.PostalCode,
		record.Phone,
		record.DateOfBirth,
		record.UpdatedAt,
	).Scan(&record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, record.ID)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to update record: %w", err)
	}
	return record, nil
}

// Delete removes a record
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Search matches names and email case-insensitively and the national ID
// verbatim
func (s *PostgresStore) Search(ctx context.Context, query string) ([]Record, error) {
	if query == "" {
		return s.List(ctx)
	}

	var out []Record
	sqlQuery := `SELECT ` + selectColumns + ` FROM records
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1 OR national_id LIKE $1
		ORDER BY created_at, id`
	if err := s.db.SelectContext(ctx, &out, sqlQuery, containsPattern(query)); err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	return out, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// containsPattern builds a LIKE pattern matching query as a literal substring
// connectFailure describes a connection error using only server error codes,
// the failing network operation or a timeout, never the error text itself.
func connectFailure(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Sprintf("server error %s (%s)", pqErr.Code, pqErr.Code.Name())
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		cause := opErr.Op + " " + opErr.Net
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			cause += ": " + errno.Error()
		}
		return cause
	}
	return "connection failed"
}

func containsPattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
