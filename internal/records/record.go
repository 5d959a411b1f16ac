package records

import (
	"fmt"
	"strings"

	"github.com/raaihank/record-sentinel/internal/masking"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/cases"
)

// Validate checks the fields a record cannot be saved without. The error
// names the missing fields, never their values.
func (r Record) Validate() error {
	var missing []string
	if strings.TrimSpace(r.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(r.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(r.NationalID) == "" {
		missing = append(missing, "national_id")
	}
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRecord, strings.Join(missing, ", "))
	}
	return nil
}

// Masked returns the display-safe view of the record
func (r Record) Masked() MaskedRecord {
	m := MaskedRecord{
		ID:         r.ID,
		Name:       masking.FullName(r.FirstName, r.LastName),
		NationalID: masking.NationalID(r.NationalID),
		Email:      masking.Email(r.Email),
		Address:    masking.StreetAddress(r.Address),
		City:       masking.City(r.City),
		PostalCode: masking.PostalCode(r.PostalCode),
		Phone:      masking.Phone(r.Phone),
	}
	if !r.DateOfBirth.IsZero() {
		m.BirthYear = r.DateOfBirth.Year()
	}
	return m
}

// MarshalLogObject implements zapcore.ObjectMarshaler so that
// zap.Object("record", r) only ever writes masked values.
func (r Record) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	m := r.Masked()
	enc.AddString("id", m.ID.String())
	enc.AddString("name", m.Name)
	enc.AddString("national_id", m.NationalID)
	enc.AddString("email", m.Email)
	enc.AddString("address", m.Address)
	enc.AddString("city", m.City)
	enc.AddString("postal_code", m.PostalCode)
	enc.AddString("phone", m.Phone)
	return nil
}

// Matches reports whether the record matches a search query: names and
// email case-insensitively, the national ID verbatim. An empty query
// matches everything.
func (r Record) Matches(query string) bool {
	if query == "" {
		return true
	}

	fold := cases.Fold()
	q := fold.String(query)
	return strings.Contains(fold.String(r.FirstName), q) ||
		strings.Contains(fold.String(r.LastName), q) ||
		strings.Contains(fold.String(r.Email), q) ||
		strings.Contains(r.NationalID, query)
}
