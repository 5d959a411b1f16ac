package export

import (
	"path/filepath"
	"strings"
	"time"
)

// RecordRow is the raw on-disk form of a record for import. Dates use
// YYYY-MM-DD.
type RecordRow struct {
	ID          string `csv:"id" parquet:"id" json:"id,omitempty"`
	FirstName   string `csv:"first_name" parquet:"first_name" json:"first_name"`
	LastName    string `csv:"last_name" parquet:"last_name" json:"last_name"`
	NationalID  string `csv:"national_id" parquet:"national_id" json:"national_id"`
	Email       string `csv:"email" parquet:"email" json:"email"`
	Address     string `csv:"address" parquet:"address" json:"address"`
	City        string `csv:"city" parquet:"city" json:"city"`
	PostalCode  string `csv:"postal_code" parquet:"postal_code" json:"postal_code"`
	Phone       string `csv:"phone" parquet:"phone" json:"phone"`
	DateOfBirth string `csv:"date_of_birth" parquet:"date_of_birth" json:"date_of_birth"`
}

// MaskedRow is the exported form of a record. Every personal field holds its
// masked value.
type MaskedRow struct {
	ID         string `csv:"id" parquet:"id" json:"id"`
	Name       string `csv:"name" parquet:"name" json:"name"`
	NationalID string `csv:"national_id" parquet:"national_id" json:"national_id"`
	Email      string `csv:"email" parquet:"email" json:"email"`
	Address    string `csv:"address" parquet:"address" json:"address"`
	City       string `csv:"city" parquet:"city" json:"city"`
	PostalCode string `csv:"postal_code" parquet:"postal_code" json:"postal_code"`
	Phone      string `csv:"phone" parquet:"phone" json:"phone"`
	BirthYear  int64  `csv:"birth_year" parquet:"birth_year" json:"birth_year,omitempty"`
}

// maskedColumns is the CSV header written by the exporter
var maskedColumns = []string{"id", "name", "national_id", "email", "address", "city", "postal_code", "phone", "birth_year"}

// ImportResult summarises an import run
type ImportResult struct {
	TotalRows   int64         `json:"total_rows"`
	ValidRows   int64         `json:"valid_rows"`
	InvalidRows int64         `json:"invalid_rows"`
	Duration    time.Duration `json:"duration"`
	Errors      []string      `json:"errors,omitempty"`
}

// maxReportedErrors caps ImportResult.Errors
const maxReportedErrors = 20

// FileFormat represents supported file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
)

// DetectFileFormat detects file format from extension, defaulting to CSV
func DetectFileFormat(filename string) FileFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".parquet":
		return FormatParquet
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	default:
		return FormatCSV
	}
}
