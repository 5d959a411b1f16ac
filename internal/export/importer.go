package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raaihank/record-sentinel/internal/records"
	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"
)

// Importer reads raw records from CSV, JSON or Parquet files for seeding
type Importer struct {
	logger *zap.Logger
}

// NewImporter creates an importer
func NewImporter(logger *zap.Logger) *Importer {
	return &Importer{logger: logger}
}

// Import reads every valid record from path. Invalid rows are skipped and
// counted; their values are never logged.
func (im *Importer) Import(ctx context.Context, path string) ([]records.Record, *ImportResult, error) {
	start := time.Now()
	format := DetectFileFormat(path)

	im.logger.Info("Starting import",
		zap.String("file", path),
		zap.String("format", string(format)))

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s file: %w", format, err)
	}
	defer file.Close()

	var (
		out    []records.Record
		result = &ImportResult{}
	)
	collect := func(row RecordRow) {
		result.TotalRows++
		record, err := row.toRecord()
		if err == nil {
			err = record.Validate()
		}
		if err != nil {
			result.InvalidRows++
			if len(result.Errors) < maxReportedErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", result.TotalRows, err))
			}
			im.logger.Debug("Skipping invalid row", zap.Int64("row", result.TotalRows), zap.Error(err))
			return
		}
		result.ValidRows++
		out = append(out, record)
	}

	switch format {
	case FormatCSV:
		err = readCSV(ctx, file, collect)
	case FormatJSON:
		err = readJSON(ctx, file, collect, result)
	case FormatParquet:
		err = readParquet(ctx, file, collect)
	default:
		err = fmt.Errorf("unsupported file format: %s", format)
	}
	if err != nil {
		return nil, result, fmt.Errorf("%s import failed: %w", format, err)
	}

	result.Duration = time.Since(start)
	im.logger.Info("Import completed",
		zap.Int64("total_rows", result.TotalRows),
		zap.Int64("valid_rows", result.ValidRows),
		zap.Int64("invalid_rows", result.InvalidRows),
		zap.Duration("duration", result.Duration))

	return out, result, nil
}

func (row RecordRow) toRecord() (records.Record, error) {
	record := records.Record{
		FirstName:  strings.TrimSpace(row.FirstName),
		LastName:   strings.TrimSpace(row.LastName),
		NationalID: strings.TrimSpace(row.NationalID),
		Email:      strings.TrimSpace(row.Email),
		Address:    strings.TrimSpace(row.Address),
		City:       strings.TrimSpace(row.City),
		PostalCode: strings.TrimSpace(row.PostalCode),
		Phone:      strings.TrimSpace(row.Phone),
	}

	if id := strings.TrimSpace(row.ID); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return records.Record{}, errors.New("invalid id")
		}
		record.ID = parsed
	}

	if dob := strings.TrimSpace(row.DateOfBirth); dob != "" {
		parsed, err := time.Parse(time.DateOnly, dob)
		if err != nil {
			return records.Record{}, errors.New("date_of_birth must be YYYY-MM-DD")
		}
		record.DateOfBirth = parsed
	}

	return record, nil
}

// readCSV maps columns by header name; unknown columns are ignored
func readCSV(ctx context.Context, r io.Reader, collect func(RecordRow)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(values []string, name string) string {
		if i, ok := columns[name]; ok && i < len(values) {
			return values[i]
		}
		return ""
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		values, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		collect(RecordRow{
			ID:          field(values, "id"),
			FirstName:   field(values, "first_name"),
			LastName:    field(values, "last_name"),
			NationalID:  field(values, "national_id"),
			Email:       field(values, "email"),
			Address:     field(values, "address"),
			City:        field(values, "city"),
			PostalCode:  field(values, "postal_code"),
			Phone:       field(values, "phone"),
			DateOfBirth: field(values, "date_of_birth"),
		})
	}
}

// readJSON reads one JSON object per line. Malformed lines count as invalid.
func readJSON(ctx context.Context, r io.Reader, collect func(RecordRow), result *ImportResult) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var row RecordRow
		if err := json.Unmarshal(line, &row); err != nil {
			result.TotalRows++
			result.InvalidRows++
			if len(result.Errors) < maxReportedErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: malformed JSON", result.TotalRows))
			}
			continue
		}
		collect(row)
	}
	return scanner.Err()
}

func readParquet(ctx context.Context, file *os.File, collect func(RecordRow)) error {
	reader := parquet.NewReader(file)
	defer reader.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var row RecordRow
		if err := reader.Read(&row); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read Parquet record: %w", err)
		}
		collect(row)
	}
}
