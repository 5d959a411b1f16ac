package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/raaihank/record-sentinel/internal/records"
	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"
)

// Exporter writes masked record snapshots for offline diagnostics
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates an exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Export writes the masked form of recs to path, choosing the format from
// the file extension. It returns the number of rows written.
func (e *Exporter) Export(ctx context.Context, recs []records.Record, path string) (int, error) {
	start := time.Now()
	format := DetectFileFormat(path)

	rows := make([]MaskedRow, 0, len(recs))
	for _, record := range recs {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		rows = append(rows, maskedRow(record.Masked()))
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}

	if err := e.Write(file, format, rows); err != nil {
		file.Close()
		return 0, err
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("failed to close export file: %w", err)
	}

	e.logger.Info("Masked snapshot exported",
		zap.String("file", path),
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", time.Since(start)))

	return len(rows), nil
}

// Write encodes rows to w in the given format
func (e *Exporter) Write(w io.Writer, format FileFormat, rows []MaskedRow) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatParquet:
		return writeParquet(w, rows)
	default:
		return fmt.Errorf("unsupported file format: %s", format)
	}
}

func maskedRow(m records.MaskedRecord) MaskedRow {
	return MaskedRow{
		ID:         m.ID.String(),
		Name:       m.Name,
		NationalID: m.NationalID,
		Email:      m.Email,
		Address:    m.Address,
		City:       m.City,
		PostalCode: m.PostalCode,
		Phone:      m.Phone,
		BirthYear:  int64(m.BirthYear),
	}
}

func writeCSV(w io.Writer, rows []MaskedRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(maskedColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		birthYear := ""
		if row.BirthYear != 0 {
			birthYear = strconv.FormatInt(row.BirthYear, 10)
		}
		err := writer.Write([]string{
			row.ID, row.Name, row.NationalID, row.Email, row.Address,
			row.City, row.PostalCode, row.Phone, birthYear,
		})
		if err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeJSON writes one JSON object per line
func writeJSON(w io.Writer, rows []MaskedRow) error {
	encoder := json.NewEncoder(w)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return fmt.Errorf("failed to write JSON row: %w", err)
		}
	}
	return nil
}

func writeParquet(w io.Writer, rows []MaskedRow) error {
	writer := parquet.NewGenericWriter[MaskedRow](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write Parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish Parquet file: %w", err)
	}
	return nil
}
