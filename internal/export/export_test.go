package export

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raaihank/record-sentinel/internal/records"
	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"
)

func TestDetectFileFormat(t *testing.T) {
	tests := map[string]FileFormat{
		"records.csv":       FormatCSV,
		"records.PARQUET":   FormatParquet,
		"records.json":      FormatJSON,
		"records.ndjson":    FormatJSON,
		"records":           FormatCSV,
		"dir.parquet/x.csv": FormatCSV,
	}
	for name, expected := range tests {
		if got := DetectFileFormat(name); got != expected {
			t.Errorf("DetectFileFormat(%q): expected %s, got %s", name, expected, got)
		}
	}
}

func assertMasked(t *testing.T, content string) {
	t.Helper()
	for _, record := range records.SampleRecords() {
		for _, raw := range []string{record.NationalID, record.LastName, record.Email, record.Address, record.Phone} {
			if strings.Contains(content, raw) {
				t.Errorf("Export leaks %q", raw)
			}
		}
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.csv")
	exporter := NewExporter(zap.NewNop())

	n, err := exporter.Export(context.Background(), records.SampleRecords(), path)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 rows, got %d", n)
	}

	data, _ := os.ReadFile(path)
	assertMasked(t, string(data))

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("Invalid CSV: %v", err)
	}
	if len(rows) != 3 || rows[0][1] != "name" {
		t.Fatalf("Unexpected CSV layout: %v", rows)
	}
	if rows[1][1] != "J. K." || rows[1][2] != "***********" || rows[1][8] != "1992" {
		t.Errorf("Unexpected masked row: %v", rows[1])
	}

	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if _, err := NewExporter(zap.NewNop()).Export(context.Background(), records.SampleRecords(), path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	assertMasked(t, string(data))
	if lines := strings.Count(string(data), "\n"); lines != 2 {
		t.Errorf("Expected 2 JSON lines, got %d", lines)
	}
	if !strings.Contains(string(data), `"email":"an********@example.com"`) {
		t.Errorf("Expected masked email, got %s", data)
	}
}

func TestExportParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.parquet")
	if _, err := NewExporter(zap.NewNop()).Export(context.Background(), records.SampleRecords(), path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open export: %v", err)
	}
	defer file.Close()

	reader := parquet.NewReader(file)
	defer reader.Close()

	var rows []MaskedRow
	for {
		var row MaskedRow
		if err := reader.Read(&row); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Failed to read Parquet row: %v", err)
		}
		rows = append(rows, row)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[1].Name != "A. N." || rows[1].Phone != "*********** 321" || rows[1].BirthYear != 1985 {
		t.Errorf("Unexpected masked row: %+v", rows[1])
	}
}

func TestImportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	content := "first_name,last_name,national_id,email,city,date_of_birth,extra\n" +
		"Jan,Kowalski,92071234567,jan.kowalski@example.com,Warsaw,1992-07-12,x\n" +
		"Anna,,85032198765,anna.nowak@example.com,Krakow,1985-03-21,y\n" +
		"Piotr,Zielinski,80010112345,piotr@example.com,Gdansk,01/01/1980,z\n"
	os.WriteFile(path, []byte(content), 0600)

	imported, result, err := NewImporter(zap.NewNop()).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.TotalRows != 3 || result.ValidRows != 1 || result.InvalidRows != 2 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if len(imported) != 1 || imported[0].LastName != "Kowalski" || imported[0].DateOfBirth.Year() != 1992 {
		t.Errorf("Unexpected records: %+v", imported)
	}
	for _, msg := range result.Errors {
		if strings.Contains(msg, "85032198765") || strings.Contains(msg, "Zielinski") {
			t.Errorf("Error message leaks row values: %s", msg)
		}
	}
}

func TestImportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	content := `{"first_name":"Jan","last_name":"Kowalski","national_id":"92071234567","email":"jan.kowalski@example.com"}` + "\n" +
		"\n" +
		`{"first_name": 42}` + "\n" +
		`not json` + "\n" +
		`{"id":"6f1c2a9e-4b7d-4e3a-8c5f-0d1e2f3a4b5c","first_name":"Anna","last_name":"Nowak","national_id":"85032198765","email":"anna.nowak@example.com"}` + "\n"
	os.WriteFile(path, []byte(content), 0600)

	imported, result, err := NewImporter(zap.NewNop()).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.TotalRows != 4 || result.ValidRows != 2 || result.InvalidRows != 2 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if len(imported) != 2 || imported[1].ID.String() != "6f1c2a9e-4b7d-4e3a-8c5f-0d1e2f3a4b5c" {
		t.Errorf("Unexpected records: %+v", imported)
	}
}

func TestImportParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.parquet")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	writer := parquet.NewGenericWriter[RecordRow](file)
	writer.Write([]RecordRow{
		{FirstName: "Jan", LastName: "Kowalski", NationalID: "92071234567", Email: "jan.kowalski@example.com", DateOfBirth: "1992-07-12"},
		{FirstName: "Anna", LastName: "Nowak", NationalID: "", Email: "anna.nowak@example.com"},
	})
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to write Parquet: %v", err)
	}
	file.Close()

	imported, result, err := NewImporter(zap.NewNop()).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.ValidRows != 1 || result.InvalidRows != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if len(imported) != 1 || imported[0].NationalID != "92071234567" {
		t.Errorf("Unexpected records: %+v", imported)
	}
}

func TestImportMissingFile(t *testing.T) {
	_, _, err := NewImporter(zap.NewNop()).Import(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}
