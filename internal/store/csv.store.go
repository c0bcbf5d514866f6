package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"speedlog/internal/models"
)

// CSVStore keeps rows in a delimited text file with a header row.
// Every Append reads the whole file, adds the row and atomically replaces
// the file, so invocations must not overlap.
type CSVStore struct {
	path   string
	schema Schema
}

// NewCSVStore creates a store for the file at path. The file need not exist yet.
func NewCSVStore(path string, schema Schema) *CSVStore {
	return &CSVStore{path: path, schema: schema}
}

func (s *CSVStore) Schema() Schema { return s.schema }

// Path returns the table file location
func (s *CSVStore) Path() string { return s.path }

func (s *CSVStore) Close() error { return nil }

// readAll returns the header and records, or a nil header when the file does not exist
func (s *CSVStore) readAll() ([]string, [][]string, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read table %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

// Load returns every row in file order
func (s *CSVStore) Load(ctx context.Context) ([]models.MetricRow, error) {
	header, records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	if header == nil {
		return []models.MetricRow{}, nil
	}

	index, err := s.schema.Index(header)
	if err != nil {
		return nil, err
	}

	rows := make([]models.MetricRow, 0, len(records))
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := s.schema.Decode(index, record)
		if err != nil {
			return nil, fmt.Errorf("table %s line %d: %w", s.path, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Append adds row, keeping the existing header and column order of the file
func (s *CSVStore) Append(ctx context.Context, row models.MetricRow) error {
	header, records, err := s.readAll()
	if err != nil {
		return err
	}
	if header == nil {
		header = s.schema.Header()
	}

	index, err := s.schema.Index(header)
	if err != nil {
		return err
	}

	values := s.schema.Record(row)
	record := make([]string, len(header))
	for i, pos := range index {
		record[pos] = values[i]
	}
	records = append(records, record)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.replace(header, records); err != nil {
		return err
	}

	log.Printf("[STORE] Appended row at %s to %s (%d rows)", row.Datetime.Format(TimeLayout), s.path, len(records))
	return nil
}

// replace writes the table to a temporary file next to path and renames it over path
func (s *CSVStore) replace(header []string, records [][]string) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create table dir: %w", err)
	}

	mode := fs.FileMode(0644)
	if info, statErr := os.Stat(s.path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err = w.WriteAll(records); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("chmod temp table: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp table: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp table: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace table: %w", err)
	}
	return nil
}
