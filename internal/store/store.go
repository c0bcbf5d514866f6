package store

import (
	"context"
	"fmt"

	"speedlog/internal/models"
)

// Store persists metric rows. Implementations assume a single writer.
type Store interface {
	Schema() Schema
	// Append adds one row. On error nothing is written.
	Append(ctx context.Context, row models.MetricRow) error
	// Load returns every row in insertion order
	Load(ctx context.Context) ([]models.MetricRow, error)
	Close() error
}

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend at path
func Open(backend, path string, schema Schema) (Store, error) {
	switch backend {
	case "", BackendCSV:
		return NewCSVStore(path, schema), nil
	case BackendSQLite:
		return NewSQLiteStore(path, schema)
	default:
		return nil, fmt.Errorf("unknown table backend %q", backend)
	}
}
