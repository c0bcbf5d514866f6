package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"speedlog/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps rows in a SQLite table named metrics
type SQLiteStore struct {
	db     *sql.DB
	schema Schema
}

// NewSQLiteStore opens or creates the database at dbPath
func NewSQLiteStore(dbPath string, schema Schema) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	s := &SQLiteStore{db: db, schema: schema}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

func sqlType(kind ColumnKind) string {
	switch kind {
	case KindFloat:
		return "REAL"
	case KindCount:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func (s *SQLiteStore) initSchema() error {
	defs := []string{"id INTEGER PRIMARY KEY AUTOINCREMENT"}
	for _, c := range s.schema.Columns() {
		defs = append(defs, fmt.Sprintf("%s %s NOT NULL", c.Key, sqlType(c.Kind)))
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS metrics (\n\t%s\n)", strings.Join(defs, ",\n\t"))
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStore) Schema() Schema { return s.schema }

// DB exposes the underlying database handle
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Append implements Store.Append
func (s *SQLiteStore) Append(ctx context.Context, row models.MetricRow) error {
	keys := s.schema.Keys()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")
	query := fmt.Sprintf("INSERT INTO metrics (%s) VALUES (%s)", strings.Join(keys, ", "), placeholders)

	record := s.schema.Record(row)
	args := make([]any, len(record))
	for i, v := range record {
		args[i] = v
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert metric row: %w", err)
	}
	return nil
}

// Load implements Store.Load
func (s *SQLiteStore) Load(ctx context.Context) ([]models.MetricRow, error) {
	keys := s.schema.Keys()
	query := fmt.Sprintf("SELECT %s FROM metrics ORDER BY id", strings.Join(keys, ", "))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query metric rows: %w", err)
	}
	defer rows.Close()

	index := s.schema.identity()
	result := []models.MetricRow{}
	for rows.Next() {
		record := make([]string, len(keys))
		dest := make([]any, len(keys))
		for i := range record {
			dest[i] = &record[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan metric row: %w", err)
		}

		row, err := s.schema.Decode(index, record)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
