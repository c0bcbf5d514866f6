package store

import (
	"fmt"
	"strconv"
	"time"

	"speedlog/internal/models"
)

// TimeLayout is how Datetime values are written
const TimeLayout = "2006-01-02 15:04:05.000000"

var readLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
}

// ColumnKind is the value type stored in a column
type ColumnKind int

const (
	KindFloat ColumnKind = iota
	KindCount
	KindTime
)

// Column describes one column of the metrics table
type Column struct {
	Name string // header text
	Key  string // identifier for SQL backends
	Kind ColumnKind

	format func(models.MetricRow) string
	parse  func(*models.MetricRow, string) error
	value  func(models.MetricRow) float64
}

// Format renders the column's value of row
func (c Column) Format(row models.MetricRow) string {
	return c.format(row)
}

// Value returns the column's value of row as a float, zero for the time column
func (c Column) Value(row models.MetricRow) float64 {
	if c.value == nil {
		return 0
	}
	return c.value(row)
}

func floatColumn(name, key string, field func(*models.MetricRow) *float64) Column {
	return Column{
		Name: name,
		Key:  key,
		Kind: KindFloat,
		format: func(row models.MetricRow) string {
			return strconv.FormatFloat(*field(&row), 'f', -1, 64)
		},
		parse: func(row *models.MetricRow, s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return err
			}
			*field(row) = v
			return nil
		},
		value: func(row models.MetricRow) float64 {
			return *field(&row)
		},
	}
}

func countColumn(name, key string, field func(*models.MetricRow) *uint64) Column {
	return Column{
		Name: name,
		Key:  key,
		Kind: KindCount,
		format: func(row models.MetricRow) string {
			return strconv.FormatUint(*field(&row), 10)
		},
		parse: func(row *models.MetricRow, s string) error {
			n, err := parseCount(s)
			if err != nil {
				return err
			}
			*field(row) = n
			return nil
		},
		value: func(row models.MetricRow) float64 {
			return float64(*field(&row))
		},
	}
}

// parseCount accepts plain integers and float renderings such as "12.0" or "1.2e+06"
func parseCount(s string) (uint64, error) {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative count %q", s)
	}
	return uint64(v), nil
}

func timeColumn(name, key string) Column {
	return Column{
		Name: name,
		Key:  key,
		Kind: KindTime,
		format: func(row models.MetricRow) string {
			return row.Datetime.Format(TimeLayout)
		},
		parse: func(row *models.MetricRow, s string) error {
			t, err := ParseTime(s)
			if err != nil {
				return err
			}
			row.Datetime = t
			return nil
		},
	}
}

// ParseTime parses a Datetime cell in any layout this package has written
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

// Schema is an immutable ordered list of columns
type Schema struct {
	columns []Column
}

// DefaultSchema returns the column layout of the metrics table
func DefaultSchema() Schema {
	return Schema{columns: []Column{
		floatColumn("Download speed", "download_speed", func(r *models.MetricRow) *float64 { return &r.DownloadMbps }),
		floatColumn("Upload speed", "upload_speed", func(r *models.MetricRow) *float64 { return &r.UploadMbps }),
		countColumn("Packages out", "packages_out", func(r *models.MetricRow) *uint64 { return &r.PacketsOut }),
		countColumn("Packages in", "packages_in", func(r *models.MetricRow) *uint64 { return &r.PacketsIn }),
		countColumn("Errors in", "errors_in", func(r *models.MetricRow) *uint64 { return &r.ErrorsIn }),
		countColumn("Errors out", "errors_out", func(r *models.MetricRow) *uint64 { return &r.ErrorsOut }),
		countColumn("Drop in", "drop_in", func(r *models.MetricRow) *uint64 { return &r.DropsIn }),
		countColumn("Drop out", "drop_out", func(r *models.MetricRow) *uint64 { return &r.DropsOut }),
		floatColumn("CPU perc use", "cpu_perc_use", func(r *models.MetricRow) *float64 { return &r.CPUPercent }),
		floatColumn("Average load", "average_load", func(r *models.MetricRow) *float64 { return &r.LoadAvg1 }),
		countColumn("Free memory (bytes)", "free_memory_bytes", func(r *models.MetricRow) *uint64 { return &r.FreeMemoryBytes }),
		// the stored value is the used fraction; the header text is kept for existing files
		floatColumn("Percent free memory", "percent_free_memory", func(r *models.MetricRow) *float64 { return &r.MemoryUsedFraction }),
		timeColumn("Datetime", "datetime"),
	}}
}

// Columns returns a copy of the column list
func (s Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// Metrics returns every column except Datetime, in order
func (s Schema) Metrics() []Column {
	var metrics []Column
	for _, c := range s.columns {
		if c.Kind != KindTime {
			metrics = append(metrics, c)
		}
	}
	return metrics
}

// Len returns the number of columns
func (s Schema) Len() int {
	return len(s.columns)
}

// Header returns the column names in order
func (s Schema) Header() []string {
	header := make([]string, len(s.columns))
	for i, c := range s.columns {
		header[i] = c.Name
	}
	return header
}

// Keys returns the SQL identifiers in order
func (s Schema) Keys() []string {
	keys := make([]string, len(s.columns))
	for i, c := range s.columns {
		keys[i] = c.Key
	}
	return keys
}

// Equal reports whether both schemas have the same columns in the same order
func (s Schema) Equal(other Schema) bool {
	if len(s.columns) != len(other.columns) {
		return false
	}
	for i := range s.columns {
		if s.columns[i].Name != other.columns[i].Name || s.columns[i].Kind != other.columns[i].Kind {
			return false
		}
	}
	return true
}

// Record renders row in column order
func (s Schema) Record(row models.MetricRow) []string {
	record := make([]string, len(s.columns))
	for i, c := range s.columns {
		record[i] = c.Format(row)
	}
	return record
}

// Index locates every schema column in header. The result holds, per schema
// column, its position in header.
func (s Schema) Index(header []string) ([]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[name] = i
	}

	index := make([]int, len(s.columns))
	for i, c := range s.columns {
		pos, ok := positions[c.Name]
		if !ok {
			return nil, fmt.Errorf("%w: column %q missing from header", models.ErrSchemaMismatch, c.Name)
		}
		index[i] = pos
	}
	return index, nil
}

// Decode builds a row from record using an index produced by Index
func (s Schema) Decode(index []int, record []string) (models.MetricRow, error) {
	var row models.MetricRow
	if len(index) != len(s.columns) {
		return row, fmt.Errorf("%w: index has %d columns, want %d", models.ErrSchemaMismatch, len(index), len(s.columns))
	}
	for i, c := range s.columns {
		pos := index[i]
		if pos >= len(record) {
			return row, fmt.Errorf("%w: record has %d fields, column %q at %d", models.ErrSchemaMismatch, len(record), c.Name, pos)
		}
		if err := c.parse(&row, record[pos]); err != nil {
			return row, fmt.Errorf("column %q: %w", c.Name, err)
		}
	}
	return row, nil
}

// identity returns the index for records already in schema order
func (s Schema) identity() []int {
	index := make([]int, len(s.columns))
	for i := range index {
		index[i] = i
	}
	return index
}
