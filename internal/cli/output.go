package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"speedlog/internal/models"
	"speedlog/internal/store"

	"gopkg.in/yaml.v3"
)

type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
)

// PrintRows writes rows to w in the requested format
func PrintRows(w io.Writer, schema store.Schema, rows []models.MetricRow, format OutputFormat) error {
	switch format {
	case OutputJSON:
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case OutputYAML:
		b, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		_, err = w.Write(b)
		return err
	case OutputTable, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(schema.Header(), "\t"))
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(schema.Record(row), "\t"))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q (valid: table, json, yaml)", format)
	}
}
