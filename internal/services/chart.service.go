package services

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"speedlog/internal/models"
	"speedlog/internal/store"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ChartRenderer draws one line chart per metric column against time
type ChartRenderer struct {
	Schema     store.Schema
	Rows, Cols int
	Width      vg.Length
	Height     vg.Length
}

// NewChartRenderer returns a renderer with the 4x3 grid layout
func NewChartRenderer(schema store.Schema) *ChartRenderer {
	return &ChartRenderer{
		Schema: schema,
		Rows:   4,
		Cols:   3,
		Width:  36 * vg.Centimeter,
		Height: 32 * vg.Centimeter,
	}
}

// localTime turns plot X values (Unix seconds) back into local wall-clock times
func localTime(t float64) time.Time {
	return time.Unix(int64(t), 0)
}

func (r *ChartRenderer) metricPlot(column store.Column, rows []models.MetricRow) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = column.Name
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04", Time: localTime}

	points := make(plotter.XYs, len(rows))
	for i, row := range rows {
		points[i].X = float64(row.Datetime.Unix())
		points[i].Y = column.Value(row)
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("plot %q: %w", column.Name, err)
	}
	p.Add(plotter.NewGrid(), line)
	return p, nil
}

// Render writes the chart grid for rows as PNG to w.
// Charts fill the grid column by column.
func (r *ChartRenderer) Render(rows []models.MetricRow, w io.Writer) error {
	if len(rows) == 0 {
		return models.ErrNoRows
	}

	metrics := r.Schema.Metrics()
	if len(metrics) > r.Rows*r.Cols {
		return fmt.Errorf("%d metric columns do not fit a %dx%d grid", len(metrics), r.Rows, r.Cols)
	}

	plots := make([][]*plot.Plot, r.Rows)
	for j := range plots {
		plots[j] = make([]*plot.Plot, r.Cols)
	}
	for i, column := range metrics {
		p, err := r.metricPlot(column, rows)
		if err != nil {
			return err
		}
		plots[i%r.Rows][i/r.Rows] = p
	}

	img := vgimg.New(r.Width, r.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      r.Rows,
		Cols:      r.Cols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}

	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			if plots[j][i] != nil {
				plots[j][i].Draw(canvases[j][i])
			}
		}
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// RenderBytes renders rows into an in-memory PNG
func (r *ChartRenderer) RenderBytes(rows []models.MetricRow) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(rows, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderFile renders rows into the PNG file at path
func (r *ChartRenderer) RenderFile(rows []models.MetricRow, path string) error {
	data, err := r.RenderBytes(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	log.Printf("[PLOT] Rendered %d rows to %s", len(rows), path)
	return nil
}
