package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"speedlog/internal/models"
	"speedlog/internal/store"
)

// RowAssembler samples every source once and appends the merged row to a store.
// It is the only writer of new rows.
type RowAssembler struct {
	Speed     ReportSource
	Counters  CounterSource
	Resources ResourceSource
	Schema    store.Schema
	Store     store.Store
	CPUWindow time.Duration
	Now       func() time.Time
}

// NewRowAssembler wires the host collaborators to st
func NewRowAssembler(speed ReportSource, schema store.Schema, st store.Store) *RowAssembler {
	return &RowAssembler{
		Speed:     speed,
		Counters:  HostCounters{},
		Resources: HostResources{},
		Schema:    schema,
		Store:     st,
		CPUWindow: DefaultCPUWindow,
		Now:       time.Now,
	}
}

// SampleRow reads all sources and returns the merged row without writing it
func (a *RowAssembler) SampleRow(ctx context.Context) (models.MetricRow, error) {
	raw, err := a.Speed.Report(ctx)
	if err != nil {
		return models.MetricRow{}, fmt.Errorf("failed to get speed-test report: %w", err)
	}
	report, err := ParseSpeedReport(raw)
	if err != nil {
		return models.MetricRow{}, err
	}
	if len(report.Missing) > 0 {
		log.Printf("[SAMPLE] Warning: speed-test report has no %v, recorded as 0", report.Missing)
	}

	counters, err := ReadNetworkCounters(ctx, a.Counters)
	if err != nil {
		return models.MetricRow{}, err
	}

	system, err := ReadSystemSample(ctx, a.Resources, a.CPUWindow)
	if err != nil {
		return models.MetricRow{}, err
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return models.NewMetricRow(report.Sample, counters, system, now()), nil
}

// AppendRow samples one row and appends it. Nothing is written when any source fails.
func (a *RowAssembler) AppendRow(ctx context.Context) (models.MetricRow, error) {
	if !a.Schema.Equal(a.Store.Schema()) {
		return models.MetricRow{}, fmt.Errorf("%w: store schema differs from row schema", models.ErrSchemaMismatch)
	}

	row, err := a.SampleRow(ctx)
	if err != nil {
		return models.MetricRow{}, err
	}

	if err := a.Store.Append(ctx, row); err != nil {
		return models.MetricRow{}, fmt.Errorf("failed to append row: %w", err)
	}

	log.Printf("[SAMPLE] Row appended: down=%.2f Mbit/s up=%.2f Mbit/s cpu=%.1f%% load=%.2f",
		row.DownloadMbps, row.UploadMbps, row.CPUPercent, row.LoadAvg1)
	return row, nil
}
