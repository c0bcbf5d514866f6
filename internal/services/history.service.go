package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"speedlog/internal/models"
	"speedlog/internal/store"
)

// HistoryService serves stored rows to the dashboard
type HistoryService struct {
	mu       sync.RWMutex
	store    store.Store
	renderer *ChartRenderer
}

var historyService *HistoryService

// InitHistoryService sets the store and renderer used by the dashboard
func InitHistoryService(st store.Store, renderer *ChartRenderer) *HistoryService {
	historyService = &HistoryService{
		store:    st,
		renderer: renderer,
	}
	log.Printf("History service started (schema: %d columns)", st.Schema().Len())
	return historyService
}

// GetHistoryService returns the initialized history service
func GetHistoryService() *HistoryService {
	return historyService
}

func (hs *HistoryService) load(ctx context.Context) ([]models.MetricRow, error) {
	if hs == nil {
		return nil, fmt.Errorf("history service not initialized")
	}
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	return hs.store.Load(ctx)
}

// FilterRows keeps the rows newer than now minus duration. A zero duration keeps all rows.
func FilterRows(rows []models.MetricRow, duration time.Duration, now time.Time) []models.MetricRow {
	if duration <= 0 {
		return rows
	}

	cutoffTime := now.Add(-duration)
	filtered := []models.MetricRow{}
	for _, row := range rows {
		if row.Datetime.After(cutoffTime) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// GetRowWindow returns the rows recorded within duration
func GetRowWindow(ctx context.Context, duration time.Duration) (models.RowWindow, error) {
	rows, err := historyService.load(ctx)
	if err != nil {
		return models.RowWindow{}, err
	}

	rows = FilterRows(rows, duration, time.Now())
	window := models.RowWindow{
		Count: len(rows),
		Rows:  rows,
	}
	if duration > 0 {
		window.Duration = duration.String()
	}
	return window, nil
}

// GetLatestRow returns the most recent row
func GetLatestRow(ctx context.Context) (*models.MetricRow, error) {
	rows, err := historyService.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.ErrNoRows
	}
	return &rows[len(rows)-1], nil
}

// GetChartPNG renders all rows, served from the chart cache when fresh
func GetChartPNG(ctx context.Context) ([]byte, error) {
	return GetCachedChart(func() ([]byte, error) {
		rows, err := historyService.load(ctx)
		if err != nil {
			return nil, err
		}
		return historyService.renderer.RenderBytes(rows)
	})
}
