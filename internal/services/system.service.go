package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"speedlog/internal/models"
)

// DefaultCPUWindow is how long CPU utilization is observed
const DefaultCPUWindow = time.Second

// ResourceSource exposes host resource statistics
type ResourceSource interface {
	CPUPercent(ctx context.Context, window time.Duration) (float64, error)
	LoadAverage1(ctx context.Context) (float64, error)
	VirtualMemory(ctx context.Context) (free uint64, usedPercent float64, err error)
}

// MemoryFraction converts a percent-used value to a fraction rounded to 3 decimals
func MemoryFraction(percent float64) float64 {
	fraction := math.Round(percent/100*1000) / 1000
	return clamp(fraction, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ReadSystemSample samples src once. It blocks for the CPU window.
func ReadSystemSample(ctx context.Context, src ResourceSource, window time.Duration) (models.SystemSample, error) {
	if window <= 0 {
		window = DefaultCPUWindow
	}

	cpuPercent, err := src.CPUPercent(ctx, window)
	if err != nil {
		return models.SystemSample{}, fmt.Errorf("failed to get CPU usage: %w", err)
	}

	loadAvg, err := src.LoadAverage1(ctx)
	if err != nil {
		return models.SystemSample{}, fmt.Errorf("failed to get load average: %w", err)
	}

	free, usedPercent, err := src.VirtualMemory(ctx)
	if err != nil {
		return models.SystemSample{}, fmt.Errorf("failed to get memory usage: %w", err)
	}

	return models.SystemSample{
		CPUPercent:         clamp(cpuPercent, 0, 100),
		LoadAvg1:           math.Max(loadAvg, 0),
		FreeMemoryBytes:    free,
		MemoryUsedFraction: MemoryFraction(usedPercent),
	}, nil
}
