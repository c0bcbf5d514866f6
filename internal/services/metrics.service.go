package services

import (
	"context"
	"fmt"
	"time"

	"speedlog/internal/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// HostCounters reads aggregate network counters from the OS
type HostCounters struct{}

// Counters returns the aggregate counters across all interfaces as an 8-tuple:
// bytes sent, bytes received, packets sent, packets received,
// errors in, errors out, drops in, drops out
func (HostCounters) Counters(ctx context.Context) ([]uint64, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(counters) == 0 {
		return nil, fmt.Errorf("%w: no aggregate network counters", models.ErrSchemaMismatch)
	}

	c := counters[0]
	return []uint64{
		c.BytesSent,
		c.BytesRecv,
		c.PacketsSent,
		c.PacketsRecv,
		c.Errin,
		c.Errout,
		c.Dropin,
		c.Dropout,
	}, nil
}

// HostResources reads CPU, load and memory statistics from the OS
type HostResources struct{}

// CPUPercent blocks for window and returns overall CPU utilization
func (HostResources) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	percentage, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return 0, err
	}
	if len(percentage) == 0 {
		return 0, fmt.Errorf("%w: no CPU utilization reported", models.ErrSchemaMismatch)
	}
	return percentage[0], nil
}

// LoadAverage1 returns the 1-minute load average
func (HostResources) LoadAverage1(ctx context.Context) (float64, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: load average: %v", models.ErrUnsupportedPlatform, err)
	}
	return avg.Load1, nil
}

// VirtualMemory returns available memory in bytes and the percent of memory in use
func (HostResources) VirtualMemory(ctx context.Context) (uint64, float64, error) {
	virtualMemory, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, err
	}
	return virtualMemory.Available, virtualMemory.UsedPercent, nil
}
