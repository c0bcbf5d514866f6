package models

// SystemSample represents host resource utilization at sampling time
type SystemSample struct {
	CPUPercent         float64 `json:"cpu_percent"`
	LoadAvg1           float64 `json:"load_avg_1min"`
	FreeMemoryBytes    uint64  `json:"free_memory_bytes"`
	MemoryUsedFraction float64 `json:"memory_used_fraction"` // 0..1, 3 decimals
}
