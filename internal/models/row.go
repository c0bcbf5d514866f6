package models

import "time"

// MetricRow is one persisted row of the metrics table
type MetricRow struct {
	DownloadMbps       float64   `json:"download_mbps"`
	UploadMbps         float64   `json:"upload_mbps"`
	PacketsOut         uint64    `json:"packets_out"`
	PacketsIn          uint64    `json:"packets_in"`
	ErrorsIn           uint64    `json:"errors_in"`
	ErrorsOut          uint64    `json:"errors_out"`
	DropsIn            uint64    `json:"drops_in"`
	DropsOut           uint64    `json:"drops_out"`
	CPUPercent         float64   `json:"cpu_percent"`
	LoadAvg1           float64   `json:"load_avg_1min"`
	FreeMemoryBytes    uint64    `json:"free_memory_bytes"`
	MemoryUsedFraction float64   `json:"memory_used_fraction"`
	Datetime           time.Time `json:"datetime"`
}

// NewMetricRow merges the three samples into one row stamped at now
func NewMetricRow(speed SpeedSample, net NetworkCounterSample, sys SystemSample, now time.Time) MetricRow {
	return MetricRow{
		DownloadMbps:       speed.DownloadMbps,
		UploadMbps:         speed.UploadMbps,
		PacketsOut:         net.PacketsOut,
		PacketsIn:          net.PacketsIn,
		ErrorsIn:           net.ErrorsIn,
		ErrorsOut:          net.ErrorsOut,
		DropsIn:            net.DropsIn,
		DropsOut:           net.DropsOut,
		CPUPercent:         sys.CPUPercent,
		LoadAvg1:           sys.LoadAvg1,
		FreeMemoryBytes:    sys.FreeMemoryBytes,
		MemoryUsedFraction: sys.MemoryUsedFraction,
		Datetime:           now,
	}
}

// RowWindow holds rows for the dashboard
type RowWindow struct {
	Duration string      `json:"duration"`
	Count    int         `json:"count"`
	Rows     []MetricRow `json:"rows"`
}
