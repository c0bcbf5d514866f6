package models

// SpeedSample is one connection speed measurement, normalized to Mbit/s
type SpeedSample struct {
	DistanceKm   float64 `json:"distance_km"`
	LatencyMs    float64 `json:"latency_ms"`
	DownloadMbps float64 `json:"download_mbps"`
	UploadMbps   float64 `json:"upload_mbps"`
}

// SpeedField names one extractable field of a speed-test report
type SpeedField string

const (
	FieldDistance SpeedField = "distance"
	FieldLatency  SpeedField = "latency"
	FieldDownload SpeedField = "download"
	FieldUpload   SpeedField = "upload"
)

// SpeedReport is the parse result of a raw speed-test report.
// Missing lists the optional fields that were not found and were left at zero.
type SpeedReport struct {
	Sample  SpeedSample  `json:"sample"`
	Missing []SpeedField `json:"missing,omitempty"`
}
