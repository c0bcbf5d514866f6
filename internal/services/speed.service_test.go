package services

import (
	"errors"
	"strings"
	"testing"

	"speedlog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const speedtestOutput = `Retrieving speedtest.net configuration...
Testing from Example Cable (203.0.113.7)...
Retrieving speedtest.net server list...
Selecting best server based on ping...
Hosted by Example ISP (Springfield, IL) [3.14159 km]: 12.345 ms
Testing download speed................................................................................
Download: 123.45 Mbit/s
Testing upload speed......................................................................................................
Upload: 6.78 Mbit/s
`

func parse(t *testing.T, text string) models.SpeedReport {
	t.Helper()
	report, err := ParseSpeedReport(strings.NewReader(text))
	require.NoError(t, err)
	return report
}

func TestParseSpeedReport_FullOutput(t *testing.T) {
	report := parse(t, speedtestOutput)

	assert.Equal(t, models.SpeedSample{
		DistanceKm:   3.14159,
		LatencyMs:    12.345,
		DownloadMbps: 123.45,
		UploadMbps:   6.78,
	}, report.Sample)
	assert.Empty(t, report.Missing)
}

func TestParseSpeedReport_HostnameLine(t *testing.T) {
	report := parse(t, "Hostname: example  [3.14159 km]\nDownload: 123.45 Mbit/s\nUpload: 6.78 Mbit/s\n")

	assert.Equal(t, 3.14159, report.Sample.DistanceKm)
	assert.Equal(t, 123.45, report.Sample.DownloadMbps)
	assert.Equal(t, 6.78, report.Sample.UploadMbps)
	assert.Equal(t, []models.SpeedField{models.FieldLatency}, report.Missing)
}

func TestParseSpeedReport_UnitScale(t *testing.T) {
	tests := []struct {
		name     string
		download string
		want     float64
	}{
		{"megabit unchanged", "Download: 1.20 Mbit/s", 1.20},
		{"gigabit times 1000", "Download: 1.20 Gbit/s", 1200.0},
		{"whole gigabit", "Download: 2 Gbit/s", 2000.0},
		{"kilobit", "Download: 512 Kbit/s", 0.512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := parse(t, tt.download+"\nUpload: 1.00 Mbit/s\n")
			assert.InDelta(t, tt.want, report.Sample.DownloadMbps, 1e-9)
			assert.InDelta(t, 1.0, report.Sample.UploadMbps, 1e-9)
		})
	}
}

func TestParseSpeedReport_UploadGigabit(t *testing.T) {
	report := parse(t, "Download: 940.1 Mbit/s\nUpload: 0.85 Gbit/s\n")
	assert.InDelta(t, 940.1, report.Sample.DownloadMbps, 1e-9)
	assert.InDelta(t, 850.0, report.Sample.UploadMbps, 1e-9)
}

func TestParseSpeedReport_DistanceStripsOneArtifact(t *testing.T) {
	tests := []struct {
		line string
		want float64
	}{
		{"[3.14159 km]: 1 ms", 3.14159},
		{"(0.5 km)", 0.5},
		{"12.0 km", 12.0},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			report := parse(t, tt.line+"\nDownload: 1 Mbit/s\nUpload: 1 Mbit/s\n")
			assert.Equal(t, tt.want, report.Sample.DistanceKm)
		})
	}
}

func TestParseSpeedReport_SimpleOutput(t *testing.T) {
	// speedtest-cli --simple
	report := parse(t, "Ping: 18.2 ms\nDownload: 87.01 Mbit/s\nUpload: 11.9 Mbit/s\n")

	assert.Equal(t, 18.2, report.Sample.LatencyMs)
	assert.Equal(t, 87.01, report.Sample.DownloadMbps)
	assert.Equal(t, 11.9, report.Sample.UploadMbps)
	assert.Equal(t, []models.SpeedField{models.FieldDistance}, report.Missing)
}

func TestParseSpeedReport_UnlabeledRatesFillInOrder(t *testing.T) {
	report := parse(t, "down 50 Mbit/s\nup 5 Mbit/s\n")
	assert.Equal(t, 50.0, report.Sample.DownloadMbps)
	assert.Equal(t, 5.0, report.Sample.UploadMbps)
}

func TestParseSpeedReport_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"blank lines", "\n\n   \n"},
		{"no upload", "Download: 10 Mbit/s\n"},
		{"no download", "Upload: 10 Mbit/s\n"},
		{"unknown unit", "Download: 10 Tbit/s\nUpload: 10 Xbit/s\n"},
		{"negative download", "Download: -5 Mbit/s\nUpload: 1 Mbit/s\n"},
		{"distance and latency only", "Hosted by Example [3.1 km]: 12.3 ms\n"},
		{"error text", "Cannot retrieve speedtest configuration\nERROR: <urlopen error [Errno -3]>\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpeedReport(strings.NewReader(tt.text))
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrMalformedReport))
		})
	}
}

func TestParseSpeedReport_SkipsOddTokens(t *testing.T) {
	text := "Testing v2.1.3 build 7...\n" +
		"Download: 10 Mbit/s\n" +
		"- / Upload: 2 Mbit/s\n"
	report := parse(t, text)

	assert.Equal(t, 10.0, report.Sample.DownloadMbps)
	assert.Equal(t, 2.0, report.Sample.UploadMbps)
}

func TestClassifyToken(t *testing.T) {
	tests := []struct {
		word  string
		kind  tokenKind
		value float64
	}{
		{"", tokenSkip, 0},
		{"123.45", tokenNumber, 123.45},
		{"[3.14159", tokenNumber, 3.14159},
		{"Mbit/s", tokenRate, 1},
		{"Gbit/s", tokenRate, 1000},
		{"kbit/s", tokenRate, 0.001},
		{"Tbit/s", tokenWord, 0},
		{"/", tokenWord, 0},
		{"a/", tokenWord, 0},
		{"km]:", tokenWord, 0},
		{"1.2.3", tokenWord, 0},
		{"((7", tokenWord, 0},
		{"-5", tokenWord, 0},
		{"[-5", tokenWord, 0},
		{"v2", tokenWord, 0},
		{"Download:", tokenWord, 0},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			tok := classifyToken(tt.word)
			assert.Equal(t, tt.kind, tok.kind)
			assert.Equal(t, tt.value, tok.value)
		})
	}
}
