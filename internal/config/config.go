package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Table  TableConfig  `toml:"table"`
	Sample SampleConfig `toml:"sample"`
	Plot   PlotConfig   `toml:"plot"`
	Serve  ServeConfig  `toml:"serve"`
}

type TableConfig struct {
	Backend string `toml:"backend"` // csv or sqlite
	Path    string `toml:"path"`
}

type SampleConfig struct {
	Speedtest      string   `toml:"speedtest"`
	Args           []string `toml:"args"`
	CommandTimeout string   `toml:"command_timeout"`
	CPUWindow      string   `toml:"cpu_window"`
	// ReportFile keeps the last raw speed-test output when set
	ReportFile string `toml:"report_file"`

	CommandTimeoutD time.Duration `toml:"-"`
	CPUWindowD      time.Duration `toml:"-"`
}

type PlotConfig struct {
	Output string `toml:"output"`
}

type ServeConfig struct {
	Listen     string   `toml:"listen"`
	RatePerSec float64  `toml:"rate_per_sec"`
	RateBurst  int      `toml:"rate_burst"`
	AllowedIPs []string `toml:"allowed_ips"`
	ChartTTL   string   `toml:"chart_ttl"`
	// StreamInterval is how often /rows/stream polls the table for new rows
	StreamInterval string `toml:"stream_interval"`
	// TokenSecret enables bearer-token auth when set (at least 32 bytes)
	TokenSecret string `toml:"token_secret"`
	TokenExpiry string `toml:"token_expiry"`

	ChartTTLD       time.Duration `toml:"-"`
	StreamIntervalD time.Duration `toml:"-"`
	TokenExpiryD    time.Duration `toml:"-"`
}

func Default() *Config {
	return &Config{
		Table: TableConfig{
			Backend: "csv",
			Path:    "metrics.csv",
		},
		Sample: SampleConfig{
			Speedtest:      "speedtest-cli",
			CommandTimeout: "0s",
			CPUWindow:      "1s",
		},
		Plot: PlotConfig{
			Output: "metrics.png",
		},
		Serve: ServeConfig{
			Listen:     "localhost:8080",
			RatePerSec: 10,
			RateBurst:  20,
			ChartTTL:   "30s",

			StreamInterval: "5s",
			TokenExpiry:    "720h",
		},
	}
}

func LoadFromFile(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expand path: %w", err)
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}

	return cfg, nil
}

func (c *Config) postProcess() error {
	var err error

	c.Table.Backend = strings.ToLower(strings.TrimSpace(c.Table.Backend))

	if c.Sample.CommandTimeoutD, err = time.ParseDuration(c.Sample.CommandTimeout); err != nil {
		return fmt.Errorf("parse sample.command_timeout: %w", err)
	}

	if c.Sample.CPUWindowD, err = time.ParseDuration(c.Sample.CPUWindow); err != nil {
		return fmt.Errorf("parse sample.cpu_window: %w", err)
	}

	if c.Serve.ChartTTLD, err = time.ParseDuration(c.Serve.ChartTTL); err != nil {
		return fmt.Errorf("parse serve.chart_ttl: %w", err)
	}

	if c.Serve.StreamIntervalD, err = time.ParseDuration(c.Serve.StreamInterval); err != nil {
		return fmt.Errorf("parse serve.stream_interval: %w", err)
	}

	if c.Serve.TokenExpiryD, err = time.ParseDuration(c.Serve.TokenExpiry); err != nil {
		return fmt.Errorf("parse serve.token_expiry: %w", err)
	}

	if c.Table.Path, err = expandPath(c.Table.Path); err != nil {
		return fmt.Errorf("expand table.path: %w", err)
	}

	if c.Plot.Output, err = expandPath(c.Plot.Output); err != nil {
		return fmt.Errorf("expand plot.output: %w", err)
	}

	if c.Sample.ReportFile, err = expandPath(c.Sample.ReportFile); err != nil {
		return fmt.Errorf("expand sample.report_file: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	validBackends := map[string]bool{"csv": true, "sqlite": true}
	if !validBackends[c.Table.Backend] {
		return fmt.Errorf("invalid table backend: %s (valid: csv, sqlite)", c.Table.Backend)
	}

	if c.Table.Path == "" {
		return fmt.Errorf("table path must not be empty")
	}

	if c.Sample.Speedtest == "" {
		return fmt.Errorf("sample.speedtest must not be empty")
	}

	if c.Sample.CommandTimeoutD < 0 {
		return fmt.Errorf("command_timeout cannot be negative, got %s", c.Sample.CommandTimeout)
	}

	if c.Sample.CPUWindowD <= 0 {
		return fmt.Errorf("cpu_window must be positive, got %s", c.Sample.CPUWindow)
	}

	if c.Serve.RatePerSec <= 0 {
		return fmt.Errorf("rate_per_sec must be positive, got %.2f", c.Serve.RatePerSec)
	}

	if c.Serve.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be at least 1, got %d", c.Serve.RateBurst)
	}

	if c.Serve.StreamIntervalD <= 0 {
		return fmt.Errorf("stream_interval must be positive, got %s", c.Serve.StreamInterval)
	}

	if c.Serve.TokenExpiryD <= 0 {
		return fmt.Errorf("token_expiry must be positive, got %s", c.Serve.TokenExpiry)
	}

	if c.Serve.TokenSecret != "" && len(c.Serve.TokenSecret) < 32 {
		return fmt.Errorf("token_secret must be at least 32 bytes, got %d", len(c.Serve.TokenSecret))
	}

	return nil
}

func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPEEDLOG_TABLE"); v != "" {
		cfg.Table.Path = v
	}
	if v := os.Getenv("SPEEDLOG_BACKEND"); v != "" {
		cfg.Table.Backend = v
	}
	if v := os.Getenv("SPEEDLOG_SPEEDTEST"); v != "" {
		cfg.Sample.Speedtest = v
	}
	if v := os.Getenv("SPEEDLOG_CPU_WINDOW"); v != "" {
		cfg.Sample.CPUWindow = v
	}
	if v := os.Getenv("SPEEDLOG_LISTEN"); v != "" {
		cfg.Serve.Listen = v
	}
	if v := os.Getenv("SPEEDLOG_TOKEN_SECRET"); v != "" {
		cfg.Serve.TokenSecret = v
	}
	if v := os.Getenv("SPEEDLOG_RATE_PER_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Serve.RatePerSec = f
		}
	}
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}

	return path, nil
}

// Load reads configPath (defaults when empty), applies env overrides including a
// local .env file, and validates
func Load(configPath string) (*Config, error) {
	var cfg *Config
	var err error

	if configPath != "" {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", configPath, err)
		}
	} else {
		cfg = Default()
	}

	// a .env file in the working directory fills variables not already set
	godotenv.Load()
	ApplyEnvOverrides(cfg)

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize parses derived fields and validates. Call it again after changing fields.
func (c *Config) Finalize() error {
	if err := c.postProcess(); err != nil {
		return fmt.Errorf("post process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
