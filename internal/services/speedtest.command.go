package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"
)

var execCommand = exec.CommandContext

// ReportSource yields the raw text of one speed-test run
type ReportSource interface {
	Report(ctx context.Context) (io.Reader, error)
}

// SpeedtestCommand runs an external speed-test utility and captures its output
type SpeedtestCommand struct {
	Path    string
	Args    []string
	Timeout time.Duration // zero waits for the command indefinitely

	// ReportFile keeps a copy of the last raw report when set
	ReportFile string
}

// NewSpeedtestCommand creates a command source for the given executable
func NewSpeedtestCommand(path string, args ...string) *SpeedtestCommand {
	if path == "" {
		path = "speedtest-cli"
	}
	return &SpeedtestCommand{Path: path, Args: args}
}

// Report runs the command to completion and returns its stdout
func (c *SpeedtestCommand) Report(ctx context.Context) (io.Reader, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := execCommand(ctx, c.Path, c.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("run %s: %w: %s", c.Path, err, msg)
		}
		return nil, fmt.Errorf("run %s: %w", c.Path, err)
	}
	log.Printf("[SPEEDTEST] %s finished in %v (%d bytes)", c.Path, time.Since(start).Round(time.Millisecond), stdout.Len())

	if c.ReportFile != "" {
		if err := os.WriteFile(c.ReportFile, stdout.Bytes(), 0644); err != nil {
			log.Printf("[SPEEDTEST] Warning: could not keep raw report in %s: %v", c.ReportFile, err)
		}
	}

	return bytes.NewReader(stdout.Bytes()), nil
}

// FileReport replays a previously captured speed-test report
type FileReport struct {
	Path string
}

// Report reads the whole report file
func (f FileReport) Report(ctx context.Context) (io.Reader, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", f.Path, err)
	}
	return bytes.NewReader(data), nil
}
