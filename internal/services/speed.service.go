package services

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"speedlog/internal/models"
)

type tokenKind int

const (
	tokenSkip   tokenKind = iota // empty or unclassifiable, ignored
	tokenWord                    // plain text
	tokenNumber                  // numeric value, leading artifact removed
	tokenRate                    // throughput unit, value holds the Mbit/s scale factor
)

type reportToken struct {
	kind  tokenKind
	text  string
	value float64
}

// fieldResult is the tagged outcome of extracting one report field
type fieldResult struct {
	value float64
	found bool
}

func (f *fieldResult) set(v float64) {
	if !f.found {
		f.value = v
		f.found = true
	}
}

// rateScale maps the prefix of a "<prefix>bit/s" unit to its Mbit/s multiplier
var rateScale = map[string]float64{
	"M": 1,
	"G": 1000,
	"k": 0.001,
	"K": 0.001,
}

// classifyToken decides what a single report word is.
// A number may carry one leading bracket, e.g. "[3.14159". Signed values are words.
func classifyToken(word string) reportToken {
	if word == "" {
		return reportToken{kind: tokenSkip}
	}

	last := word[len(word)-1]
	if last >= '0' && last <= '9' {
		return classifyNumber(word)
	}

	if len(word) >= 2 && word[len(word)-2] == '/' {
		if scale, ok := parseRateUnit(word); ok {
			return reportToken{kind: tokenRate, text: word, value: scale}
		}
	}

	return reportToken{kind: tokenWord, text: word}
}

func classifyNumber(word string) reportToken {
	candidate := word
	if word[0] == '[' || word[0] == '(' {
		candidate = word[1:]
	}

	v, err := strconv.ParseFloat(candidate, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return reportToken{kind: tokenWord, text: word}
	}
	return reportToken{kind: tokenNumber, text: word, value: v}
}

func parseRateUnit(word string) (float64, bool) {
	unit, ok := strings.CutSuffix(word, "bit/s")
	if !ok {
		return 0, false
	}
	scale, ok := rateScale[unit]
	return scale, ok
}

func tokenizeLine(line string) []reportToken {
	words := strings.Fields(line)
	tokens := make([]reportToken, 0, len(words))
	for _, w := range words {
		tok := classifyToken(w)
		if tok.kind == tokenSkip {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// lineLabel returns the lowercased leading label of a line, e.g. "download" for "Download: 1 Mbit/s"
func lineLabel(tokens []reportToken) string {
	if len(tokens) == 0 || tokens[0].kind != tokenWord {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(tokens[0].text, ":"))
}

// ParseSpeedReport extracts distance, latency, download and upload from the
// text output of a speed-test run. Throughput is normalized to Mbit/s.
// Download and upload are required: without both the report is
// ErrMalformedReport. Distance and latency are optional; when absent they are
// left at zero and listed in SpeedReport.Missing, which callers must check
// before trusting those two fields.
func ParseSpeedReport(r io.Reader) (models.SpeedReport, error) {
	var distance, latency, download, upload fieldResult

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		tokens := tokenizeLine(scanner.Text())
		label := lineLabel(tokens)

		for i, tok := range tokens {
			if tok.kind != tokenNumber {
				continue
			}
			next := reportToken{kind: tokenSkip}
			if i+1 < len(tokens) {
				next = tokens[i+1]
			}

			switch {
			case next.kind == tokenRate:
				mbps := tok.value * next.value
				switch {
				case label == "download":
					download.set(mbps)
				case label == "upload":
					upload.set(mbps)
				case !download.found:
					download.set(mbps)
				default:
					upload.set(mbps)
				}
			case next.kind == tokenWord && strings.HasPrefix(next.text, "km"):
				distance.set(tok.value)
			case next.kind == tokenWord && strings.HasPrefix(next.text, "ms"):
				latency.set(tok.value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return models.SpeedReport{}, fmt.Errorf("read speed-test report: %w", err)
	}

	var required []string
	if !download.found {
		required = append(required, string(models.FieldDownload))
	}
	if !upload.found {
		required = append(required, string(models.FieldUpload))
	}
	if len(required) > 0 {
		return models.SpeedReport{}, fmt.Errorf("%w: missing %s", models.ErrMalformedReport, strings.Join(required, ", "))
	}

	report := models.SpeedReport{
		Sample: models.SpeedSample{
			DistanceKm:   distance.value,
			LatencyMs:    latency.value,
			DownloadMbps: download.value,
			UploadMbps:   upload.value,
		},
	}
	if !distance.found {
		report.Missing = append(report.Missing, models.FieldDistance)
	}
	if !latency.found {
		report.Missing = append(report.Missing, models.FieldLatency)
	}
	return report, nil
}
