package models

import "errors"

var (
	// ErrMalformedReport means the speed-test text had no usable download/upload values
	ErrMalformedReport = errors.New("malformed speed-test report")
	// ErrSchemaMismatch means a collaborator or table returned fewer fields than expected
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrUnsupportedPlatform means the host does not expose a required statistic
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrNoRows means the metrics table holds no rows
	ErrNoRows = errors.New("no rows in metrics table")
)
