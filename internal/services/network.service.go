package services

import (
	"context"
	"fmt"

	"speedlog/internal/models"
)

// CounterSource yields network counters in the fixed 8-tuple order
type CounterSource interface {
	Counters(ctx context.Context) ([]uint64, error)
}

// CountersFromTuple maps an ordered counter tuple to named fields.
// Values past the eighth are ignored.
func CountersFromTuple(values []uint64) (models.NetworkCounterSample, error) {
	if len(values) < models.CounterTupleLen {
		return models.NetworkCounterSample{}, fmt.Errorf("%w: got %d network counters, want %d",
			models.ErrSchemaMismatch, len(values), models.CounterTupleLen)
	}

	return models.NetworkCounterSample{
		BytesOut:   values[0],
		BytesIn:    values[1],
		PacketsOut: values[2],
		PacketsIn:  values[3],
		ErrorsIn:   values[4],
		ErrorsOut:  values[5],
		DropsIn:    values[6],
		DropsOut:   values[7],
	}, nil
}

// ReadNetworkCounters samples src once
func ReadNetworkCounters(ctx context.Context, src CounterSource) (models.NetworkCounterSample, error) {
	values, err := src.Counters(ctx)
	if err != nil {
		return models.NetworkCounterSample{}, fmt.Errorf("failed to get network counters: %w", err)
	}
	return CountersFromTuple(values)
}
