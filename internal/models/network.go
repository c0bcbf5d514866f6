package models

// CounterTupleLen is the number of values in an OS network counter tuple
const CounterTupleLen = 8

// NetworkCounterSample holds cumulative interface counters since boot.
// Successive samples are not independent; subtract them to get deltas.
type NetworkCounterSample struct {
	BytesOut   uint64 `json:"bytes_out"`
	BytesIn    uint64 `json:"bytes_in"`
	PacketsOut uint64 `json:"packets_out"`
	PacketsIn  uint64 `json:"packets_in"`
	ErrorsIn   uint64 `json:"errors_in"`
	ErrorsOut  uint64 `json:"errors_out"`
	DropsIn    uint64 `json:"drops_in"`
	DropsOut   uint64 `json:"drops_out"`
}
