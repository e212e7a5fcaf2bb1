// Package metrics collects per-request outcomes and derives run statistics.
//
// # Collection
//
// A Collector accepts outcomes from many workers at once. Once the dispatcher
// has joined every worker the collector is frozen and its OutcomeSet becomes a
// read-only snapshot. While a run is in progress the collector also keeps an
// HDR histogram for approximate live percentiles shown in progress output.
//
// # Statistics
//
// Compute is a pure function over a frozen OutcomeSet. Percentiles use the
// nearest-rank method on the sorted latency sample:
//
//	idx = ceil(p/100 * count) - 1, clamped to [0, count-1]
//
// Nearest-rank always returns an observed latency and gives stable values on
// small samples, where interpolating methods disagree with each other.
package metrics
