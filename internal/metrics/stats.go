package metrics

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/wesleyorama2/loadster/internal/http"
)

// ErrNoOutcomes is returned by Compute for an empty outcome set.
var ErrNoOutcomes = errors.New("no outcomes to aggregate")

// LatencySummary holds latency statistics in milliseconds.
type LatencySummary struct {
	AvgMs float64
	MinMs float64
	MaxMs float64
	P50Ms float64
	P95Ms float64
	P99Ms float64
}

// Summary holds the aggregate statistics of a run.
type Summary struct {
	Total      int
	Successful int
	Failed     int

	Latency LatencySummary

	RequestsPerSec  float64
	TotalDurationMs float64

	// StatusCodes counts responses by status code. Failed attempts with no
	// response are not included.
	StatusCodes map[int]int

	// Errors counts transport failures by kind.
	Errors map[http.ErrorKind]int
}

// Compute derives aggregate statistics from a frozen outcome set.
//
// wallClock is the span from dispatch start to the last completion, not the
// sum of latencies. Failed attempts contribute their latency like any other.
// The result depends only on the multiset of outcomes, never on their order.
func Compute(set OutcomeSet, wallClock time.Duration) (Summary, error) {
	count := set.Len()
	if count == 0 {
		return Summary{}, ErrNoOutcomes
	}

	summary := Summary{
		Total:       count,
		StatusCodes: make(map[int]int),
		Errors:      make(map[http.ErrorKind]int),
	}

	for _, o := range set.outcomes {
		if o.Success {
			summary.Successful++
		}
		if o.StatusCode != 0 {
			summary.StatusCodes[o.StatusCode]++
		}
		if o.ErrorKind != "" {
			summary.Errors[o.ErrorKind]++
		}
	}
	summary.Failed = count - summary.Successful

	sorted := set.LatenciesMs()
	sort.Float64s(sorted)

	// Summing in sorted order keeps the mean independent of arrival order.
	var sum float64
	for _, v := range sorted {
		sum += v
	}

	summary.Latency = LatencySummary{
		AvgMs: sum / float64(count),
		MinMs: sorted[0],
		MaxMs: sorted[count-1],
		P50Ms: Percentile(sorted, 50),
		P95Ms: Percentile(sorted, 95),
		P99Ms: Percentile(sorted, 99),
	}

	summary.TotalDurationMs = float64(wallClock) / float64(time.Millisecond)
	summary.RequestsPerSec = Throughput(count, wallClock)

	return summary, nil
}

// Percentile returns the p-th percentile of an ascending sample using the
// nearest-rank method. It returns 0 for an empty sample.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	// Multiply before dividing so integral ranks stay exact.
	idx := int(math.Ceil(p*float64(n)/100)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

// Throughput returns requests per second over the wall clock, or 0 when the
// wall clock is not positive.
func Throughput(requests int, wallClock time.Duration) float64 {
	if wallClock <= 0 {
		return 0
	}
	return float64(requests) / wallClock.Seconds()
}
