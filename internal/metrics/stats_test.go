package metrics

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/loadster/internal/http"
)

func outcomesMs(success bool, ms ...int) []Outcome {
	out := make([]Outcome, len(ms))
	for i, v := range ms {
		out[i] = Outcome{Latency: time.Duration(v) * time.Millisecond, Success: success, StatusCode: 200}
	}
	return out
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func TestPercentile_NearestRank(t *testing.T) {
	toFloat := func(ms []int) []float64 {
		out := make([]float64, len(ms))
		for i, v := range ms {
			out[i] = float64(v)
		}
		return out
	}

	tests := []struct {
		name   string
		sample []float64
		p      float64
		want   float64
	}{
		{name: "empty", sample: nil, p: 50, want: 0},
		{name: "single p50", sample: []float64{7}, p: 50, want: 7},
		{name: "single p99", sample: []float64{7}, p: 99, want: 7},
		{name: "three p50", sample: []float64{10, 20, 30}, p: 50, want: 20},
		{name: "three p95", sample: []float64{10, 20, 30}, p: 95, want: 30},
		{name: "ten p50", sample: toFloat(seq(1, 10)), p: 50, want: 5},
		{name: "ten p95", sample: toFloat(seq(1, 10)), p: 95, want: 10},
		{name: "ten p99", sample: toFloat(seq(1, 10)), p: 99, want: 10},
		{name: "twenty p50", sample: toFloat(seq(1, 20)), p: 50, want: 10},
		{name: "twenty p95", sample: toFloat(seq(1, 20)), p: 95, want: 19},
		{name: "twenty p99", sample: toFloat(seq(1, 20)), p: 99, want: 20},
		{name: "hundred p50", sample: toFloat(seq(1, 100)), p: 50, want: 50},
		{name: "hundred p95", sample: toFloat(seq(1, 100)), p: 95, want: 95},
		{name: "hundred p99", sample: toFloat(seq(1, 100)), p: 99, want: 99},
		{name: "p0 clamps to min", sample: []float64{1, 2, 3}, p: 0, want: 1},
		{name: "p100 is max", sample: []float64{1, 2, 3}, p: 100, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentile(tt.sample, tt.p))
		})
	}
}

func TestCompute_FixedLatencyAllSuccess(t *testing.T) {
	ms := make([]int, 10)
	for i := range ms {
		ms[i] = 10
	}
	set := NewOutcomeSet(outcomesMs(true, ms...))

	s, err := Compute(set, 50*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 10, s.Successful)
	assert.Equal(t, 0, s.Failed)
	assert.Equal(t, 10.0, s.Latency.AvgMs)
	assert.Equal(t, 10.0, s.Latency.MinMs)
	assert.Equal(t, 10.0, s.Latency.MaxMs)
	assert.Equal(t, 10.0, s.Latency.P50Ms)
	assert.Equal(t, 10.0, s.Latency.P95Ms)
	assert.Equal(t, 10.0, s.Latency.P99Ms)
	assert.Equal(t, 50.0, s.TotalDurationMs)
	assert.InDelta(t, 200.0, s.RequestsPerSec, 1e-9)
	assert.Equal(t, map[int]int{200: 10}, s.StatusCodes)
	assert.Empty(t, s.Errors)
}

func TestCompute_AllFailures(t *testing.T) {
	outcomes := make([]Outcome, 20)
	for i := range outcomes {
		outcomes[i] = Outcome{Latency: time.Duration(i+1) * time.Millisecond, ErrorKind: http.ErrConnection}
	}

	s, err := Compute(NewOutcomeSet(outcomes), time.Second)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Successful)
	assert.Equal(t, 20, s.Failed)
	assert.Equal(t, 20, s.Errors[http.ErrConnection])
	assert.Empty(t, s.StatusCodes)
	// Failed attempts still contribute latency.
	assert.Equal(t, 1.0, s.Latency.MinMs)
	assert.Equal(t, 20.0, s.Latency.MaxMs)
	assert.Equal(t, 10.5, s.Latency.AvgMs)
}

func TestCompute_MixedOutcomes(t *testing.T) {
	outcomes := []Outcome{
		{Latency: 5 * time.Millisecond, Success: true, StatusCode: 200},
		{Latency: 15 * time.Millisecond, Success: false, StatusCode: 500},
		{Latency: 25 * time.Millisecond, Success: false, StatusCode: 404},
		{Latency: 35 * time.Millisecond, Success: false, ErrorKind: http.ErrTimeout},
	}

	s, err := Compute(NewOutcomeSet(outcomes), 100*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Successful)
	assert.Equal(t, 3, s.Failed)
	assert.Equal(t, s.Total, s.Successful+s.Failed)
	assert.Equal(t, map[int]int{200: 1, 500: 1, 404: 1}, s.StatusCodes)
	assert.Equal(t, 1, s.Errors[http.ErrTimeout])
	assert.Equal(t, 20.0, s.Latency.AvgMs)
	assert.Equal(t, 15.0, s.Latency.P50Ms)
	assert.Equal(t, 35.0, s.Latency.P95Ms)
}

func TestCompute_Empty(t *testing.T) {
	_, err := Compute(OutcomeSet{}, time.Second)
	assert.ErrorIs(t, err, ErrNoOutcomes)
}

func TestCompute_ZeroWallClock(t *testing.T) {
	s, err := Compute(NewOutcomeSet(outcomesMs(true, 1)), 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.RequestsPerSec)
}

func TestCompute_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(300) + 1
		outcomes := make([]Outcome, n)
		for i := range outcomes {
			outcomes[i] = Outcome{
				Latency: time.Duration(rng.Int63n(int64(2 * time.Second))),
				Success: rng.Intn(4) != 0,
			}
		}
		wall := time.Duration(rng.Int63n(int64(10*time.Second))) + time.Millisecond

		s, err := Compute(NewOutcomeSet(outcomes), wall)
		require.NoError(t, err)

		assert.Equal(t, n, s.Successful+s.Failed)
		assert.LessOrEqual(t, s.Latency.MinMs, s.Latency.P50Ms)
		assert.LessOrEqual(t, s.Latency.P50Ms, s.Latency.P95Ms)
		assert.LessOrEqual(t, s.Latency.P95Ms, s.Latency.P99Ms)
		assert.LessOrEqual(t, s.Latency.P99Ms, s.Latency.MaxMs)
		assert.Greater(t, s.RequestsPerSec, 0.0)

		// Arrival order must not matter.
		shuffled := append([]Outcome(nil), outcomes...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again, err := Compute(NewOutcomeSet(shuffled), wall)
		require.NoError(t, err)
		assert.Equal(t, s, again)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	c := NewCollector(50)
	for i := 0; i < 50; i++ {
		require.NoError(t, c.Record(Outcome{Latency: time.Duration(i*37%50+1) * time.Millisecond, Success: i%7 != 0}))
	}
	c.Freeze()
	set, err := c.Snapshot()
	require.NoError(t, err)

	first, err := Compute(set, 2*time.Second)
	require.NoError(t, err)
	second, err := Compute(set, 2*time.Second)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// The snapshot itself is left untouched by sorting.
	lat := set.LatenciesMs()
	assert.False(t, sort.Float64sAreSorted(lat), "snapshot keeps arrival order")
}
