package metrics

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

var (
	// ErrCollectorFrozen is returned by Record after Freeze.
	ErrCollectorFrozen = errors.New("collector is frozen")

	// ErrCollectorNotFrozen is returned by Snapshot before Freeze.
	ErrCollectorNotFrozen = errors.New("collector is still accepting outcomes")
)

const (
	// Live histogram range: 1 microsecond to 1 hour, 3 significant figures.
	histMin     = 1
	histMax     = 3600000000
	histSigFigs = 3
)

// Collector accumulates outcomes from concurrent workers.
//
// # Thread Safety
//
// Record may be called from any number of goroutines. Outcomes are appended
// under a mutex; counters use atomics so live reads never block writers for
// long. Snapshot is only valid after Freeze.
type Collector struct {
	mu       sync.Mutex
	outcomes []Outcome
	last     time.Time
	frozen   bool

	// Live view
	hist       *hdrhistogram.Histogram
	successful atomic.Int64
	failed     atomic.Int64
}

// LiveStats is a point-in-time view of a running collection.
type LiveStats struct {
	Completed  int64
	Successful int64
	Failed     int64
	P95        time.Duration
}

// NewCollector creates a collector sized for the expected number of outcomes.
func NewCollector(expected int) *Collector {
	if expected < 0 {
		expected = 0
	}
	return &Collector{
		outcomes: make([]Outcome, 0, expected),
		hist:     hdrhistogram.New(histMin, histMax, histSigFigs),
	}
}

// Record appends an outcome.
func (c *Collector) Record(o Outcome) error {
	micros := o.Latency.Microseconds()
	if micros < histMin {
		micros = histMin
	}
	if micros > histMax {
		micros = histMax
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrCollectorFrozen
	}

	c.outcomes = append(c.outcomes, o)
	if o.CompletedAt.After(c.last) {
		c.last = o.CompletedAt
	}
	// HDR histogram RecordValue is not thread-safe; it shares the append lock.
	_ = c.hist.RecordValue(micros)

	if o.Success {
		c.successful.Add(1)
	} else {
		c.failed.Add(1)
	}
	return nil
}

// Count returns the number of recorded outcomes.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outcomes)
}

// Live returns running counters and an approximate p95.
func (c *Collector) Live() LiveStats {
	c.mu.Lock()
	p95 := time.Duration(c.hist.ValueAtQuantile(95)) * time.Microsecond
	c.mu.Unlock()

	successful := c.successful.Load()
	failed := c.failed.Load()
	return LiveStats{
		Completed:  successful + failed,
		Successful: successful,
		Failed:     failed,
		P95:        p95,
	}
}

// LastCompletion returns the completion time of the latest outcome, or the
// zero time if nothing was recorded.
func (c *Collector) LastCompletion() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Freeze stops accepting outcomes. Calling it more than once is harmless.
func (c *Collector) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

// Snapshot returns the frozen outcome set.
func (c *Collector) Snapshot() (OutcomeSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.frozen {
		return OutcomeSet{}, ErrCollectorNotFrozen
	}
	// No further appends can happen, so the backing slice can be shared.
	return OutcomeSet{outcomes: c.outcomes}, nil
}
