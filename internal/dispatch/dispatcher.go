// Package dispatch drives a fixed number of requests through a bounded pool
// of workers.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/wesleyorama2/loadster/internal/config"
	"github.com/wesleyorama2/loadster/internal/http"
	"github.com/wesleyorama2/loadster/internal/logging"
	"github.com/wesleyorama2/loadster/internal/metrics"
)

// ErrAlreadyRun is returned when Run is called a second time.
var ErrAlreadyRun = errors.New("dispatcher has already run")

// Recorder receives outcomes from workers. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(metrics.Outcome) error
}

// Observer is notified after each outcome is recorded. It is called from
// worker goroutines concurrently.
type Observer func(metrics.Outcome)

// Dispatcher issues exactly TotalRequests attempts with at most
// EffectiveConcurrency of them in flight.
//
// Workers pull from a shared remaining counter instead of a fixed batch, so
// fast workers naturally take more of the work. Each attempt consumes one unit
// whether it succeeds or not; nothing is retried.
type Dispatcher struct {
	url      string
	total    int64
	workers  int
	sender   http.Sender
	recorder Recorder

	logger    log.Logger
	observers []Observer

	// State
	remaining atomic.Int64
	issued    atomic.Int64
	completed atomic.Int64
	inFlight  atomic.Int64
	peak      atomic.Int64
	started   atomic.Bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the diagnostic logger.
func WithLogger(logger log.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logging.OrNop(logger)
	}
}

// WithObserver registers an observer for recorded outcomes.
func WithObserver(fn Observer) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.observers = append(d.observers, fn)
		}
	}
}

// Result describes a finished dispatch.
type Result struct {
	StartTime time.Time
	EndTime   time.Time

	// Duration spans from dispatch start to the last recorded completion.
	Duration time.Duration

	// Issued is the number of attempts actually made.
	Issued int

	// PeakInFlight is the highest number of simultaneous attempts observed.
	PeakInFlight int

	// Partial is true when the run was cancelled before every attempt was issued.
	Partial bool
}

// New creates a dispatcher. The configuration is validated here so that an
// invalid run never reaches the sender.
func New(cfg config.RunConfig, sender http.Sender, recorder Recorder, opts ...Option) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, fmt.Errorf("dispatcher requires a sender")
	}
	if recorder == nil {
		return nil, fmt.Errorf("dispatcher requires a recorder")
	}

	d := &Dispatcher{
		url:      cfg.URL,
		total:    int64(cfg.TotalRequests),
		workers:  cfg.EffectiveConcurrency(),
		sender:   sender,
		recorder: recorder,
		logger:   log.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Run starts the workers and blocks until every one of them has exited.
//
// When ctx is cancelled no new attempts are started. Attempts already in
// flight run to completion on a context detached from the cancellation and are
// still recorded; the result is then marked Partial.
func (d *Dispatcher) Run(ctx context.Context) (*Result, error) {
	if !d.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}

	d.remaining.Store(d.total)
	start := time.Now()

	level.Debug(d.logger).Log("msg", "dispatch started", "url", d.url, "requests", d.total, "workers", d.workers)

	var g errgroup.Group
	for i := 0; i < d.workers; i++ {
		i := i
		g.Go(func() error {
			return d.runWorker(ctx, i)
		})
	}
	err := g.Wait()

	end := time.Now()
	if last := d.lastCompletion(); !last.IsZero() && last.After(start) {
		end = last
	}

	result := &Result{
		StartTime:    start,
		EndTime:      end,
		Duration:     end.Sub(start),
		Issued:       int(d.issued.Load()),
		PeakInFlight: int(d.peak.Load()),
		Partial:      d.issued.Load() < d.total,
	}

	level.Debug(d.logger).Log(
		"msg", "dispatch finished",
		"issued", result.Issued,
		"duration", result.Duration,
		"peak_in_flight", result.PeakInFlight,
		"partial", result.Partial,
	)

	return result, err
}

// runWorker loops until the remaining counter is exhausted or ctx is done.
func (d *Dispatcher) runWorker(ctx context.Context, id int) error {
	level.Debug(d.logger).Log("msg", "worker started", "worker", id)
	defer level.Debug(d.logger).Log("msg", "worker exited", "worker", id)

	reqCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			d.remaining.Store(0)
			return nil
		default:
		}

		// The attempt is ours only if the counter was positive before the decrement.
		if d.remaining.Add(-1) < 0 {
			return nil
		}
		d.issued.Add(1)

		outcome := d.attempt(reqCtx)

		if err := d.recorder.Record(outcome); err != nil {
			return fmt.Errorf("worker %d: failed to record outcome: %w", id, err)
		}
		d.completed.Add(1)

		for _, fn := range d.observers {
			fn(outcome)
		}
	}
}

// attempt sends one request and converts the result into an outcome.
func (d *Dispatcher) attempt(ctx context.Context) metrics.Outcome {
	d.notePeak(d.inFlight.Add(1))
	res, err := d.sender.Send(ctx, d.url)
	d.inFlight.Add(-1)

	if err != nil {
		level.Debug(d.logger).Log("msg", "request failed", "kind", http.Classify(err), "latency", res.Latency, "err", err)
	}

	return metrics.NewOutcome(res, err)
}

func (d *Dispatcher) notePeak(n int64) {
	for {
		cur := d.peak.Load()
		if n <= cur || d.peak.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (d *Dispatcher) lastCompletion() time.Time {
	if lc, ok := d.recorder.(interface{ LastCompletion() time.Time }); ok {
		return lc.LastCompletion()
	}
	return time.Time{}
}

// GetProgress returns completed attempts as a fraction of the total (0.0 to 1.0).
func (d *Dispatcher) GetProgress() float64 {
	if d.total == 0 {
		return 0
	}
	return float64(d.completed.Load()) / float64(d.total)
}

// InFlight returns the number of attempts currently awaiting a response.
func (d *Dispatcher) InFlight() int {
	return int(d.inFlight.Load())
}

// Workers returns the number of workers Run starts.
func (d *Dispatcher) Workers() int {
	return d.workers
}
