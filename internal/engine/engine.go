// Package engine runs a complete load test: validation, dispatch, collection
// and aggregation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/wesleyorama2/loadster/internal/config"
	"github.com/wesleyorama2/loadster/internal/dispatch"
	"github.com/wesleyorama2/loadster/internal/http"
	"github.com/wesleyorama2/loadster/internal/logging"
	"github.com/wesleyorama2/loadster/internal/metrics"
	"github.com/wesleyorama2/loadster/internal/report"
)

// ErrAlreadyRunning is returned when Run is called on an engine that has
// already been started.
var ErrAlreadyRunning = errors.New("engine has already been started")

// Engine is the orchestrator for a single load test run.
//
// It coordinates:
//   - Configuration validation
//   - Request dispatch through a bounded worker pool
//   - Outcome collection
//   - Statistics and report assembly
//
// Example usage:
//
//	eng := NewEngine(cfg)
//	result, err := eng.Run(ctx)
//	fmt.Printf("p95: %.2fms\n", result.Report.Latency.P95Ms)
type Engine struct {
	config    config.RunConfig
	sender    http.Sender
	logger    log.Logger
	observers []dispatch.Observer
	runID     string
	userAgent string

	phase     atomic.Int32
	started   atomic.Bool
	mu        sync.RWMutex
	collector *metrics.Collector
}

// TestResult contains the complete results of a run.
type TestResult struct {
	RunID    string
	Report   *report.Report
	Summary  metrics.Summary
	Outcomes metrics.OutcomeSet
	Dispatch *dispatch.Result
}

// Option configures an Engine.
type Option func(*Engine)

// WithSender replaces the HTTP sender built from the configuration.
func WithSender(s http.Sender) Option {
	return func(e *Engine) {
		e.sender = s
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.OrNop(logger)
	}
}

// WithObserver registers an observer called after each recorded outcome.
func WithObserver(fn dispatch.Observer) Option {
	return func(e *Engine) {
		if fn != nil {
			e.observers = append(e.observers, fn)
		}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.runID = id
		}
	}
}

// WithUserAgent sets the User-Agent of the default sender.
func WithUserAgent(ua string) Option {
	return func(e *Engine) {
		e.userAgent = ua
	}
}

// NewEngine creates an engine for cfg. Validation happens in Run so that a
// rejected configuration is observable through Phase.
func NewEngine(cfg config.RunConfig, opts ...Option) *Engine {
	e := &Engine{
		config: cfg,
		logger: log.NewNopLogger(),
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSender builds the HTTP client used for a run.
func NewSender(cfg config.RunConfig, userAgent string) *http.Client {
	opts := []http.ClientOption{
		http.WithTimeout(cfg.RequestTimeout()),
		http.WithMethod(cfg.RequestMethod()),
		http.WithMaxConnsPerHost(cfg.EffectiveConcurrency()),
	}
	if userAgent != "" {
		opts = append(opts, http.WithUserAgent(userAgent))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, http.WithHeader(k, v))
	}
	if cfg.Insecure {
		opts = append(opts, http.WithInsecureSkipVerify())
	}
	return http.NewClient(opts...)
}

// Run executes the load test and returns the aggregated result.
//
// A configuration error moves the engine to ConfigRejected without any
// request being sent. Cancelling ctx stops new requests; the result then
// covers the requests that completed and its report is marked partial.
func (e *Engine) Run(ctx context.Context) (*TestResult, error) {
	if !e.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}

	if err := e.config.Validate(); err != nil {
		e.setPhase(PhaseConfigRejected)
		return nil, err
	}

	sender := e.sender
	if sender == nil {
		sender = NewSender(e.config, e.userAgent)
	}

	collector := metrics.NewCollector(e.config.TotalRequests)
	e.mu.Lock()
	e.collector = collector
	e.mu.Unlock()

	opts := []dispatch.Option{dispatch.WithLogger(e.logger)}
	for _, fn := range e.observers {
		opts = append(opts, dispatch.WithObserver(fn))
	}

	d, err := dispatch.New(e.config, sender, collector, opts...)
	if err != nil {
		e.setPhase(PhaseConfigRejected)
		return nil, err
	}

	e.setPhase(PhaseDispatching)
	dres, err := d.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("dispatch failed: %w", err)
	}

	e.setPhase(PhaseCollecting)
	collector.Freeze()
	set, err := collector.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot outcomes: %w", err)
	}

	e.setPhase(PhaseAggregating)
	summary, err := metrics.Compute(set, dres.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	rep := report.Build(report.Meta{
		URL:         e.config.URL,
		Concurrency: e.config.Concurrency,
		RunID:       e.runID,
		StartTime:   dres.StartTime,
		Partial:     dres.Partial,
	}, summary)

	e.setPhase(PhaseDone)

	return &TestResult{
		RunID:    e.runID,
		Report:   rep,
		Summary:  summary,
		Outcomes: set,
		Dispatch: dres,
	}, nil
}

// Live returns running counters for the current run. It is zero before
// dispatch begins.
func (e *Engine) Live() metrics.LiveStats {
	e.mu.RLock()
	c := e.collector
	e.mu.RUnlock()
	if c == nil {
		return metrics.LiveStats{}
	}
	return c.Live()
}

// RunID returns the identifier attached to logs and the report.
func (e *Engine) RunID() string {
	return e.runID
}

// Config returns the run configuration.
func (e *Engine) Config() config.RunConfig {
	return e.config
}

func (e *Engine) setPhase(p Phase) {
	prev := Phase(e.phase.Swap(int32(p)))
	level.Debug(e.logger).Log("msg", "phase changed", "from", prev, "to", p)
}
