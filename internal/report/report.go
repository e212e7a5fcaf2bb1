// Package report assembles the final run report and persists it.
package report

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/wesleyorama2/loadster/internal/metrics"
)

// Report is the aggregate result of a run as written to disk.
//
// Fields are derived once from a metrics.Summary and never mutated.
type Report struct {
	URL           string `json:"url"`
	RunID         string `json:"run_id,omitempty"`
	Date          string `json:"date,omitempty"`
	TotalRequests int    `json:"total_requests"`
	Concurrency   int    `json:"concurrency"`
	Successful    int    `json:"successful"`
	Failed        int    `json:"failed"`

	Latency Latency `json:"latency"`

	RequestsPerSec  float64 `json:"requests_per_sec"`
	TotalDurationMs float64 `json:"total_duration_ms"`

	// Partial is set when the run was interrupted before every request was issued.
	Partial bool `json:"partial,omitempty"`

	StatusCodes map[string]int `json:"status_codes,omitempty"`
	Errors      map[string]int `json:"errors,omitempty"`
}

// Latency holds latency statistics in milliseconds.
type Latency struct {
	AvgMs float64 `json:"avg_ms"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Meta carries the run facts that do not come from the outcome set.
type Meta struct {
	URL         string
	Concurrency int
	RunID       string
	StartTime   time.Time
	Partial     bool
}

// Build assembles a report. It has no side effects.
func Build(meta Meta, s metrics.Summary) *Report {
	r := &Report{
		URL:           meta.URL,
		RunID:         meta.RunID,
		TotalRequests: s.Total,
		Concurrency:   meta.Concurrency,
		Successful:    s.Successful,
		Failed:        s.Failed,
		Latency: Latency{
			AvgMs: s.Latency.AvgMs,
			MinMs: s.Latency.MinMs,
			MaxMs: s.Latency.MaxMs,
			P50Ms: s.Latency.P50Ms,
			P95Ms: s.Latency.P95Ms,
			P99Ms: s.Latency.P99Ms,
		},
		RequestsPerSec:  s.RequestsPerSec,
		TotalDurationMs: s.TotalDurationMs,
		Partial:         meta.Partial,
	}

	if !meta.StartTime.IsZero() {
		r.Date = meta.StartTime.UTC().Format(time.RFC3339)
	}

	if len(s.StatusCodes) > 0 {
		r.StatusCodes = make(map[string]int, len(s.StatusCodes))
		for code, n := range s.StatusCodes {
			r.StatusCodes[strconv.Itoa(code)] = n
		}
	}

	if len(s.Errors) > 0 {
		r.Errors = make(map[string]int, len(s.Errors))
		for kind, n := range s.Errors {
			r.Errors[string(kind)] = n
		}
	}

	return r
}

// Marshal returns the report as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// SortedStatusCodes returns the status code keys in ascending order.
func (r *Report) SortedStatusCodes() []string {
	return sortedKeys(r.StatusCodes)
}

// SortedErrors returns the error kind keys in ascending order.
func (r *Report) SortedErrors() []string {
	return sortedKeys(r.Errors)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
