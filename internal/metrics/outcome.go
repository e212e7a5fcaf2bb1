package metrics

import (
	"time"

	"github.com/wesleyorama2/loadster/internal/http"
)

// Outcome is the recorded result of one dispatched request.
type Outcome struct {
	// Latency is the time spent on the attempt, successful or not.
	Latency time.Duration

	// Success is true for a 2xx/3xx response.
	Success bool

	// StatusCode is zero when no response was received.
	StatusCode int

	// ErrorKind is empty when a response was received.
	ErrorKind http.ErrorKind

	// CompletedAt is when the attempt finished.
	CompletedAt time.Time
}

// NewOutcome converts the result of a Send call into an Outcome.
func NewOutcome(res http.Result, err error) Outcome {
	o := Outcome{
		Latency:     res.Latency,
		StatusCode:  res.StatusCode,
		CompletedAt: time.Now(),
	}
	if o.Latency < 0 {
		o.Latency = 0
	}

	if err != nil {
		o.ErrorKind = http.Classify(err)
		return o
	}

	o.Success = http.IsSuccessStatus(res.StatusCode)
	return o
}

// LatencyMs returns the latency in fractional milliseconds.
func (o Outcome) LatencyMs() float64 {
	return float64(o.Latency) / float64(time.Millisecond)
}

// OutcomeSet is a read-only view over the outcomes of a run.
type OutcomeSet struct {
	outcomes []Outcome
}

// NewOutcomeSet copies outcomes into a new set.
func NewOutcomeSet(outcomes []Outcome) OutcomeSet {
	cp := make([]Outcome, len(outcomes))
	copy(cp, outcomes)
	return OutcomeSet{outcomes: cp}
}

// Len returns the number of outcomes.
func (s OutcomeSet) Len() int {
	return len(s.outcomes)
}

// Outcomes returns a copy of the outcomes in arrival order.
func (s OutcomeSet) Outcomes() []Outcome {
	cp := make([]Outcome, len(s.outcomes))
	copy(cp, s.outcomes)
	return cp
}

// LatenciesMs returns every latency in milliseconds, unsorted.
func (s OutcomeSet) LatenciesMs() []float64 {
	out := make([]float64, len(s.outcomes))
	for i, o := range s.outcomes {
		out[i] = o.LatencyMs()
	}
	return out
}
