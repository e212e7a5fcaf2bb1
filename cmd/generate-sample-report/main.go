package main

import (
	"fmt"
	"os"
	"time"

	"github.com/wesleyorama2/loadster/internal/http"
	"github.com/wesleyorama2/loadster/internal/metrics"
	"github.com/wesleyorama2/loadster/internal/report"
)

// Renders a report from synthetic outcomes so the JSON and HTML layouts can
// be inspected without running a load test.
func main() {
	outputPath := "sample-report.html"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	summary, err := metrics.Compute(sampleOutcomes(), 4200*time.Millisecond)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	r := report.Build(report.Meta{
		URL:         "https://api.example.com/health",
		Concurrency: 20,
		RunID:       "sample",
		StartTime:   time.Now(),
	}, summary)

	if err := report.WriteFile(outputPath, r); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sample report generated: %s\n", outputPath)
}

func sampleOutcomes() metrics.OutcomeSet {
	outcomes := make([]metrics.Outcome, 0, 500)
	for i := 0; i < 500; i++ {
		latency := time.Duration(20+(i*37)%180) * time.Millisecond

		var res http.Result
		var err error
		switch {
		case i%97 == 0:
			err = &http.RequestError{Kind: http.ErrTimeout, Err: fmt.Errorf("deadline exceeded")}
		case i%41 == 0:
			res = http.Result{Latency: latency, StatusCode: 503}
		default:
			res = http.Result{Latency: latency, StatusCode: 200}
		}
		if err != nil {
			res.Latency = 2 * time.Second
		}

		outcomes = append(outcomes, metrics.NewOutcome(res, err))
	}
	return metrics.NewOutcomeSet(outcomes)
}
