// Package output renders run progress and results for the terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/wesleyorama2/loadster/internal/config"
	"github.com/wesleyorama2/loadster/internal/report"
)

// Console writes the user-facing run header, summary and report status.
type Console struct {
	out     io.Writer
	errOut  io.Writer
	colors  *ColorScheme
	noColor bool

	mu sync.Mutex
}

// NewConsole creates a console writing results to out and failures to errOut.
// Colors are used only when out is a terminal and noColor is false.
func NewConsole(out, errOut io.Writer, noColor bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	useColor := ColorEnabled(out, noColor)
	colors := NoColorScheme()
	if useColor {
		colors = ForcedColorScheme()
	}

	return &Console{
		out:     out,
		errOut:  errOut,
		colors:  colors,
		noColor: !useColor,
	}
}

// NoColor reports whether colors are disabled.
func (c *Console) NoColor() bool {
	return c.noColor
}

// PrintHeader prints the target and run parameters before dispatch.
func (c *Console) PrintHeader(cfg config.RunConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "Load testing: %s\n", c.colors.URL.Sprint(cfg.URL))
	fmt.Fprintf(c.out, "Total requests: %d\n", cfg.TotalRequests)
	fmt.Fprintf(c.out, "Concurrency: %d\n\n", cfg.Concurrency)
}

// PrintSummary prints the results block and latency distribution.
func (c *Console) PrintSummary(r *report.Report) {
	if r == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out, "\n\n"+c.colors.Heading.Sprint("Results:"))
	fmt.Fprintln(c.out, "========")
	if r.Partial {
		fmt.Fprintf(c.out, "%s Interrupted: %d requests completed\n", WarningIcon(c.noColor), r.TotalRequests)
	}
	fmt.Fprintf(c.out, "Total time: %.2fs\n", r.TotalDurationMs/1000)
	fmt.Fprintf(c.out, "Successful: %s\n", c.colors.Success.Sprint(r.Successful))

	failed := fmt.Sprint(r.Failed)
	if r.Failed > 0 {
		failed = c.colors.Failure.Sprint(r.Failed)
	}
	fmt.Fprintf(c.out, "Failed: %s\n", failed)
	fmt.Fprintf(c.out, "Requests/sec: %s\n", c.colors.Highlight.Sprintf("%.2f", r.RequestsPerSec))

	fmt.Fprintln(c.out, "\n"+c.colors.Heading.Sprint("Latency:"))
	fmt.Fprintf(c.out, "  Min: %.2fms\n", r.Latency.MinMs)
	fmt.Fprintf(c.out, "  Avg: %.2fms\n", r.Latency.AvgMs)
	fmt.Fprintf(c.out, "  p50: %.2fms\n", r.Latency.P50Ms)
	fmt.Fprintf(c.out, "  p95: %.2fms\n", r.Latency.P95Ms)
	fmt.Fprintf(c.out, "  p99: %.2fms\n", r.Latency.P99Ms)
	fmt.Fprintf(c.out, "  Max: %.2fms\n", r.Latency.MaxMs)

	if len(r.StatusCodes) > 0 {
		fmt.Fprintln(c.out, "\n"+c.colors.Heading.Sprint("Status codes:"))
		for _, code := range r.SortedStatusCodes() {
			fmt.Fprintf(c.out, "  %s: %d\n", code, r.StatusCodes[code])
		}
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(c.out, "\n"+c.colors.Heading.Sprint("Errors:"))
		for _, kind := range r.SortedErrors() {
			fmt.Fprintf(c.out, "  %s: %d\n", c.colors.Failure.Sprint(kind), r.Errors[kind])
		}
	}
}

// PrintReportSaved confirms the report location.
func (c *Console) PrintReportSaved(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "\n%s Report saved to: %s\n", SuccessIcon(c.noColor), path)
}

// PrintReportFailed reports a failed report write on the error stream.
func (c *Console) PrintReportFailed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.errOut, "\n%s Failed to save report: %v\n", ErrorIcon(c.noColor), err)
}
