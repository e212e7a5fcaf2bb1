package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/wesleyorama2/loadster/internal/metrics"
)

// progressLineWidth is the number of marks printed before a count line.
const progressLineWidth = 50

// Progress prints one mark per completed request: "." for a success and "F"
// for a failure, with a running count after every progressLineWidth marks.
//
// Observe is safe to call from worker goroutines.
type Progress struct {
	w      io.Writer
	total  int
	colors *ColorScheme

	mu        sync.Mutex
	completed int
	live      func() metrics.LiveStats
}

// NewProgress creates a progress printer for a run of total requests.
func NewProgress(w io.Writer, total int, noColor bool) *Progress {
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &Progress{
		w:      w,
		total:  total,
		colors: colors,
	}
}

// SetLiveSource adds the live p95 to every count line.
func (p *Progress) SetLiveSource(fn func() metrics.LiveStats) {
	p.mu.Lock()
	p.live = fn
	p.mu.Unlock()
}

// Observe records one completed request.
func (p *Progress) Observe(o metrics.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if o.Success {
		fmt.Fprint(p.w, p.colors.Success.Sprint("."))
	} else {
		fmt.Fprint(p.w, p.colors.Failure.Sprint("F"))
	}
	p.completed++

	if p.completed%progressLineWidth == 0 {
		if p.live != nil {
			stats := p.live()
			fmt.Fprintf(p.w, " %d/%d (p95 %s, %d failed)\n", p.completed, p.total, formatDurationShort(stats.P95), stats.Failed)
		} else {
			fmt.Fprintf(p.w, " %d/%d\n", p.completed, p.total)
		}
	}
}

// Finish terminates a partially filled progress line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.completed%progressLineWidth != 0 {
		fmt.Fprintln(p.w)
	}
}

// Completed returns the number of observed requests.
func (p *Progress) Completed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed
}

// formatDurationShort formats a duration in a short format.
func formatDurationShort(d time.Duration) string {
	if d < time.Microsecond {
		return "0ms"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
