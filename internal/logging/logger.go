// Package logging builds the diagnostic logger used across loadster.
//
// User-facing output goes through the output package; this logger only
// carries diagnostics and is silent below warn unless verbose is set.
package logging

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Options configures New.
type Options struct {
	// Verbose enables debug messages.
	Verbose bool

	// JSON switches the encoding from logfmt to JSON.
	JSON bool

	// RunID is attached to every line when set.
	RunID string
}

// New creates a leveled logger writing to w.
func New(w io.Writer, opts Options) log.Logger {
	var logger log.Logger
	if opts.JSON {
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	} else {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	}

	allow := level.AllowWarn()
	if opts.Verbose {
		allow = level.AllowDebug()
	}
	logger = level.NewFilter(logger, allow)

	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	if opts.RunID != "" {
		logger = log.With(logger, "run_id", opts.RunID)
	}

	return logger
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger log.Logger) log.Logger {
	if logger == nil {
		return log.NewNopLogger()
	}
	return logger
}
