package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/loadster/internal/config"
	"github.com/wesleyorama2/loadster/internal/report"
)

var version = "1.0.0"

// RootCmd represents the loadster command
var RootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "loadster [URL]",
		Short:   "A lightweight HTTP load testing tool",
		Version: version,
		Long: `loadster - A lightweight HTTP load testing tool

Sends a fixed number of requests to a URL with bounded concurrency and
reports success counts, throughput and latency percentiles.

Examples:
  loadster https://example.com -n 200 -c 20
  loadster https://example.com -n 1000 -c 50 -o results.json
  loadster -f profile.yaml -n 500`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		RunE:          runLoadTest,
	}

	flags := cmd.Flags()
	flags.IntP("requests", "n", config.DefaultRequests, "Total number of requests to send")
	flags.IntP("concurrency", "c", config.DefaultConcurrency, "Maximum number of requests in flight")
	flags.StringP("output", "o", "", "Write the report to this file (.json, or .html for an HTML page)")
	flags.DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")
	flags.StringP("method", "X", config.DefaultMethod, "HTTP method")
	flags.StringArrayP("header", "H", nil, "Request header in 'Key: Value' form (repeatable)")
	flags.BoolP("insecure", "k", false, "Skip TLS certificate verification")
	flags.StringP("config", "f", "", "Load run settings from a YAML or JSON file")
	flags.BoolP("quiet", "q", false, "Do not print progress marks")
	flags.BoolP("verbose", "v", false, "Print debug diagnostics to stderr")
	flags.Bool("no-color", false, "Disable colored output")

	return cmd
}

// Execute runs the root command. Errors are printed to stderr except report
// write failures, which the console has already reported.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		var werr *report.WriteError
		if !errors.As(err, &werr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}
