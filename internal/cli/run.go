package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wesleyorama2/loadster/internal/config"
	"github.com/wesleyorama2/loadster/internal/engine"
	"github.com/wesleyorama2/loadster/internal/logging"
	"github.com/wesleyorama2/loadster/internal/metrics"
	"github.com/wesleyorama2/loadster/internal/output"
	"github.com/wesleyorama2/loadster/internal/report"
)

// runLoadTest resolves the run configuration, executes the load test and
// prints the results
func runLoadTest(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd.Flags(), args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// From here on failures are not usage problems.
	cmd.SilenceUsage = true

	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	runID := uuid.NewString()
	logger := logging.New(errOut, logging.Options{Verbose: verbose, RunID: runID})

	console := output.NewConsole(out, errOut, noColor)
	console.PrintHeader(cfg)

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithRunID(runID),
		engine.WithUserAgent("loadster/" + version),
	}

	var progress *output.Progress
	if !quiet {
		progress = output.NewProgress(out, cfg.TotalRequests, console.NoColor())
		opts = append(opts, engine.WithObserver(progress.Observe))
	}

	eng := engine.NewEngine(cfg, opts...)
	if progress != nil && verbose {
		progress.SetLiveSource(eng.Live)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := eng.Run(ctx)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		if errors.Is(err, metrics.ErrNoOutcomes) {
			return fmt.Errorf("run interrupted before any request completed")
		}
		return err
	}

	if result.Report.Partial {
		level.Warn(logger).Log(
			"msg", "run interrupted",
			"completed", result.Report.TotalRequests,
			"requested", cfg.TotalRequests,
		)
	}

	console.PrintSummary(result.Report)

	if cfg.OutputPath == "" {
		return nil
	}

	if err := report.WriteFile(cfg.OutputPath, result.Report); err != nil {
		console.PrintReportFailed(err)
		return err
	}
	console.PrintReportSaved(cfg.OutputPath)

	return nil
}

// resolveConfig builds the run configuration from an optional profile file,
// explicitly set flags and the positional URL, in increasing precedence.
func resolveConfig(flags *pflag.FlagSet, args []string) (config.RunConfig, error) {
	cfg := config.Default()

	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	if flags.Changed("requests") {
		cfg.TotalRequests, _ = flags.GetInt("requests")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("output") {
		cfg.OutputPath, _ = flags.GetString("output")
	}
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		cfg.Timeout = config.Duration(timeout)
	}
	if flags.Changed("method") {
		cfg.Method, _ = flags.GetString("method")
	}
	if flags.Changed("insecure") {
		cfg.Insecure, _ = flags.GetBool("insecure")
	}

	headers, _ := flags.GetStringArray("header")
	for _, raw := range headers {
		key, value, err := config.ParseHeader(raw)
		if err != nil {
			return cfg, err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[key] = value
	}

	if len(args) == 1 {
		cfg.URL = args[0]
	}

	return cfg, nil
}
