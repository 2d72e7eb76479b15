package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/config"
	"github.com/alnah/go-doc2pdf/internal/hints"
	"github.com/alnah/go-doc2pdf/internal/logutil"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput        = errors.New("no input specified")
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrPartialFailure = errors.New("some conversions failed")
	ErrAllFailed      = errors.New("all conversions failed")
)

// runConvert wires configuration, engines, and reporters, then runs the
// single-file or batch conversion.
func runConvert(ctx context.Context, positionalArgs []string, flags *cliFlags, env *Environment) error {
	if len(positionalArgs) == 0 {
		return ErrNoInput
	}
	inputPath := positionalArgs[0]

	cfg := config.DefaultConfig()
	if flags.config != "" {
		var err error
		cfg, err = config.LoadConfig(flags.config)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(nil))
			}
			return fmt.Errorf("loading config: %w", err)
		}
	}

	timeoutOverride, err := resolveTimeout(flags.timeout)
	if err != nil {
		return err
	}

	logFile := flags.logFile
	if logFile == "" {
		logFile = cfg.Log.File
	}
	logger, closeLog := logutil.Setup(logFile, resolveLevel(flags, cfg))
	defer func() { _ = closeLog() }()

	registrations, err := buildEngines(cfg, timeoutOverride)
	if err != nil {
		return err
	}
	defer closeEngines(registrations)

	orch := doc2pdf.NewOrchestrator(registrations, doc2pdf.WithLogger(logger))
	reporter := doc2pdf.NewReporter(logger, buildNotifiers(cfg, flags.noEmail, flags.noWebhook)...)

	runner := doc2pdf.NewBatchRunner(orch, doc2pdf.BatchOptions{
		OutputDir:        resolveOutputDir(flags.output, cfg),
		FilenameTemplate: cfg.Output.FilenameTemplate,
		RequestedEngine:  flags.engine,
		Refiner:          buildRefiner(cfg, flags, logger),
		Workers:          flags.workers,
		Now:              env.Now,
	})

	var result *doc2pdf.BatchResult
	if flags.directory {
		result, err = runner.Run(ctx, inputPath)
	} else {
		result, err = runner.RunFile(ctx, inputPath)
	}
	if err != nil {
		return err
	}

	reporter.ReportBatch(ctx, result)
	printSummary(result, flags, env)

	switch result.Status() {
	case doc2pdf.BatchSuccess:
		return nil
	case doc2pdf.BatchTotalFailure:
		return fmt.Errorf("%w: %s", ErrAllFailed, result)
	default:
		return fmt.Errorf("%w: %s", ErrPartialFailure, result)
	}
}

// resolveTimeout parses the --timeout flag; empty means config/engine defaults.
func resolveTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, s)
	}
	return d, nil
}

// resolveLevel maps --quiet/--verbose onto the configured log level.
func resolveLevel(flags *cliFlags, cfg *config.Config) slog.Level {
	switch {
	case flags.quiet:
		return slog.LevelError
	case flags.verbose:
		return slog.LevelDebug
	default:
		return logutil.ParseLevel(cfg.Log.Level)
	}
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.Directory
}

// closeEngines releases engine resources (headless browser).
func closeEngines(registrations []doc2pdf.EngineRegistration) {
	for _, reg := range registrations {
		if closer, ok := reg.Engine.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
}

// printSummary writes per-document results to stdout/stderr.
func printSummary(result *doc2pdf.BatchResult, flags *cliFlags, env *Environment) {
	for _, rejection := range result.Rejections {
		fmt.Fprintf(env.Stderr, "REJECTED %s: %v\n", rejection.Path, rejection.Err)
	}

	for _, outcome := range result.Outcomes {
		if outcome.Status != doc2pdf.StatusSuccess {
			last := outcome.LastAttempt()
			fmt.Fprintf(env.Stderr, "FAILED %s: %s (%s)%s\n",
				outcome.Document.Path, last.Detail, last.Reason, hintFor(last.Reason))
			continue
		}
		if flags.quiet {
			continue
		}
		if flags.verbose {
			last := outcome.LastAttempt()
			fmt.Fprintf(env.Stdout, "%s -> %s via %s (%v)\n",
				outcome.Document.Path, outcome.OutputPath, last.Engine,
				last.Duration().Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", outcome.OutputPath)
		}
	}

	if !flags.quiet && result.Total() > 1 {
		fmt.Fprintf(env.Stdout, "\n%s\n", result)
	}
}

// hintFor maps failure reasons to actionable suggestions.
func hintFor(reason doc2pdf.FailureReason) string {
	switch reason {
	case doc2pdf.ReasonTimeout:
		return hints.ForTimeout()
	case doc2pdf.ReasonAuthFailure:
		return hints.ForRemoteAuth()
	default:
		return ""
	}
}
