package doc2pdf

import (
	"context"
	"fmt"
	"time"
)

// Engine wraps one external conversion mechanism behind a uniform contract.
//
// Convert must capture ordinary engine failures (missing binary, non-zero
// exit, API error, timeout) as a failed ConversionAttempt so the orchestrator
// can try the next engine. The error return is reserved for fatal
// misconfiguration that no fallback could fix; the orchestrator reacts by
// disabling the engine for the remainder of the run, not by aborting the
// document. Wrap such errors with ErrEngineNotConfigured.
type Engine interface {
	Name() string
	Accepts(format Format) bool
	Convert(ctx context.Context, doc *Document, outputPath string) (ConversionAttempt, error)
}

// acceptsFormat reports whether format appears in formats.
func acceptsFormat(formats []Format, format Format) bool {
	for _, f := range formats {
		if f == format {
			return true
		}
	}
	return false
}

// successAttempt builds a completed successful attempt.
func successAttempt(engine string, start time.Time, outputPath string) ConversionAttempt {
	return ConversionAttempt{
		Engine:     engine,
		Start:      start,
		End:        time.Now(),
		OK:         true,
		OutputPath: outputPath,
	}
}

// failedAttempt builds a completed failed attempt.
func failedAttempt(engine string, start time.Time, reason FailureReason, detail string) ConversionAttempt {
	return ConversionAttempt{
		Engine: engine,
		Start:  start,
		End:    time.Now(),
		Reason: reason,
		Detail: detail,
	}
}

// fatalConfig wraps a misconfiguration message with ErrEngineNotConfigured.
func fatalConfig(engine, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrEngineNotConfigured, engine, msg)
}
