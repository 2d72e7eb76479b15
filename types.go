package doc2pdf

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format identifies a supported source document format.
type Format string

// Supported document formats.
const (
	FormatMarkdown Format = "markdown"
	FormatLaTeX    Format = "latex"
)

// extensionFormats maps recognized file extensions to formats.
var extensionFormats = map[string]Format{
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".tex":      FormatLaTeX,
	".latex":    FormatLaTeX,
}

// FormatForPath returns the format for a file path based on its extension.
// The second return value is false for unrecognized extensions.
func FormatForPath(path string) (Format, bool) {
	f, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Document is a validated conversion input. Immutable once created;
// construct only via Validate.
type Document struct {
	Path    string // absolute input path
	Format  Format
	Size    int64
	ModTime time.Time
}

// Name returns the document's base name without extension, used for output
// file naming.
func (d *Document) Name() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FailureReason classifies why a conversion attempt failed.
type FailureReason string

// Failure reasons recorded on attempts. The reporter logs them differently,
// so remote auth/quota/timeout stay distinct.
const (
	ReasonProcessFailure     FailureReason = "process-failure"
	ReasonAuthFailure        FailureReason = "auth-failure"
	ReasonRateLimited        FailureReason = "rate-limited"
	ReasonTimeout            FailureReason = "timeout"
	ReasonArtifactMissing    FailureReason = "artifact-missing"
	ReasonNoApplicableEngine FailureReason = "no-applicable-engine"
)

// ConversionAttempt records one adapter invocation. Never mutated after
// completion; retained only within its owning Outcome.
type ConversionAttempt struct {
	Engine     string
	Start      time.Time
	End        time.Time
	OK         bool
	Reason     FailureReason // set when !OK
	Detail     string        // diagnostic text when !OK
	OutputPath string        // set when OK
}

// Duration returns the wall time spent on the attempt.
func (a ConversionAttempt) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Status is the terminal state of a converted document.
type Status string

// Outcome statuses.
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Outcome is the terminal result of converting one document: final status
// plus the full attempt history leading to it.
//
// Invariant: Status == StatusSuccess iff the last attempt succeeded, and
// every attempt before the last is a failure.
type Outcome struct {
	Document   *Document
	Status     Status
	Attempts   []ConversionAttempt
	OutputPath string // set when Status == StatusSuccess
}

// LastAttempt returns the final attempt, or a zero attempt if none exist.
func (o *Outcome) LastAttempt() ConversionAttempt {
	if len(o.Attempts) == 0 {
		return ConversionAttempt{}
	}
	return o.Attempts[len(o.Attempts)-1]
}

// Rejection records a document that never reached the orchestrator: it
// failed validation or its pre-conversion refinement.
type Rejection struct {
	Path string
	Err  error
}

// BatchStatus summarizes a directory run.
type BatchStatus string

// Batch statuses. Partial and total failure are distinguished for reporting.
const (
	BatchSuccess        BatchStatus = "success"
	BatchPartialFailure BatchStatus = "partial-failure"
	BatchTotalFailure   BatchStatus = "total-failure"
)

// BatchResult aggregates all outcomes and rejections of one directory run.
// Lifecycle is bounded to a single invocation.
type BatchResult struct {
	Dir        string
	Outcomes   []*Outcome
	Rejections []Rejection
	Succeeded  int
	Failed     int
}

// Status derives the overall batch status. A batch succeeds only if every
// candidate document reached StatusSuccess.
func (r *BatchResult) Status() BatchStatus {
	failures := r.Failed + len(r.Rejections)
	if failures == 0 {
		return BatchSuccess
	}
	if r.Succeeded == 0 {
		return BatchTotalFailure
	}
	return BatchPartialFailure
}

// Total returns the number of candidate documents the batch saw.
func (r *BatchResult) Total() int {
	return len(r.Outcomes) + len(r.Rejections)
}

// String renders a one-line summary for CLI output.
func (r *BatchResult) String() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d rejected", r.Succeeded, r.Failed, len(r.Rejections))
}
