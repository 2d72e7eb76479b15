package doc2pdf

import (
	"context"
	"log/slog"
)

// Reporter turns outcomes into structured log records and dispatches
// best-effort notifications for successful conversions.
//
// Severity per attempt: INFO for the success, WARN for a failure that a
// later fallback recovered, ERROR for the final failure of a failed outcome.
type Reporter struct {
	logger    *slog.Logger
	notifiers []Notifier
}

// NewReporter creates a Reporter. A nil logger falls back to slog.Default.
func NewReporter(logger *slog.Logger, notifiers ...Notifier) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{logger: logger, notifiers: notifiers}
}

// Report emits one log record per conversion attempt, then notifies on
// success. Notification failures log as warnings and never change the
// outcome's status.
func (r *Reporter) Report(ctx context.Context, outcome *Outcome) {
	for i, attempt := range outcome.Attempts {
		attrs := []any{
			slog.String("document", outcome.Document.Path),
			slog.String("engine", attempt.Engine),
			slog.Duration("duration", attempt.Duration()),
		}

		switch {
		case attempt.OK:
			r.logger.Info("conversion succeeded",
				append(attrs, slog.String("output", attempt.OutputPath))...)
		case isFinalFailure(outcome, i):
			r.logger.Error("conversion failed",
				append(attrs,
					slog.String("reason", string(attempt.Reason)),
					slog.String("detail", attempt.Detail))...)
		default:
			r.logger.Warn("engine failed, falling back",
				append(attrs,
					slog.String("reason", string(attempt.Reason)),
					slog.String("detail", attempt.Detail))...)
		}
	}

	if outcome.Status == StatusSuccess {
		r.notify(ctx, outcome)
	}
}

// ReportRejection logs a document that never passed validation.
func (r *Reporter) ReportRejection(rejection Rejection) {
	r.logger.Error("document rejected",
		slog.String("document", rejection.Path),
		slog.String("error", rejection.Err.Error()))
}

// ReportBatch reports every outcome and rejection of a batch run plus a
// summary record.
func (r *Reporter) ReportBatch(ctx context.Context, result *BatchResult) {
	for _, rejection := range result.Rejections {
		r.ReportRejection(rejection)
	}
	for _, outcome := range result.Outcomes {
		r.Report(ctx, outcome)
	}

	r.logger.Info("batch finished",
		slog.String("dir", result.Dir),
		slog.String("status", string(result.Status())),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", result.Failed),
		slog.Int("rejected", len(result.Rejections)))
}

// notify hands the artifact to every configured notification collaborator.
func (r *Reporter) notify(ctx context.Context, outcome *Outcome) {
	for _, n := range r.notifiers {
		if err := n.Notify(ctx, outcome); err != nil {
			r.logger.Warn("notification failed",
				slog.String("notifier", n.Name()),
				slog.String("document", outcome.Document.Path),
				slog.String("error", err.Error()))
		} else {
			r.logger.Info("notification sent",
				slog.String("notifier", n.Name()),
				slog.String("document", outcome.Document.Path))
		}
	}
}

// isFinalFailure reports whether attempt i is the last attempt of a failed
// outcome (no fallback recovered it).
func isFinalFailure(outcome *Outcome, i int) bool {
	return outcome.Status == StatusFailed && i == len(outcome.Attempts)-1
}
