package doc2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// maxRepeat bounds per-engine retry so a flaky engine cannot spin forever.
const maxRepeat = 3

// EngineRegistration binds an engine to its configured ordering and retry
// policy. Engines are registered once at startup and treated as read-only
// for the process lifetime.
type EngineRegistration struct {
	Engine   Engine
	Priority int // lower = tried earlier
	Repeat   int // extra invocations of the same engine, 0 = none, capped at maxRepeat
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for fatal-engine notices.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator selects an engine ordering per document, executes adapters in
// that order, applies fallback on failure, and produces one Outcome per
// document. Engines for a single document always run sequentially: remote
// adapters may have cost or quota implications, so no engine is invoked
// unless every engine before it has failed.
type Orchestrator struct {
	registrations []EngineRegistration // registration order breaks priority ties
	logger        *slog.Logger

	// disabled holds engines knocked out by fatal misconfiguration for the
	// remainder of the run. Guarded for parallel batch processing.
	mu       sync.Mutex
	disabled map[string]error
}

// NewOrchestrator creates an Orchestrator over a closed set of engines.
func NewOrchestrator(registrations []EngineRegistration, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registrations: registrations,
		logger:        slog.Default(),
		disabled:      make(map[string]error),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// EngineNames returns the registered engine names in registration order.
func (o *Orchestrator) EngineNames() []string {
	names := make([]string, len(o.registrations))
	for i, r := range o.registrations {
		names[i] = r.Engine.Name()
	}
	return names
}

// ConvertDocument runs the fallback chain for one validated document.
//
// requestedEngine, when non-empty, is placed first in the ordering; the
// remaining applicable engines still apply as fallback. A requested engine
// that does not accept the document's format is rejected with
// ErrRequestedEngineIncompatible before any attempt is recorded.
func (o *Orchestrator) ConvertDocument(ctx context.Context, doc *Document, requestedEngine, outputPath string) (*Outcome, error) {
	if requestedEngine != "" {
		if err := o.checkRequested(requestedEngine, doc.Format); err != nil {
			return nil, err
		}
	}

	ordered := o.orderedFor(doc.Format, requestedEngine)

	outcome := &Outcome{Document: doc, Status: StatusFailed}

	if len(ordered) == 0 {
		// Short-circuit: no adapter is invoked when nothing applies.
		outcome.Attempts = append(outcome.Attempts, syntheticNoEngineAttempt(doc))
		return outcome, nil
	}

	for _, reg := range ordered {
		name := reg.Engine.Name()
		invocations := 1 + clampRepeat(reg.Repeat)

		for i := 0; i < invocations; i++ {
			attempt, err := reg.Engine.Convert(ctx, doc, outputPath)
			if err != nil {
				// Fatal misconfiguration: disable the engine for the rest of
				// the run and move on to the next one.
				o.disable(name, err)
				break
			}

			outcome.Attempts = append(outcome.Attempts, attempt)
			if attempt.OK {
				outcome.Status = StatusSuccess
				outcome.OutputPath = attempt.OutputPath
				return outcome, nil
			}
		}
	}

	if len(outcome.Attempts) == 0 {
		// Every applicable engine was fatally disabled before it could run.
		outcome.Attempts = append(outcome.Attempts, syntheticNoEngineAttempt(doc))
	}

	return outcome, nil
}

// checkRequested validates an explicit --engine request against the closed
// engine set and the document format.
func (o *Orchestrator) checkRequested(name string, format Format) error {
	for _, reg := range o.registrations {
		if reg.Engine.Name() != name {
			continue
		}
		if !reg.Engine.Accepts(format) {
			return fmt.Errorf("%w: %s does not accept %s", ErrRequestedEngineIncompatible, name, format)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown engine %q", ErrRequestedEngineIncompatible, name)
}

// orderedFor computes the engine ordering for a format: the requested engine
// first, then the remaining applicable engines by ascending priority with
// registration order breaking ties. Fatally disabled engines are skipped.
func (o *Orchestrator) orderedFor(format Format, requestedEngine string) []EngineRegistration {
	var requested []EngineRegistration
	var rest []EngineRegistration

	for _, reg := range o.registrations {
		if !reg.Engine.Accepts(format) || o.isDisabled(reg.Engine.Name()) {
			continue
		}
		if reg.Engine.Name() == requestedEngine {
			requested = append(requested, reg)
			continue
		}
		rest = append(rest, reg)
	}

	// Stable sort keeps registration order for equal priorities.
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].Priority < rest[j].Priority
	})

	return append(requested, rest...)
}

// disable marks an engine unusable for the remainder of the run, logging the
// reason exactly once.
func (o *Orchestrator) disable(name string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, seen := o.disabled[name]; seen {
		return
	}
	o.disabled[name] = err
	o.logger.Error("engine disabled for remainder of run",
		slog.String("engine", name),
		slog.String("error", err.Error()))
}

func (o *Orchestrator) isDisabled(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.disabled[name]
	return ok
}

// syntheticNoEngineAttempt records the terminal NoApplicableEngine failure
// for a document no configured engine can handle.
func syntheticNoEngineAttempt(doc *Document) ConversionAttempt {
	now := time.Now()
	return ConversionAttempt{
		Start:  now,
		End:    now,
		Reason: ReasonNoApplicableEngine,
		Detail: fmt.Sprintf("no configured engine accepts %s", doc.Format),
	}
}

// clampRepeat bounds configured repeat counts.
func clampRepeat(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxRepeat {
		return maxRepeat
	}
	return n
}
