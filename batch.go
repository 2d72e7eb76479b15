package doc2pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Pool sizing constants.
const (
	// MinWorkers ensures at least one worker is available.
	MinWorkers = 1

	// MaxWorkers caps concurrent documents; remote engines and headless
	// Chrome both get expensive fast.
	MaxWorkers = 8

	// cpuDivisor leaves headroom for engine child processes.
	cpuDivisor = 2
)

// ResolveWorkers determines the worker pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		if workers > MaxWorkers {
			return MaxWorkers
		}
		return workers
	}

	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// BatchOptions configures a BatchRunner.
type BatchOptions struct {
	// OutputDir receives artifacts; empty means next to each input file.
	OutputDir string

	// FilenameTemplate names artifacts. Supports {name} and {timestamp}
	// placeholders; empty means "{name}.pdf".
	FilenameTemplate string

	// RequestedEngine, when non-empty, is tried first for every document.
	RequestedEngine string

	// Refiner, when non-nil, rewrites each document's prose before
	// conversion. A refinement failure rejects the document.
	Refiner Refiner

	// Workers bounds parallel document processing; 0 resolves automatically.
	// Each document's own fallback chain stays sequential regardless.
	Workers int

	// Now is injectable for deterministic {timestamp} output in tests.
	Now func() time.Time
}

// BatchRunner enumerates candidate documents, runs each through the
// orchestrator, and aggregates outcomes. One document's failure never stops
// processing of the rest.
type BatchRunner struct {
	orch *Orchestrator
	opts BatchOptions
}

// NewBatchRunner creates a BatchRunner over an orchestrator.
func NewBatchRunner(orch *Orchestrator, opts BatchOptions) *BatchRunner {
	if opts.FilenameTemplate == "" {
		opts.FilenameTemplate = "{name}.pdf"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BatchRunner{orch: orch, opts: opts}
}

// Run processes every regular file directly under dir (non-recursive) in
// lexicographic path order. Validation rejections and conversion failures
// are both recorded; the batch always processes every candidate.
func (r *BatchRunner) Run(ctx context.Context, dir string) (*BatchResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			candidates = append(candidates, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(candidates)

	result := r.process(ctx, candidates)
	result.Dir = dir
	return result, nil
}

// RunFile processes a single file with the same semantics as a batch of one.
func (r *BatchRunner) RunFile(ctx context.Context, path string) (*BatchResult, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}
	return r.process(ctx, []string{path}), nil
}

// docResult pairs the two possible terminal states of one candidate.
type docResult struct {
	outcome   *Outcome
	rejection *Rejection
}

// process fans candidates across a bounded worker pool. Results land in an
// index-addressed slice so no aggregate state is shared between workers, and
// a failing document can never cancel its siblings.
func (r *BatchRunner) process(ctx context.Context, candidates []string) *BatchResult {
	if len(candidates) == 0 {
		return &BatchResult{}
	}

	workers := ResolveWorkers(r.opts.Workers)
	if workers > len(candidates) {
		workers = len(candidates)
	}

	results := make([]docResult, len(candidates))
	jobs := make(chan int, len(candidates))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.processOne(ctx, candidates[idx])
			}
		}()
	}

	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Assemble in candidate order for deterministic reporting.
	result := &BatchResult{}
	for _, dr := range results {
		switch {
		case dr.rejection != nil:
			result.Rejections = append(result.Rejections, *dr.rejection)
		case dr.outcome != nil:
			result.Outcomes = append(result.Outcomes, dr.outcome)
			if dr.outcome.Status == StatusSuccess {
				result.Succeeded++
			} else {
				result.Failed++
			}
		}
	}
	return result
}

// processOne validates, optionally refines, then orchestrates a single
// candidate.
func (r *BatchRunner) processOne(ctx context.Context, path string) docResult {
	doc, err := Validate(path)
	if err != nil {
		return docResult{rejection: &Rejection{Path: path, Err: err}}
	}

	if r.opts.Refiner != nil {
		refined, err := r.opts.Refiner.Refine(ctx, doc)
		if err != nil {
			return docResult{rejection: &Rejection{Path: path, Err: err}}
		}
		doc = refined
	}

	outputPath := r.resolveOutputPath(doc)
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return docResult{rejection: &Rejection{Path: path,
				Err: fmt.Errorf("%w: creating output directory: %v", ErrUnreadableInput, err)}}
		}
	}

	outcome, err := r.orch.ConvertDocument(ctx, doc, r.opts.RequestedEngine, outputPath)
	if err != nil {
		// Requested-engine incompatibility is a validation-level rejection:
		// no attempt was recorded.
		return docResult{rejection: &Rejection{Path: path, Err: err}}
	}
	return docResult{outcome: outcome}
}

// resolveOutputPath expands the filename template for a document.
func (r *BatchRunner) resolveOutputPath(doc *Document) string {
	name := strings.NewReplacer(
		"{name}", doc.Name(),
		"{timestamp}", r.opts.Now().Format("20060102_150405"),
	).Replace(r.opts.FilenameTemplate)

	if r.opts.OutputDir == "" {
		return filepath.Join(filepath.Dir(doc.Path), name)
	}
	return filepath.Join(r.opts.OutputDir, name)
}
