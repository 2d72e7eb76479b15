package doc2pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
	"github.com/alnah/go-doc2pdf/internal/hints"
)

// ChromiumOptions configures the headless-Chrome engine.
type ChromiumOptions struct {
	Timeout time.Duration
}

// ChromiumEngine converts Markdown via goldmark and renders the resulting
// HTML to PDF in headless Chrome. Markdown only; LaTeX has no HTML path here.
//
// Browser startup failures are ordinary attempt failures, not fatal: rod
// provisions its own Chromium, so there is no unfixable configuration state.
type ChromiumEngine struct {
	opts      ChromiumOptions
	converter htmlConverter
	renderer  pdfRenderer
}

// NewChromiumEngine creates a ChromiumEngine with the production renderer.
func NewChromiumEngine(opts ChromiumOptions) *ChromiumEngine {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultEngineTimeout
	}
	return &ChromiumEngine{
		opts:      opts,
		converter: newGoldmarkConverter(),
		renderer:  newRodRenderer(opts.Timeout),
	}
}

// NewChromiumEngineWith creates a ChromiumEngine with custom collaborators
// (for tests).
func NewChromiumEngineWith(opts ChromiumOptions, converter htmlConverter, renderer pdfRenderer) *ChromiumEngine {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultEngineTimeout
	}
	return &ChromiumEngine{opts: opts, converter: converter, renderer: renderer}
}

// EngineChromium is the registered name of the headless-Chrome engine.
const EngineChromium = "chromium"

func (e *ChromiumEngine) Name() string { return EngineChromium }

func (e *ChromiumEngine) Accepts(format Format) bool {
	return format == FormatMarkdown
}

// Convert renders the Markdown document to PDF through the HTML pipeline.
func (e *ChromiumEngine) Convert(ctx context.Context, doc *Document, outputPath string) (ConversionAttempt, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	content, err := os.ReadFile(doc.Path) // #nosec G304 -- validated document path
	if err != nil {
		return failedAttempt(EngineChromium, start, ReasonProcessFailure,
			fmt.Sprintf("reading document: %v", err)), nil
	}

	htmlContent, err := e.converter.ToHTML(ctx, string(content))
	if err != nil {
		return e.classifyFailure(start, err), nil
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return failedAttempt(EngineChromium, start, ReasonProcessFailure, err.Error()), nil
	}
	defer cleanup()

	pdfBytes, err := e.renderer.RenderFromFile(ctx, tmpPath)
	if err != nil {
		return e.classifyFailure(start, err), nil
	}

	// #nosec G306 -- PDFs are meant to be readable
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return failedAttempt(EngineChromium, start, ReasonProcessFailure,
			fmt.Sprintf("writing artifact: %v", err)), nil
	}

	if !artifactExists(outputPath) {
		return failedAttempt(EngineChromium, start, ReasonArtifactMissing,
			fmt.Sprintf("render finished but %s is missing or empty", outputPath)), nil
	}

	return successAttempt(EngineChromium, start, outputPath), nil
}

// Close releases the headless browser.
func (e *ChromiumEngine) Close() error {
	if e.renderer != nil {
		return e.renderer.Close()
	}
	return nil
}

// classifyFailure maps pipeline errors to attempt failure reasons.
func (e *ChromiumEngine) classifyFailure(start time.Time, err error) ConversionAttempt {
	if errors.Is(err, context.DeadlineExceeded) {
		return failedAttempt(EngineChromium, start, ReasonTimeout,
			fmt.Sprintf("rendering exceeded %s", e.opts.Timeout))
	}
	detail := err.Error()
	if errors.Is(err, ErrBrowserConnect) {
		detail += hints.ForBrowserConnect()
	}
	return failedAttempt(EngineChromium, start, ReasonProcessFailure, detail)
}
