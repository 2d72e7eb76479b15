package doc2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/alnah/go-doc2pdf/internal/hints"
)

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// PandocOptions configures the local-toolchain engine.
type PandocOptions struct {
	Command   string   // conversion binary (default "pandoc")
	PDFEngine string   // --pdf-engine value for LaTeX output (default "xelatex")
	ExtraArgs []string // appended verbatim (e.g. --standalone, --toc)
	Timeout   time.Duration
	Formats   []Format
}

// defaultEngineTimeout bounds a single adapter call when no timeout is
// configured. Expiry is an ordinary failure, never a hang.
const defaultEngineTimeout = 2 * time.Minute

// PandocEngine invokes a local conversion command with format-specific flags.
// Success means exit code zero and a non-empty output artifact; anything else
// becomes a failed attempt carrying the captured diagnostic text.
type PandocEngine struct {
	opts   PandocOptions
	runner CommandRunner
}

// NewPandocEngine creates a PandocEngine with a real command runner.
func NewPandocEngine(opts PandocOptions) *PandocEngine {
	return NewPandocEngineWith(opts, &ExecRunner{})
}

// NewPandocEngineWith creates a PandocEngine with a custom runner (for tests).
func NewPandocEngineWith(opts PandocOptions, runner CommandRunner) *PandocEngine {
	if opts.PDFEngine == "" {
		opts.PDFEngine = "xelatex"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultEngineTimeout
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []Format{FormatMarkdown, FormatLaTeX}
	}
	return &PandocEngine{opts: opts, runner: runner}
}

// EnginePandoc is the registered name of the local-toolchain engine.
const EnginePandoc = "pandoc"

func (e *PandocEngine) Name() string { return EnginePandoc }

func (e *PandocEngine) Accepts(format Format) bool {
	return acceptsFormat(e.opts.Formats, format)
}

// Convert runs the conversion command and verifies the output artifact.
func (e *PandocEngine) Convert(ctx context.Context, doc *Document, outputPath string) (ConversionAttempt, error) {
	if e.opts.Command == "" {
		return ConversionAttempt{}, fatalConfig(EnginePandoc, "command is empty")
	}

	start := time.Now()
	args := e.buildArgs(doc, outputPath)

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	_, stderr, err := e.runner.Run(ctx, e.opts.Command, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return failedAttempt(EnginePandoc, start, ReasonTimeout,
				fmt.Sprintf("command exceeded %s", e.opts.Timeout)), nil
		}
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = err.Error()
		}
		if errors.Is(err, exec.ErrNotFound) {
			detail += hints.ForToolchainMissing(e.opts.Command)
		}
		return failedAttempt(EnginePandoc, start, ReasonProcessFailure, detail), nil
	}

	if !artifactExists(outputPath) {
		return failedAttempt(EnginePandoc, start, ReasonArtifactMissing,
			fmt.Sprintf("command exited cleanly but %s is missing or empty", outputPath)), nil
	}

	return successAttempt(EnginePandoc, start, outputPath), nil
}

// buildArgs assembles the command line. The --pdf-engine flag only matters
// for LaTeX-backed PDF output but pandoc accepts it for Markdown too, which
// mirrors how the tool is driven in practice.
func (e *PandocEngine) buildArgs(doc *Document, outputPath string) []string {
	args := []string{doc.Path, "-o", outputPath, "--pdf-engine", e.opts.PDFEngine}
	if doc.Format == FormatMarkdown {
		// Disable fancy_lists so letter markers (A), B)) survive verbatim.
		args = append(args, "-f", "markdown-fancy_lists")
	}
	args = append(args, e.opts.ExtraArgs...)
	return args
}

// artifactExists reports whether path is a non-empty regular file.
func artifactExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
