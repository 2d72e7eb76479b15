package doc2pdf

// Notes:
// - fakeConverter and fakeRenderer replace the goldmark/browser pipeline so
//   the adapter's classification logic runs without Chrome
// - The goldmark converter itself is covered separately in md2html_test.go

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeConverter struct {
	html string
	err  error
}

func (f *fakeConverter) ToHTML(_ context.Context, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.html != "" {
		return f.html, nil
	}
	return "<html><body>" + content + "</body></html>", nil
}

type fakeRenderer struct {
	pdf    []byte
	err    error
	closed bool
}

func (f *fakeRenderer) RenderFromFile(_ context.Context, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.pdf != nil {
		return f.pdf, nil
	}
	return []byte("%PDF-1.7 fake"), nil
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

func chromiumTestDoc(t *testing.T) *Document {
	t.Helper()
	path := writeFile(t, t.TempDir(), "notes.md", "# notes\n\nbody")
	doc, err := Validate(path)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestChromiumConvertSuccess(t *testing.T) {
	engine := NewChromiumEngineWith(ChromiumOptions{}, &fakeConverter{}, &fakeRenderer{})

	out := filepath.Join(t.TempDir(), "notes.pdf")
	attempt, err := engine.Convert(context.Background(), chromiumTestDoc(t), out)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if !attempt.OK {
		t.Fatalf("attempt failed: %s %s", attempt.Reason, attempt.Detail)
	}
	if attempt.Engine != EngineChromium {
		t.Errorf("Engine = %q, want %q", attempt.Engine, EngineChromium)
	}

	pdf, err := os.ReadFile(out) // #nosec G304 -- test temp path
	if err != nil || len(pdf) == 0 {
		t.Errorf("artifact not written: %v", err)
	}
}

func TestChromiumAcceptsMarkdownOnly(t *testing.T) {
	engine := NewChromiumEngineWith(ChromiumOptions{}, &fakeConverter{}, &fakeRenderer{})

	if !engine.Accepts(FormatMarkdown) {
		t.Error("should accept markdown")
	}
	if engine.Accepts(FormatLaTeX) {
		t.Error("should not accept latex")
	}
}

func TestChromiumConvertConverterFailure(t *testing.T) {
	engine := NewChromiumEngineWith(ChromiumOptions{},
		&fakeConverter{err: errors.New("parse exploded")}, &fakeRenderer{})

	attempt, err := engine.Convert(context.Background(), chromiumTestDoc(t),
		filepath.Join(t.TempDir(), "n.pdf"))
	if err != nil {
		t.Fatalf("Convert error: %v (pipeline failures must be attempts)", err)
	}
	if attempt.OK || attempt.Reason != ReasonProcessFailure {
		t.Errorf("attempt = %+v, want process-failure", attempt)
	}
	if !strings.Contains(attempt.Detail, "parse exploded") {
		t.Errorf("Detail = %q, want underlying error text", attempt.Detail)
	}
}

func TestChromiumConvertRendererFailure(t *testing.T) {
	engine := NewChromiumEngineWith(ChromiumOptions{},
		&fakeConverter{}, &fakeRenderer{err: ErrBrowserConnect})

	attempt, err := engine.Convert(context.Background(), chromiumTestDoc(t),
		filepath.Join(t.TempDir(), "n.pdf"))
	if err != nil {
		t.Fatalf("Convert error: %v (browser failures are ordinary, rod self-provisions)", err)
	}
	if attempt.Reason != ReasonProcessFailure {
		t.Errorf("Reason = %q, want process-failure", attempt.Reason)
	}
}

func TestChromiumConvertTimeout(t *testing.T) {
	engine := NewChromiumEngineWith(ChromiumOptions{Timeout: 10 * time.Millisecond},
		&fakeConverter{}, &fakeRenderer{err: context.DeadlineExceeded})

	attempt, err := engine.Convert(context.Background(), chromiumTestDoc(t),
		filepath.Join(t.TempDir(), "n.pdf"))
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if attempt.Reason != ReasonTimeout {
		t.Errorf("Reason = %q, want timeout", attempt.Reason)
	}
}

func TestChromiumConvertEmptyArtifact(t *testing.T) {
	engine := NewChromiumEngineWith(ChromiumOptions{},
		&fakeConverter{}, &fakeRenderer{pdf: []byte{}})

	attempt, err := engine.Convert(context.Background(), chromiumTestDoc(t),
		filepath.Join(t.TempDir(), "n.pdf"))
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if attempt.OK {
		t.Error("attempt succeeded with empty artifact")
	}
}

func TestChromiumClose(t *testing.T) {
	renderer := &fakeRenderer{}
	engine := NewChromiumEngineWith(ChromiumOptions{}, &fakeConverter{}, renderer)

	if err := engine.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if !renderer.closed {
		t.Error("renderer not closed")
	}
}
