package doc2pdf

// Notes:
// - Exercises the real goldmark pipeline; assertions target structural markers
//   (tags, classes) rather than exact HTML output, which goldmark may evolve

import (
	"context"
	"strings"
	"testing"
)

func TestGoldmarkToHTMLBasicStructure(t *testing.T) {
	c := newGoldmarkConverter()

	html, err := c.ToHTML(context.Background(), "# Title\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("ToHTML error: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<meta charset="utf-8">`,
		"<h1",
		"Title",
		"<strong>bold</strong>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGoldmarkToHTMLGFMTable(t *testing.T) {
	c := newGoldmarkConverter()

	md := "| a | b |\n|---|---|\n| 1 | 2 |"
	html, err := c.ToHTML(context.Background(), md)
	if err != nil {
		t.Fatalf("ToHTML error: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Error("GFM table not rendered")
	}
}

func TestGoldmarkToHTMLCodeHighlighting(t *testing.T) {
	c := newGoldmarkConverter()

	md := "```go\nfunc main() {}\n```"
	html, err := c.ToHTML(context.Background(), md)
	if err != nil {
		t.Fatalf("ToHTML error: %v", err)
	}
	// WithClasses(true) emits class-based highlighting, not inline styles.
	if !strings.Contains(html, "class=") {
		t.Error("fenced code block not highlighted with classes")
	}
}

func TestGoldmarkToHTMLAutoHeadingID(t *testing.T) {
	c := newGoldmarkConverter()

	html, err := c.ToHTML(context.Background(), "## Getting Started")
	if err != nil {
		t.Fatalf("ToHTML error: %v", err)
	}
	if !strings.Contains(html, `id="getting-started"`) {
		t.Error("heading id not generated")
	}
}

func TestGoldmarkToHTMLCancelledContext(t *testing.T) {
	c := newGoldmarkConverter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.ToHTML(ctx, "# Title"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
