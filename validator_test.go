package doc2pdf

// Notes:
// - Validation is pure inspection, so tests exercise it against real files in
//   t.TempDir() rather than mocks
// - Error identity is checked with errors.Is against the exported sentinels

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestValidateAcceptedFormats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		file       string
		wantFormat Format
	}{
		{"markdown md", "notes.md", FormatMarkdown},
		{"markdown long extension", "notes.markdown", FormatMarkdown},
		{"latex tex", "thesis.tex", FormatLaTeX},
		{"latex long extension", "thesis.latex", FormatLaTeX},
		{"uppercase extension", "README.MD", FormatMarkdown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, "content")

			doc, err := Validate(path)
			if err != nil {
				t.Fatalf("Validate(%q) error: %v", tt.file, err)
			}
			if doc.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", doc.Format, tt.wantFormat)
			}
			if !filepath.IsAbs(doc.Path) {
				t.Errorf("Path = %q, want absolute", doc.Path)
			}
			if doc.Size == 0 {
				t.Error("Size = 0, want non-zero")
			}
		})
	}
}

func TestValidateUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"report.docx", "data.txt", "noext"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, name, "content")

			_, err := Validate(path)
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("Validate(%q) error = %v, want ErrUnsupportedFormat", name, err)
			}
		})
	}
}

func TestValidateUnreadableInput(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Validate(filepath.Join(dir, "ghost.md"))
		if !errors.Is(err, ErrUnreadableInput) {
			t.Errorf("error = %v, want ErrUnreadableInput", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, dir, "empty.md", "")

		_, err := Validate(path)
		if !errors.Is(err, ErrUnreadableInput) {
			t.Errorf("error = %v, want ErrUnreadableInput", err)
		}
	})

	t.Run("directory with supported extension", func(t *testing.T) {
		sub := filepath.Join(dir, "folder.md")
		if err := os.Mkdir(sub, 0o750); err != nil {
			t.Fatal(err)
		}

		_, err := Validate(sub)
		if !errors.Is(err, ErrUnreadableInput) {
			t.Errorf("error = %v, want ErrUnreadableInput", err)
		}
	})
}

func TestValidateExtensionBeforeReadability(t *testing.T) {
	// Unsupported extension wins even when the file does not exist: format
	// classification needs only the path.
	_, err := Validate(filepath.Join(t.TempDir(), "nothing.pdf"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/paper.md", "paper"},
		{"/tmp/thesis.tex", "thesis"},
		{"/tmp/archive.v2.md", "archive.v2"},
	}

	for _, tt := range tests {
		doc := &Document{Path: tt.path}
		if got := doc.Name(); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
