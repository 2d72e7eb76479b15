package logutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupStderrOnly(t *testing.T) {
	logger, closeFn := Setup("", slog.LevelInfo)
	defer func() { _ = closeFn() }()

	if logger == nil {
		t.Fatal("logger is nil")
	}
}

func TestSetupWritesJSONFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.json")

	logger, closeFn := Setup(logFile, slog.LevelInfo)
	logger.Info("conversion succeeded", slog.String("engine", "pandoc"))
	if err := closeFn(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	data, err := os.ReadFile(logFile) // #nosec G304 -- test temp path
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("log file is not JSON: %v\n%s", err, data)
	}
	if record["msg"] != "conversion succeeded" || record["engine"] != "pandoc" {
		t.Errorf("record = %v", record)
	}
}

func TestSetupUnopenableFileFallsBack(t *testing.T) {
	// Directory as log file path cannot be opened for writing.
	logger, closeFn := Setup(t.TempDir(), slog.LevelInfo)
	defer func() { _ = closeFn() }()

	if logger == nil {
		t.Fatal("logger is nil, want stderr fallback")
	}
}

func TestSetupWithWritersFanout(t *testing.T) {
	var stderr, file bytes.Buffer

	logger := SetupWithWriters(&stderr, &file, slog.LevelInfo)
	logger.Info("hello", slog.String("k", "v"))

	if !strings.Contains(stderr.String(), "hello") {
		t.Errorf("stderr output missing record: %q", stderr.String())
	}

	var record map[string]any
	if err := json.Unmarshal(file.Bytes(), &record); err != nil {
		t.Fatalf("file output not JSON: %v", err)
	}
	if record["k"] != "v" {
		t.Errorf("record = %v", record)
	}
}

func TestSetupWithWritersLevelFilter(t *testing.T) {
	var stderr, file bytes.Buffer

	logger := SetupWithWriters(&stderr, &file, slog.LevelError)
	logger.Info("suppressed")
	logger.Error("kept")

	if strings.Contains(stderr.String(), "suppressed") {
		t.Error("INFO record not filtered at ERROR level")
	}
	if !strings.Contains(stderr.String(), "kept") {
		t.Error("ERROR record missing")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		s    string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.s); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
