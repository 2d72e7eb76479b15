package main

import (
	"testing"
)

func TestParseFlagsDefaults(t *testing.T) {
	flags, args, err := parseFlags([]string{"paper.md"})
	if err != nil {
		t.Fatalf("parseFlags error: %v", err)
	}

	if len(args) != 1 || args[0] != "paper.md" {
		t.Errorf("args = %v, want [paper.md]", args)
	}
	if flags.engine != "" || flags.directory || flags.workers != 0 {
		t.Errorf("flags = %+v, want zero defaults", flags)
	}
}

func TestParseFlagsAll(t *testing.T) {
	flags, args, err := parseFlags([]string{
		"--config", "pipeline",
		"--engine", "remote-service",
		"--directory",
		"-o", "/out",
		"-w", "4",
		"-t", "90s",
		"--no-email",
		"--no-webhook",
		"--log-file", "/tmp/run.json",
		"-v",
		"docs",
	})
	if err != nil {
		t.Fatalf("parseFlags error: %v", err)
	}

	if flags.config != "pipeline" {
		t.Errorf("config = %q", flags.config)
	}
	if flags.engine != "remote-service" {
		t.Errorf("engine = %q", flags.engine)
	}
	if !flags.directory {
		t.Error("directory = false")
	}
	if flags.output != "/out" {
		t.Errorf("output = %q", flags.output)
	}
	if flags.workers != 4 {
		t.Errorf("workers = %d", flags.workers)
	}
	if flags.timeout != "90s" {
		t.Errorf("timeout = %q", flags.timeout)
	}
	if !flags.noEmail || !flags.noWebhook {
		t.Error("notification skips not set")
	}
	if flags.logFile != "/tmp/run.json" {
		t.Errorf("logFile = %q", flags.logFile)
	}
	if !flags.verbose {
		t.Error("verbose = false")
	}
	if len(args) != 1 || args[0] != "docs" {
		t.Errorf("args = %v", args)
	}
}

func TestParseFlagsUnknown(t *testing.T) {
	if _, _, err := parseFlags([]string{"--bogus"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestParseFlagsInterspersed(t *testing.T) {
	flags, args, err := parseFlags([]string{"paper.md", "--verbose"})
	if err != nil {
		t.Fatalf("parseFlags error: %v", err)
	}
	if !flags.verbose {
		t.Error("flag after positional arg not parsed")
	}
	if len(args) != 1 {
		t.Errorf("args = %v", args)
	}
}
