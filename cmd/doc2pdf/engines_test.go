package main

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/config"
)

func TestBuildEnginesFromDefaultConfig(t *testing.T) {
	regs, err := buildEngines(config.DefaultConfig(), 0)
	if err != nil {
		t.Fatalf("buildEngines error: %v", err)
	}
	defer closeEngines(regs)

	if len(regs) != 2 {
		t.Fatalf("registrations = %d, want 2", len(regs))
	}
	if regs[0].Engine.Name() != doc2pdf.EnginePandoc {
		t.Errorf("engine[0] = %q, want pandoc", regs[0].Engine.Name())
	}
	if regs[1].Engine.Name() != doc2pdf.EngineChromium {
		t.Errorf("engine[1] = %q, want chromium", regs[1].Engine.Name())
	}
	if regs[0].Priority != 1 || regs[1].Priority != 2 {
		t.Errorf("priorities = %d, %d", regs[0].Priority, regs[1].Priority)
	}
}

func TestBuildEnginesRemote(t *testing.T) {
	cfg := &config.Config{
		Engines: []config.EngineConfig{
			{
				Name:     config.EngineRemote,
				Priority: 1,
				Repeat:   2,
				Endpoint: "https://compile.example.com",
				APIKey:   "k",
			},
		},
	}

	regs, err := buildEngines(cfg, 0)
	if err != nil {
		t.Fatalf("buildEngines error: %v", err)
	}
	if len(regs) != 1 || regs[0].Engine.Name() != doc2pdf.EngineRemote {
		t.Fatalf("registrations = %+v", regs)
	}
	if regs[0].Repeat != 2 {
		t.Errorf("Repeat = %d, want 2", regs[0].Repeat)
	}
}

func TestBuildEnginesUnknownName(t *testing.T) {
	cfg := &config.Config{
		Engines: []config.EngineConfig{{Name: "wkhtmltopdf"}},
	}

	_, err := buildEngines(cfg, 0)
	if !errors.Is(err, config.ErrUnknownEngine) {
		t.Errorf("error = %v, want ErrUnknownEngine", err)
	}
}

func TestBuildEnginesInvalidTimeout(t *testing.T) {
	cfg := &config.Config{
		Engines: []config.EngineConfig{{Name: config.EnginePandoc, Timeout: "soon"}},
	}

	_, err := buildEngines(cfg, 0)
	if !errors.Is(err, config.ErrInvalidTimeout) {
		t.Errorf("error = %v, want ErrInvalidTimeout", err)
	}
}

func TestBuildRefiner(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name    string
		cfg     config.RefineConfig
		flags   cliFlags
		wantNil bool
	}{
		{"disabled", config.RefineConfig{}, cliFlags{}, true},
		{"enabled with key", config.RefineConfig{Enabled: true, APIKey: "k"}, cliFlags{}, false},
		{"enabled without key skips", config.RefineConfig{Enabled: true}, cliFlags{}, true},
		{"flag enables", config.RefineConfig{APIKey: "k"}, cliFlags{refine: true}, false},
		{"flag without key skips", config.RefineConfig{}, cliFlags{refine: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Refine: tt.cfg}
			got := buildRefiner(cfg, &tt.flags, logger)
			if (got == nil) != tt.wantNil {
				t.Errorf("buildRefiner = %v, wantNil %v", got, tt.wantNil)
			}
		})
	}
}

func TestBuildNotifiers(t *testing.T) {
	cfg := &config.Config{
		Email:   config.EmailConfig{Enabled: true, Host: "smtp.example.com", To: "r@example.com"},
		Webhook: config.WebhookConfig{Enabled: true, URL: "https://hooks.example.com"},
	}

	tests := []struct {
		name      string
		noEmail   bool
		noWebhook bool
		want      int
	}{
		{"both enabled", false, false, 2},
		{"email skipped", true, false, 1},
		{"webhook skipped", false, true, 1},
		{"both skipped", true, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(buildNotifiers(cfg, tt.noEmail, tt.noWebhook)); got != tt.want {
				t.Errorf("notifiers = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildNotifiersDisabledConfig(t *testing.T) {
	if got := len(buildNotifiers(config.DefaultConfig(), false, false)); got != 0 {
		t.Errorf("notifiers = %d, want 0 for default config", got)
	}
}

func TestResolveTimeout(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		want    time.Duration
		wantErr bool
	}{
		{"empty means default", "", 0, false},
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "2m", 2 * time.Minute, false},
		{"garbage", "soon", 0, true},
		{"negative", "-5s", 0, true},
		{"zero", "0s", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTimeout(tt.s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveTimeout(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}
