package main

import (
	"fmt"
	"log/slog"
	"time"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/config"
)

// buildEngines instantiates the closed engine set from configuration.
// timeoutOverride, when positive, replaces every configured timeout
// (--timeout flag).
func buildEngines(cfg *config.Config, timeoutOverride time.Duration) ([]doc2pdf.EngineRegistration, error) {
	registrations := make([]doc2pdf.EngineRegistration, 0, len(cfg.Engines))

	for _, ec := range cfg.Engines {
		timeout, err := ec.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		if timeoutOverride > 0 {
			timeout = timeoutOverride
		}

		engine, err := buildEngine(ec, timeout)
		if err != nil {
			return nil, err
		}

		registrations = append(registrations, doc2pdf.EngineRegistration{
			Engine:   engine,
			Priority: ec.Priority,
			Repeat:   ec.Repeat,
		})
	}

	return registrations, nil
}

// buildEngine maps one EngineConfig to its adapter.
func buildEngine(ec config.EngineConfig, timeout time.Duration) (doc2pdf.Engine, error) {
	formats := make([]doc2pdf.Format, 0, len(ec.Formats))
	for _, f := range ec.Formats {
		formats = append(formats, doc2pdf.Format(f))
	}

	switch ec.Name {
	case config.EnginePandoc:
		return doc2pdf.NewPandocEngine(doc2pdf.PandocOptions{
			Command:   ec.Command,
			PDFEngine: ec.PDFEngine,
			ExtraArgs: ec.ExtraArgs,
			Timeout:   timeout,
			Formats:   formats,
		}), nil
	case config.EngineRemote:
		return doc2pdf.NewRemoteEngine(doc2pdf.RemoteOptions{
			Endpoint:  ec.Endpoint,
			APIKey:    ec.APIKey,
			ProjectID: ec.ProjectID,
			Timeout:   timeout,
			Formats:   formats,
		}), nil
	case config.EngineChromium:
		return doc2pdf.NewChromiumEngine(doc2pdf.ChromiumOptions{
			Timeout: timeout,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownEngine, ec.Name)
	}
}

// buildRefiner assembles the optional writing-refinement preprocessor.
// Refinement without an API key is skipped with a warning, never an error.
func buildRefiner(cfg *config.Config, flags *cliFlags, logger *slog.Logger) doc2pdf.Refiner {
	if !cfg.Refine.Enabled && !flags.refine {
		return nil
	}
	if cfg.Refine.APIKey == "" {
		logger.Warn("refinement api key not configured, skipping writing refinement")
		return nil
	}

	style := cfg.Refine.Style
	if flags.style != "" {
		style = flags.style
	}

	return doc2pdf.NewWritingRefiner(doc2pdf.RefineOptions{
		Endpoint:    cfg.Refine.Endpoint,
		APIKey:      cfg.Refine.APIKey,
		Model:       cfg.Refine.Model,
		Style:       style,
		Temperature: cfg.Refine.Temperature,
		MaxTokens:   cfg.Refine.MaxTokens,
	})
}

// buildNotifiers assembles the enabled notification collaborators.
func buildNotifiers(cfg *config.Config, noEmail, noWebhook bool) []doc2pdf.Notifier {
	var notifiers []doc2pdf.Notifier

	if cfg.Email.Enabled && !noEmail {
		notifiers = append(notifiers, doc2pdf.NewEmailNotifier(doc2pdf.EmailOptions{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			To:       cfg.Email.To,
		}))
	}

	if cfg.Webhook.Enabled && !noWebhook {
		notifiers = append(notifiers, doc2pdf.NewWebhookNotifier(doc2pdf.WebhookOptions{
			URL:    cfg.Webhook.URL,
			APIKey: cfg.Webhook.APIKey,
		}))
	}

	return notifiers
}
