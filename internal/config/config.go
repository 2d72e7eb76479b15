// Package config loads and validates the declarative engine configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
	"github.com/alnah/go-doc2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrNoEngines       = errors.New("no engines configured")
	ErrUnknownEngine   = errors.New("unknown engine name")
	ErrUnknownFormat   = errors.New("unknown format")
	ErrInvalidTimeout  = errors.New("invalid timeout")
	ErrDuplicateEngine = errors.New("duplicate engine name")
	ErrInvalidURL      = errors.New("invalid url")
)

// Known engine names. The engine set is closed: configuration selects and
// orders engines, it cannot invent new ones.
const (
	EnginePandoc   = "pandoc"
	EngineRemote   = "remote-service"
	EngineChromium = "chromium"
)

// knownEngines guards against runtime string dispatch errors.
var knownEngines = map[string]bool{
	EnginePandoc:   true,
	EngineRemote:   true,
	EngineChromium: true,
}

// knownFormats lists the format names accepted in engine applicability lists.
var knownFormats = map[string]bool{
	"markdown": true,
	"latex":    true,
}

// Config holds all configuration for the conversion pipeline.
// Consumed read-only at startup.
type Config struct {
	Engines []EngineConfig `yaml:"engines"`
	Output  OutputConfig   `yaml:"output"`
	Refine  RefineConfig   `yaml:"refine"`
	Email   EmailConfig    `yaml:"email"`
	Webhook WebhookConfig  `yaml:"webhook"`
	Log     LogConfig      `yaml:"log"`
}

// EngineConfig describes one configured engine: identity, applicability,
// ordering, and engine-specific options.
type EngineConfig struct {
	Name     string   `yaml:"name"`
	Formats  []string `yaml:"formats"`  // empty = engine defaults
	Priority int      `yaml:"priority"` // lower = tried earlier
	Repeat   int      `yaml:"repeat"`   // extra invocations on failure
	Timeout  string   `yaml:"timeout"`  // e.g. "30s", "2m"

	// Local-toolchain options.
	Command   string   `yaml:"command"`
	PDFEngine string   `yaml:"pdfEngine"`
	ExtraArgs []string `yaml:"extraArgs"`

	// Remote-service options.
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"apiKey"`
	ProjectID string `yaml:"projectId"`
}

// TimeoutDuration parses the configured timeout; zero means engine default.
func (e *EngineConfig) TimeoutDuration() (time.Duration, error) {
	if e.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, e.Timeout)
	}
	return d, nil
}

// OutputConfig defines artifact destination options.
type OutputConfig struct {
	Directory        string `yaml:"directory"`        // empty = next to input
	FilenameTemplate string `yaml:"filenameTemplate"` // {name}, {timestamp}
}

// RefineConfig defines writing-refinement preprocessor options. Refinement
// rewrites a document's prose in a journal style before conversion.
type RefineConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // empty = provider default
	APIKey      string  `yaml:"apiKey"`
	Model       string  `yaml:"model"`
	Style       string  `yaml:"style"` // formal, ieee, acm, springer, elsevier, nature
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
}

// EmailConfig defines SMTP distribution options.
type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// WebhookConfig defines downstream automation trigger options.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	APIKey  string `yaml:"apiKey"`
}

// LogConfig defines structured log sink options.
type LogConfig struct {
	File  string `yaml:"file"`  // empty = stderr only
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns a working local setup: pandoc first, chromium as
// Markdown fallback, notifications disabled.
func DefaultConfig() *Config {
	return &Config{
		Engines: []EngineConfig{
			{Name: EnginePandoc, Priority: 1, Command: "pandoc"},
			{Name: EngineChromium, Priority: 2},
		},
	}
}

// Validate checks engine names, formats, and timeouts.
func (c *Config) Validate() error {
	if len(c.Engines) == 0 {
		return ErrNoEngines
	}

	seen := make(map[string]bool, len(c.Engines))
	for _, e := range c.Engines {
		if !knownEngines[e.Name] {
			return fmt.Errorf("%w: %q", ErrUnknownEngine, e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateEngine, e.Name)
		}
		seen[e.Name] = true

		for _, f := range e.Formats {
			if !knownFormats[strings.ToLower(f)] {
				return fmt.Errorf("%w: %q (engine %s)", ErrUnknownFormat, f, e.Name)
			}
		}

		if _, err := e.TimeoutDuration(); err != nil {
			return fmt.Errorf("engine %s: %w", e.Name, err)
		}

		if e.Name == EngineRemote && e.Endpoint != "" && !fileutil.IsURL(e.Endpoint) {
			return fmt.Errorf("%w: endpoint %q (engine %s)", ErrInvalidURL, e.Endpoint, e.Name)
		}
	}

	if c.Refine.Enabled && c.Refine.Endpoint != "" && !fileutil.IsURL(c.Refine.Endpoint) {
		return fmt.Errorf("%w: refine endpoint %q", ErrInvalidURL, c.Refine.Endpoint)
	}

	if c.Webhook.Enabled && !fileutil.IsURL(c.Webhook.URL) {
		return fmt.Errorf("%w: webhook url %q", ErrInvalidURL, c.Webhook.URL)
	}

	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise it's searched in standard locations. No silent fallback: a
// missing file is an error.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-doc2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-doc2pdf", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
