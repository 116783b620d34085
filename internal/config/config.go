// Package config provides configuration types, defaults, and persistence for backoffice.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"

	"github.com/zjrosen/backoffice/internal/log"
	"github.com/zjrosen/backoffice/internal/tracing"
)

// Config holds all backoffice configuration.
type Config struct {
	API       APIConfig             `mapstructure:"api"`
	Options   OptionsConfig         `mapstructure:"options"`
	Display   DisplayConfig         `mapstructure:"display"`
	Theme     ThemeConfig           `mapstructure:"theme"`
	Tracing   TracingConfig         `mapstructure:"tracing"`
	DevServer DevServerConfig       `mapstructure:"devserver"`
	Forms     map[string]FormConfig `mapstructure:"forms"`
	Keys      KeysConfig            `mapstructure:"keys"`
}

// KeysConfig rebinds form shortcuts. Empty values keep the defaults.
type KeysConfig struct {
	Save   string `mapstructure:"save"`
	Delete string `mapstructure:"delete"`
}

// APIConfig configures the REST client every form submits through.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Retries is the number of attempts for idempotent reads. Writes are never retried.
	Retries int `mapstructure:"retries"`
}

// OptionsConfig controls how select options are cached between form openings.
type OptionsConfig struct {
	// CacheTTL of zero disables caching; every form mount refetches.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// DisplayConfig controls how record lists render numbers.
type DisplayConfig struct {
	Locale   string `mapstructure:"locale"`
	Currency string `mapstructure:"currency"`
}

// ThemeConfig holds all theme customization options.
type ThemeConfig struct {
	// Preset loads a built-in theme as the base (optional).
	// Valid values: "default", "nord", "dracula", "high-contrast"
	Preset string `mapstructure:"preset"`

	// Colors allows overriding individual color tokens.
	// Supports both nested YAML structure and dot notation.
	// Example YAML:
	//   colors:
	//     status:
	//       error: "#FF0000"
	// Or quoted dot notation:
	//   colors:
	//     "status.error": "#FF0000"
	Colors map[string]any `mapstructure:"colors"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			// YAML sometimes produces map[any]any instead of map[string]any
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// TracingConfig holds OpenTelemetry settings for API requests.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/backoffice/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Provider converts the config section into the tracing package's Config.
func (t TracingConfig) Provider(serviceName string) tracing.Config {
	return tracing.Config{
		Enabled:      t.Enabled,
		Exporter:     t.Exporter,
		FilePath:     t.FilePath,
		OTLPEndpoint: t.OTLPEndpoint,
		SampleRate:   t.SampleRate,
		ServiceName:  serviceName,
	}
}

// DevServerConfig configures the local REST backend started by `backoffice devserver`.
type DevServerConfig struct {
	Addr   string `mapstructure:"addr"`
	DBPath string `mapstructure:"db_path"`
	Token  string `mapstructure:"token"`
}

// FormConfig holds per-form overrides keyed by form name.
type FormConfig struct {
	// StayOpen resets the form after a successful create instead of closing it.
	// Nil means use the form's own default.
	StayOpen *bool `mapstructure:"stay_open"`
}

// StayOpen resolves the stay-open setting for a form, falling back to def.
func (c Config) StayOpen(form string, def bool) bool {
	if fc, ok := c.Forms[form]; ok && fc.StayOpen != nil {
		return *fc.StayOpen
	}
	return def
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/backoffice/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "backoffice", "traces", "traces.jsonl")
}

// DefaultDBPath returns the default SQLite file for the dev server.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "backoffice.db"
	}
	return filepath.Join(home, ".config", "backoffice", "devserver.db")
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8484",
			Timeout: 15 * time.Second,
			Retries: 3,
		},
		Options: OptionsConfig{
			CacheTTL: 5 * time.Minute,
		},
		Display: DisplayConfig{
			Locale:   "en-US",
			Currency: "$",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     DefaultTracesFilePath(),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		DevServer: DevServerConfig{
			Addr:   "localhost:8484",
			DBPath: DefaultDBPath(),
		},
	}
}

// Validate checks every section and returns the first problem found.
func (c Config) Validate() error {
	if err := ValidateAPI(c.API); err != nil {
		return err
	}
	if err := ValidateOptions(c.Options); err != nil {
		return err
	}
	if err := ValidateDisplay(c.Display); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateAPI checks the API client section.
func ValidateAPI(api APIConfig) error {
	if api.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(api.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", api.BaseURL)
	}
	if api.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", api.Timeout)
	}
	if api.Retries < 0 || api.Retries > 10 {
		return fmt.Errorf("api.retries must be between 0 and 10, got %d", api.Retries)
	}
	return nil
}

// ValidateOptions checks the option cache section.
func ValidateOptions(opts OptionsConfig) error {
	if opts.CacheTTL < 0 {
		return fmt.Errorf("options.cache_ttl must not be negative, got %s", opts.CacheTTL)
	}
	return nil
}

// ValidateDisplay checks that the locale is a well-formed BCP 47 tag.
func ValidateDisplay(d DisplayConfig) error {
	if d.Locale == "" {
		return nil
	}
	if _, err := language.Parse(d.Locale); err != nil {
		return fmt.Errorf("display.locale %q is not a valid language tag: %w", d.Locale, err)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Path requirements only matter when tracing is on.
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default configuration as a commented YAML string.
func DefaultConfigTemplate() string {
	return `# Backoffice Configuration

# REST API every form submits to
api:
  base_url: http://localhost:8484
  # token: secret          # Sent as "Authorization: Bearer <token>"
  timeout: 15s
  retries: 3               # Attempts for reads; writes are never retried

# Select options (employees, departments) are cached between form openings
options:
  cache_ttl: 5m            # 0 disables the cache

# How money columns render in record lists
display:
  locale: en-US
  currency: "$"

# Theme configuration
theme:
  # preset: nord
  #
  # Available presets:
  #   default        - Default backoffice theme
  #   nord           - Arctic, north-bluish palette
  #   dracula        - Dark theme with vibrant colors
  #   high-contrast  - High contrast for accessibility
  #
  # Override specific colors (works with or without preset):
  # colors:
  #   status.error: "#FF0000"
  #   button.primary.bg: "#7D56F4"

# Per-form behaviour
forms:
  markup:
    stay_open: true        # Reset after create instead of closing

# Form shortcuts
keys:
  save: ctrl+s
  delete: ctrl+d

# Local REST backend started by 'backoffice devserver'
devserver:
  addr: localhost:8484
  # db_path: ~/.config/backoffice/devserver.db
  # token: secret

# OpenTelemetry spans for API requests
tracing:
  enabled: false
  exporter: file           # none, file, stdout, otlp
  # file_path: ~/.config/backoffice/traces/traces.jsonl
  # otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file with default settings.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
