package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// loadConfigFromYAML writes yaml to a temp file and loads it the way cmd/root.go does.
func loadConfigFromYAML(t *testing.T, yaml string) Config {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))

	// "::" keeps dotted theme tokens like "status.error" as single keys.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 3, cfg.API.Retries)
	require.Equal(t, 15*time.Second, cfg.API.Timeout)
	require.Equal(t, "file", cfg.Tracing.Exporter)
}

func TestDefaultConfigTemplate_LoadsAndValidates(t *testing.T) {
	cfg := loadConfigFromYAML(t, DefaultConfigTemplate())

	require.NoError(t, cfg.Validate())
	require.Equal(t, "http://localhost:8484", cfg.API.BaseURL)
	require.Equal(t, 5*time.Minute, cfg.Options.CacheTTL)
	require.Equal(t, "en-US", cfg.Display.Locale)
	require.True(t, cfg.StayOpen("markup", false))
	require.False(t, cfg.StayOpen("contact", false))
}

func TestLoad_Durations(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
api:
  base_url: https://api.example.com
  timeout: 2s
options:
  cache_ttl: 0s
`)
	require.Equal(t, 2*time.Second, cfg.API.Timeout)
	require.Equal(t, time.Duration(0), cfg.Options.CacheTTL)
	require.Equal(t, 3, cfg.API.Retries, "unset keys keep defaults")
}

func TestStayOpen_ExplicitFalseOverridesFormDefault(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
forms:
  markup:
    stay_open: false
`)
	require.False(t, cfg.StayOpen("markup", true))
	require.True(t, cfg.StayOpen("cleaning", true))
}

func TestThemeColors_NestedAndDotted(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
theme:
  preset: nord
  colors:
    status:
      error: "#FF0000"
    "button.primary.bg": "#00FF00"
`)
	require.Equal(t, "nord", cfg.Theme.Preset)
	require.Equal(t, map[string]string{
		"status.error":      "#FF0000",
		"button.primary.bg": "#00FF00",
	}, cfg.Theme.FlattenedColors())
}

func TestFlattenColors_MapAnyAny(t *testing.T) {
	th := ThemeConfig{Colors: map[string]any{"text": map[any]any{"muted": "#777777"}}}
	require.Equal(t, map[string]string{"text.muted": "#777777"}, th.FlattenedColors())
}

func TestValidateAPI(t *testing.T) {
	tests := []struct {
		name    string
		api     APIConfig
		wantErr string
	}{
		{"ok", APIConfig{BaseURL: "http://localhost:8484", Retries: 3}, ""},
		{"missing url", APIConfig{}, "api.base_url is required"},
		{"no scheme", APIConfig{BaseURL: "localhost:8484"}, "api.base_url must be an http(s) URL"},
		{"negative timeout", APIConfig{BaseURL: "https://x.io", Timeout: -time.Second}, "api.timeout must not be negative"},
		{"too many retries", APIConfig{BaseURL: "https://x.io", Retries: 11}, "api.retries must be between 0 and 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPI(tt.api)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateOptions_NegativeTTL(t *testing.T) {
	require.ErrorContains(t, ValidateOptions(OptionsConfig{CacheTTL: -time.Minute}), "options.cache_ttl")
	require.NoError(t, ValidateOptions(OptionsConfig{}))
}

func TestValidateDisplay(t *testing.T) {
	require.NoError(t, ValidateDisplay(DisplayConfig{Locale: "pt-PT"}))
	require.NoError(t, ValidateDisplay(DisplayConfig{}))
	require.ErrorContains(t, ValidateDisplay(DisplayConfig{Locale: "not a locale!"}), "display.locale")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		tracing TracingConfig
		wantErr string
	}{
		{"disabled defaults", TracingConfig{}, ""},
		{"sample rate low", TracingConfig{SampleRate: -0.1}, "tracing.sample_rate must be between 0.0 and 1.0"},
		{"sample rate high", TracingConfig{SampleRate: 1.5}, "tracing.sample_rate must be between 0.0 and 1.0"},
		{"bad exporter", TracingConfig{Exporter: "jaeger"}, `tracing.exporter must be "none", "file", "stdout", or "otlp", got "jaeger"`},
		{"file without path", TracingConfig{Enabled: true, Exporter: "file"}, "tracing.file_path is required"},
		{"otlp without endpoint", TracingConfig{Enabled: true, Exporter: "otlp"}, "tracing.otlp_endpoint is required"},
		{"disabled file without path", TracingConfig{Exporter: "file"}, ""},
		{"stdout", TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 0.5}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.tracing)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTracingConfig_Provider(t *testing.T) {
	tc := TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 0.25}
	pc := tc.Provider("backoffice")
	require.True(t, pc.Enabled)
	require.Equal(t, "stdout", pc.Exporter)
	require.Equal(t, 0.25, pc.SampleRate)
	require.Equal(t, "backoffice", pc.ServiceName)
}

func TestWriteDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme:\n  preset: nord\n  colors:\n    \"status.error\": \"#FF0000\"\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "nord", cfg.Theme.Preset)
	require.Equal(t, map[string]string{"status.error": "#FF0000"}, cfg.Theme.FlattenedColors())
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracing:\n  sample_rate: 2\n"), 0o600))

	_, err := LoadFile(path)
	require.ErrorContains(t, err, "tracing.sample_rate")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "reading config")
}
