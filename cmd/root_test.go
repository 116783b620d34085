package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/forms"
	"github.com/zjrosen/backoffice/internal/keys"
)

// parseRoot parses args into the root flags and resets them after the test.
func parseRoot(t *testing.T, args ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, name := range []string{"config", "api", "token"} {
			if f := rootCmd.Flags().Lookup(name); f != nil {
				_ = f.Value.Set("")
				f.Changed = false
			}
		}
		cfgFile = ""
		keys.ResetForTesting()
	})
	require.NoError(t, rootCmd.ParseFlags(args))
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://api.internal:9000
  retries: 2
display:
  locale: de-DE
  currency: "€"
keys:
  save: ctrl+w
forms:
  contact:
    stay_open: true
theme:
  colors:
    "status.error": "#FF0000"
`)
	parseRoot(t, "--config", path)

	require.NoError(t, loadConfig(rootCmd, nil))
	require.Equal(t, path, cfgUsed)
	require.Equal(t, "http://api.internal:9000", cfg.API.BaseURL)
	require.Equal(t, 2, cfg.API.Retries)
	require.Equal(t, "de-DE", cfg.Display.Locale)
	require.True(t, cfg.StayOpen("contact", false))
	require.Equal(t, "#FF0000", cfg.Theme.FlattenedColors()["status.error"])
	require.Equal(t, []string{"ctrl+w"}, keys.Form.Save.Keys())
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "api:\n  base_url: http://api.internal:9000\n")
	parseRoot(t, "--config", path, "--api", "http://localhost:7000", "--token", "s3cret")

	require.NoError(t, loadConfig(rootCmd, nil))
	require.Equal(t, "http://localhost:7000", cfg.API.BaseURL)
	require.Equal(t, "s3cret", cfg.API.Token)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, "tracing:\n  sample_rate: 3\n")
	parseRoot(t, "--config", path)

	err := loadConfig(rootCmd, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sample_rate")
}

func TestLoadConfig_BadFlagURL(t *testing.T) {
	path := writeConfig(t, "display:\n  locale: en-US\n")
	parseRoot(t, "--config", path, "--api", "not a url")

	err := loadConfig(rootCmd, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "api.base_url")
}

func TestSelectForms(t *testing.T) {
	all := forms.All(func(string) form.Adapter { return nil })

	got, err := selectForms(all, nil)
	require.NoError(t, err)
	require.Len(t, got, len(all))

	got, err = selectForms(all, []string{"ledger", "contact"})
	require.NoError(t, err)
	require.Equal(t, "ledger", got[0].Name)
	require.Equal(t, "contact", got[1].Name)

	_, err = selectForms(all, []string{"payroll"})
	require.ErrorContains(t, err, `unknown form "payroll"`)
	require.ErrorContains(t, err, "cleaning, contact")
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["devserver"])
	require.True(t, names["forms"])
}
