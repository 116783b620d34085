package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/backoffice/internal/api"
	"github.com/zjrosen/backoffice/internal/app"
	"github.com/zjrosen/backoffice/internal/config"
	"github.com/zjrosen/backoffice/internal/keys"
	"github.com/zjrosen/backoffice/internal/log"
	"github.com/zjrosen/backoffice/internal/tracing"
	"github.com/zjrosen/backoffice/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".backoffice/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
	// cfgUsed is the config file that was read, if any.
	cfgUsed string
	v       = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "A terminal back office for contacts, cleanings and cash",
	Long: `A terminal user interface for entering and editing back office records.
Every form validates locally and submits to a REST API.`,
	Version:           version,
	PersistentPreRunE: loadConfig,
	RunE:              runApp,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/backoffice/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log and enable the log overlay (ctrl+x)")
	rootCmd.PersistentFlags().String("api", "", "REST API base URL (overrides config)")
	rootCmd.PersistentFlags().String("token", "", "API bearer token (overrides config)")

	_ = v.BindEnv("api::token", "BACKOFFICE_TOKEN")
}

// loadConfig resolves the config file and decodes it into cfg.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .backoffice/config.yaml (current directory)
		// 2. ~/.config/backoffice/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			v.AddConfigPath(filepath.Join(home, ".config", "backoffice"))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		// No config file found anywhere - create the default in the user dir.
		if home, herr := os.UserHomeDir(); herr == nil {
			defaultPath := filepath.Join(home, ".config", "backoffice", "config.yaml")
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				v.SetConfigFile(defaultPath)
				_ = v.ReadInConfig()
			}
		}
	}
	cfgUsed = v.ConfigFileUsed()

	decoded, err := config.Decode(v)
	if err != nil {
		return err
	}
	cfg = decoded

	flags := cmd.Flags()
	if flags.Changed("api") {
		cfg.API.BaseURL, _ = flags.GetString("api")
	}
	if flags.Changed("token") {
		cfg.API.Token, _ = flags.GetString("token")
	}
	if err := config.ValidateAPI(cfg.API); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	keys.ApplyConfig(cfg.Keys.Save, cfg.Keys.Delete)
	if err := styles.ApplyTheme(styles.ThemeConfig{Preset: cfg.Theme.Preset, Colors: cfg.Theme.FlattenedColors()}); err != nil {
		return fmt.Errorf("applying theme: %w", err)
	}
	return nil
}

// initDebugLog starts file logging when --debug or BACKOFFICE_DEBUG is set.
func initDebugLog(prefix string) (bool, func(), error) {
	debug := debugFlag || os.Getenv("BACKOFFICE_DEBUG") != ""
	if !debug {
		return false, func() {}, nil
	}
	logPath := os.Getenv("BACKOFFICE_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	level := log.LevelDebug
	if raw := os.Getenv("BACKOFFICE_LOG_LEVEL"); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			return false, nil, fmt.Errorf("BACKOFFICE_LOG_LEVEL: %w", err)
		}
		level = parsed
	}
	cleanup, err := log.InitWithTeaLog(logPath, prefix, level)
	if err != nil {
		return false, nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "backoffice starting", "debug", true, "logPath", logPath, "config", cfgUsed)
	return true, cleanup, nil
}

// newTracing starts the trace provider for service.
func newTracing(service string) (*tracing.Provider, func(), error) {
	provider, err := tracing.NewProvider(cfg.Tracing.Provider(service))
	if err != nil {
		return nil, nil, fmt.Errorf("starting tracing: %w", err)
	}
	return provider, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatConfig, "tracing shutdown failed", err)
		}
	}, nil
}

// newClient builds the API client every form and list goes through.
func newClient(provider *tracing.Provider) *api.Client {
	opts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.Retries),
		api.WithTracer(provider.Tracer()),
	}
	if cfg.API.Token != "" {
		opts = append(opts, api.WithToken(cfg.API.Token))
	}
	return api.New(cfg.API.BaseURL, opts...)
}

func runApp(_ *cobra.Command, _ []string) error {
	debug, cleanup, err := initDebugLog("backoffice")
	if err != nil {
		return err
	}
	defer cleanup()

	provider, shutdown, err := newTracing(tracing.DefaultServiceName)
	if err != nil {
		return err
	}
	defer shutdown()

	zone.NewGlobal()

	deps := app.Remote(cfg, newClient(provider))
	deps.ConfigPath = cfgUsed
	deps.Debug = debug

	model := app.New(deps)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(ver string) {
	version = ver
	rootCmd.Version = ver
}
