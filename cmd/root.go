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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/vimg/internal/app"
	"github.com/zjrosen/vimg/internal/config"
	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/tracing"
)

func init() {
	// Query the terminal background before the program starts so the OSC 11
	// response does not race with Bubble Tea's input loop.
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is looked up relative to the working directory first.
const localConfigPath = ".vimg/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	cfgPath   string
	debugFlag bool
	logFile   string
	noMonitor bool
	cfg       config.Config
)

// tracerStop bounds flushing spans on exit.
const tracerStop = 2 * time.Second

var rootCmd = &cobra.Command{
	Use:   "vimg [PATH...]",
	Short: "A modal terminal image viewer",
	Long: `vimg is a keyboard driven image viewer with vim-like modes.

Paths may be images or a directory. Without paths the current directory
is opened in the library.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE:              runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.vimg/config.yaml or ~/.config/vimg/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write debug logs (VIMG_DEBUG=1 works too)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"log file path (default: debug.log)")
	rootCmd.Flags().BoolVar(&noMonitor, "no-monitor", false,
		"do not watch the working directory for changes")
}

func initConfig(_ *cobra.Command, _ []string) error {
	loaded, path, err := loadConfig(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	cfgPath = path
	return nil
}

// loadConfig reads the configuration into a Config. An explicit path is used
// as is. Otherwise ./.vimg/config.yaml is tried, then the user config
// directory, where a default config is written when none exists.
// It returns the path of the file read, empty when none was.
func loadConfig(v *viper.Viper, explicit string) (config.Config, string, error) {
	setDefaults(v)

	switch {
	case explicit != "":
		v.SetConfigFile(explicit)
	case fileExists(localConfigPath):
		v.SetConfigFile(localConfigPath)
	default:
		v.AddConfigPath(config.Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config.Config{}, "", fmt.Errorf("reading config: %w", err)
		}
		defaultPath := filepath.Join(config.Dir(), "config.yaml")
		if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
			v.SetConfigFile(defaultPath)
			_ = v.ReadInConfig()
		}
		// If write fails, continue with defaults and without saving
	}

	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	path := v.ConfigFileUsed()
	if path != "" {
		if err := config.LoadCaseSensitive(path, &c); err != nil {
			return config.Config{}, "", err
		}
	}
	if err := config.Validate(c); err != nil {
		return config.Config{}, "", fmt.Errorf("invalid configuration: %w", err)
	}
	return c, path, nil
}

func setDefaults(v *viper.Viper) {
	d := config.Defaults()
	v.SetDefault("monitor_fs", d.MonitorFS)
	v.SetDefault("shutdown_timeout", d.ShutdownTimeout)
	v.SetDefault("library.show_hidden", d.Library.ShowHidden)
	v.SetDefault("statusbar.show", d.StatusBar.Show)
	v.SetDefault("statusbar.message_timeout", d.StatusBar.MessageTimeout)
	v.SetDefault("statusbar.left", d.StatusBar.Left)
	v.SetDefault("statusbar.center", d.StatusBar.Center)
	v.SetDefault("statusbar.right", d.StatusBar.Right)
	v.SetDefault("aliases", d.Aliases)
	v.SetDefault("external.shell", d.External.Shell)
	v.SetDefault("external.workers", d.External.Workers)
	v.SetDefault("manipulate.debounce", d.Manipulate.Debounce)
	v.SetDefault("thumbnail.large", d.Thumbnail.Large)
	v.SetDefault("thumbnail.workers", d.Thumbnail.Workers)
	v.SetDefault("history.limit", d.History.Limit)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// initLogging directs log output to a file when debugging or when a log
// file was given. The returned cleanup is never nil.
func initLogging() (func(), error) {
	debug := debugFlag || os.Getenv("VIMG_DEBUG") != ""
	if !debug && logFile == "" {
		return func() {}, nil
	}

	path := logFile
	if path == "" {
		path = "debug.log"
	}
	if debug {
		cleanup, err := log.InitWithTeaLog(path, "vimg")
		if err != nil {
			return nil, fmt.Errorf("initializing logging: %w", err)
		}
		log.Info(log.CatConfig, "vimg starting", "debug", true, "logPath", path)
		return cleanup, nil
	}

	cleanup, err := log.Init(path)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.SetMinLevel(log.LevelInfo)
	return cleanup, nil
}

func runApp(_ *cobra.Command, args []string) error {
	cleanup, err := initLogging()
	if err != nil {
		return err
	}
	defer cleanup()

	if noMonitor {
		cfg.MonitorFS = false
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracerStop)
		defer cancel()
		if shutdownErr := provider.Shutdown(ctx); shutdownErr != nil {
			log.ErrorErr(log.CatConfig, "Tracing shutdown failed", shutdownErr)
		}
	}()

	model, err := app.New(app.Options{
		Config:     cfg,
		ConfigPath: cfgPath,
		Paths:      args,
		Tracer:     provider.Tracer(),
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()

	// Stop workers, the watcher and the history store
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
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
