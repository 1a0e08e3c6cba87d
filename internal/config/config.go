// Package config provides configuration types and defaults for vimg.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/tracing"
)

// Config holds all configuration options for vimg.
type Config struct {
	MonitorFS       bool                         `mapstructure:"monitor_fs"`
	ShutdownTimeout time.Duration                `mapstructure:"shutdown_timeout"`
	Library         LibraryConfig                `mapstructure:"library"`
	StatusBar       StatusBarConfig              `mapstructure:"statusbar"`
	Aliases         map[string]map[string]string `mapstructure:"aliases"`
	Keybindings     map[string]map[string]string `mapstructure:"keybindings"`
	External        ExternalConfig               `mapstructure:"external"`
	Manipulate      ManipulateConfig             `mapstructure:"manipulate"`
	Thumbnail       ThumbnailConfig              `mapstructure:"thumbnail"`
	History         HistoryConfig                `mapstructure:"history"`
	Tracing         tracing.Config               `mapstructure:"tracing"`
}

// LibraryConfig holds library mode options.
type LibraryConfig struct {
	ShowHidden bool `mapstructure:"show_hidden"`
}

// StatusBarConfig holds the status bar texts. Each position maps a mode name
// or "default" to a text with {module} tokens.
type StatusBarConfig struct {
	Show           bool              `mapstructure:"show"`
	MessageTimeout time.Duration     `mapstructure:"message_timeout"`
	Left           map[string]string `mapstructure:"left"`
	Center         map[string]string `mapstructure:"center"`
	Right          map[string]string `mapstructure:"right"`
}

// ExternalConfig holds options of commands run with "!".
type ExternalConfig struct {
	Shell   string `mapstructure:"shell"`
	Workers int    `mapstructure:"workers"`
}

// ManipulateConfig holds options of manipulate mode.
type ManipulateConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// ThumbnailConfig holds options of thumbnail mode.
type ThumbnailConfig struct {
	Large   bool   `mapstructure:"large"`
	Workers int    `mapstructure:"workers"`
	Dir     string `mapstructure:"dir"` // cache base directory, $XDG_CACHE_HOME by default
}

// HistoryConfig holds command history options.
type HistoryConfig struct {
	Limit int    `mapstructure:"limit"`
	Path  string `mapstructure:"path"` // empty derives the path from the config directory
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		MonitorFS:       true,
		ShutdownTimeout: 5 * time.Second,
		StatusBar: StatusBarConfig{
			Show:           true,
			MessageTimeout: 5 * time.Second,
			Left: map[string]string{
				"default":    "{pwd}",
				"image":      "{index}/{total} {basename}",
				"library":    "{library-index} {pwd}",
				"thumbnail":  "{thumbnail-index}/{thumbnail-total} {thumbnail-name}",
				"manipulate": "{manipulation}: {brightness}/{contrast} {processing}",
			},
			Center: map[string]string{
				"default":   "{filesize} {modified}",
				"thumbnail": "{thumbnail-size}",
			},
			Right: map[string]string{
				"default": "{keys}  {mark-count}  {mode}",
			},
		},
		Aliases: map[string]map[string]string{
			"global": {"q": "quit", "e": "open"},
		},
		External:   ExternalConfig{Shell: "/bin/sh", Workers: 4},
		Manipulate: ManipulateConfig{Debounce: 300 * time.Millisecond},
		Thumbnail:  ThumbnailConfig{Large: true, Workers: 4},
		History:    HistoryConfig{Limit: 100},
		Tracing:    tracing.DefaultConfig(),
	}
}

var aliasNamePattern = regexp.MustCompile(`^\S+$`)

// Validate checks the configuration for errors.
func Validate(cfg Config) error {
	if cfg.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must not be negative, got %v", cfg.ShutdownTimeout)
	}
	if cfg.External.Workers < 0 {
		return fmt.Errorf("external.workers must not be negative, got %d", cfg.External.Workers)
	}
	if cfg.Thumbnail.Workers < 0 {
		return fmt.Errorf("thumbnail.workers must not be negative, got %d", cfg.Thumbnail.Workers)
	}
	if cfg.History.Limit < 0 {
		return fmt.Errorf("history.limit must not be negative, got %d", cfg.History.Limit)
	}
	if err := validateModeKeys("aliases", cfg.Aliases); err != nil {
		return err
	}
	if err := validateModeKeys("keybindings", cfg.Keybindings); err != nil {
		return err
	}
	for name, texts := range map[string]map[string]string{
		"statusbar.left":   cfg.StatusBar.Left,
		"statusbar.center": cfg.StatusBar.Center,
		"statusbar.right":  cfg.StatusBar.Right,
	} {
		for key := range texts {
			if key == "default" {
				continue
			}
			if _, err := mode.ByName(key); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	for m, aliases := range cfg.Aliases {
		for name := range aliases {
			if !aliasNamePattern.MatchString(name) {
				return fmt.Errorf("aliases.%s: invalid alias name %q", m, name)
			}
		}
	}
	return ValidateTracing(cfg.Tracing)
}

func validateModeKeys[V any](section string, byMode map[string]V) error {
	for name := range byMode {
		if _, err := mode.ByName(name); err != nil {
			return fmt.Errorf("%s: %w", section, err)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	if t.Exporter != "" {
		switch t.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
		}
	}
	if t.Enabled && t.Exporter == "otlp" && t.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// StatusText returns the text configured for m at one status bar position,
// falling back to "default".
func StatusText(texts map[string]string, m mode.Mode) string {
	if text, ok := texts[m.String()]; ok {
		return text
	}
	return texts["default"]
}

// Dir returns the user configuration directory of vimg.
func Dir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "vimg")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "vimg")
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# vimg configuration

# Reload the library and image list when the working directory changes
monitor_fs: true

# How long quitting waits for running background work
shutdown_timeout: 5s

library:
  show_hidden: false

# Status bar texts per mode. {name} tokens are replaced by status modules,
# run 'vimg modules' to list them. Modes without an entry use "default".
statusbar:
  show: true
  message_timeout: 5s
  left:
    default: "{pwd}"
    image: "{index}/{total} {basename}"
    library: "{library-index} {pwd}"
    thumbnail: "{thumbnail-index}/{thumbnail-total} {thumbnail-name}"
    manipulate: "{manipulation}: {brightness}/{contrast} {processing}"
  center:
    default: "{filesize} {modified}"
    thumbnail: "{thumbnail-size}"
  right:
    default: "{keys}  {mark-count}  {mode}"

# Aliases per mode, "global" applies to image, library and thumbnail mode.
# The alias and unalias commands update this section.
aliases:
  global:
    q: quit
    e: open

# Extra key bindings per mode, added to the defaults.
# Named keys are written in angle brackets, e.g. <ctrl+x> or <enter>.
# keybindings:
#   image:
#     w: write
#     "<ctrl+r>": "!rm %"

# Commands starting with ! run through this shell
external:
  shell: /bin/sh
  workers: 4

manipulate:
  debounce: 300ms

thumbnail:
  large: true   # 256px thumbnails instead of 128px
  workers: 4

history:
  limit: 100
  # path: ~/.config/vimg/history.db

# Command tracing with OpenTelemetry
# tracing:
#   enabled: false
#   exporter: file                 # none, file, stdout, otlp
#   file_path: ~/.config/vimg/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
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
