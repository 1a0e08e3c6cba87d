package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/vimg/internal/mode"
)

func TestDefaults_AreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(DefaultConfigTemplate())))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	defaults := Defaults()
	require.Equal(t, defaults.MonitorFS, cfg.MonitorFS)
	require.Equal(t, defaults.ShutdownTimeout, cfg.ShutdownTimeout)
	require.Equal(t, defaults.StatusBar, cfg.StatusBar)
	require.Equal(t, defaults.Aliases, cfg.Aliases)
	require.Equal(t, defaults.External, cfg.External)
	require.Equal(t, defaults.Manipulate, cfg.Manipulate)
	require.Equal(t, defaults.Thumbnail, cfg.Thumbnail)
	require.Equal(t, defaults.History, cfg.History)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "negative shutdown timeout",
			modify:  func(c *Config) { c.ShutdownTimeout = -time.Second },
			wantErr: "shutdown_timeout",
		},
		{
			name:    "negative workers",
			modify:  func(c *Config) { c.Thumbnail.Workers = -1 },
			wantErr: "thumbnail.workers",
		},
		{
			name:    "unknown alias mode",
			modify:  func(c *Config) { c.Aliases["nope"] = map[string]string{"a": "b"} },
			wantErr: "aliases",
		},
		{
			name:    "alias name with space",
			modify:  func(c *Config) { c.Aliases["image"] = map[string]string{"two words": "next"} },
			wantErr: "invalid alias name",
		},
		{
			name:    "unknown keybinding mode",
			modify:  func(c *Config) { c.Keybindings = map[string]map[string]string{"nope": {}} },
			wantErr: "keybindings",
		},
		{
			name:    "unknown status bar mode",
			modify:  func(c *Config) { c.StatusBar.Left["nope"] = "{pwd}" },
			wantErr: "statusbar.left",
		},
		{
			name:    "sample rate out of range",
			modify:  func(c *Config) { c.Tracing.SampleRate = 2 },
			wantErr: "sample_rate",
		},
		{
			name:    "unknown exporter",
			modify:  func(c *Config) { c.Tracing.Exporter = "kafka" },
			wantErr: "tracing.exporter",
		},
		{
			name: "otlp without endpoint",
			modify: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Exporter = "otlp"
				c.Tracing.OTLPEndpoint = ""
			},
			wantErr: "otlp_endpoint",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStatusText(t *testing.T) {
	texts := Defaults().StatusBar.Left
	require.Equal(t, "{index}/{total} {basename}", StatusText(texts, mode.Image))
	require.Equal(t, "{pwd}", StatusText(texts, mode.Command))
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}

func TestSaveAliases_PreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	aliases := map[string]map[string]string{
		"global": {"q": "quit"},
		"image":  {"w": "write"},
	}
	require.NoError(t, SaveAliases(path, aliases))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Reload the library and image list")

	var parsed struct {
		MonitorFS bool                         `yaml:"monitor_fs"`
		Aliases   map[string]map[string]string `yaml:"aliases"`
	}
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	require.True(t, parsed.MonitorFS)
	require.Equal(t, aliases, parsed.Aliases)
}

func TestSaveAliases_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir", "config.yaml")
	require.NoError(t, SaveAliases(path, map[string]map[string]string{"global": {"x": "next"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "aliases:\n  global:\n    x: next\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}

func TestSaveKeybindings_AppendsSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("monitor_fs: false\n"), 0o600))

	require.NoError(t, SaveKeybindings(path, map[string]map[string]string{"image": {"w": "write"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "monitor_fs: false\nkeybindings:\n  image:\n    w: write\n", string(data))
}

func TestSave_RejectsNonMappingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))
	require.Error(t, SaveAliases(path, nil))
}

func TestLoadCaseSensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "aliases:\n  image:\n    N: next\nkeybindings:\n  image:\n    G: goto -1\n    g: goto 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := Defaults()
	require.NoError(t, LoadCaseSensitive(path, &cfg))
	require.Equal(t, map[string]map[string]string{"image": {"N": "next"}}, cfg.Aliases)
	require.Equal(t, "goto -1", cfg.Keybindings["image"]["G"])
	require.Equal(t, "goto 1", cfg.Keybindings["image"]["g"])

	missing := Defaults()
	require.NoError(t, LoadCaseSensitive(filepath.Join(t.TempDir(), "none.yaml"), &missing))
	require.Equal(t, Defaults().Aliases, missing.Aliases)
}
