package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Hotkey   HotkeyConfig  `yaml:"hotkey" toml:"hotkey"`
	Audio    AudioConfig   `yaml:"audio" toml:"audio"`
	Inject   InjectConfig  `yaml:"inject" toml:"inject"`
	Output   OutputConfig  `yaml:"output" toml:"output"`
	Watch    WatchConfig   `yaml:"watch" toml:"watch"`
	History  HistoryConfig `yaml:"history" toml:"history"`
	Server   ServerConfig  `yaml:"server" toml:"server"`
	LogLevel string        `yaml:"log_level" toml:"log_level"`
}

// HotkeyConfig holds hotkey-related settings.
type HotkeyConfig struct {
	Keys []string `yaml:"keys" toml:"keys"`
	Mode string   `yaml:"mode" toml:"mode"` // "hold" or "toggle"
}

// AudioConfig holds microphone capture settings.
type AudioConfig struct {
	SampleRate  uint32  `yaml:"sample_rate" toml:"sample_rate"`
	Channels    uint32  `yaml:"channels" toml:"channels"`
	MinDuration float64 `yaml:"min_duration" toml:"min_duration"` // seconds; shorter captures are skipped
}

// InjectConfig holds text injection settings.
type InjectConfig struct {
	Method string `yaml:"method" toml:"method"` // "type", "paste" or "none"
}

// OutputConfig controls how transcriptions are printed.
type OutputConfig struct {
	Format   string `yaml:"format" toml:"format"`     // "text" or "table"
	Collapse bool   `yaml:"collapse" toml:"collapse"` // merge repeated consecutive symbols
}

// WatchConfig holds drop-folder settings.
type WatchConfig struct {
	Extensions []string `yaml:"extensions" toml:"extensions"`
}

// HistoryConfig controls the transcription history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr" toml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb" toml:"max_upload_mb"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sargam-writer")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultDataDir returns the directory for the history database and the
// listen lock file.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "sargam-writer")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Keys: []string{"ctrl", "shift", "s"},
			Mode: "hold",
		},
		Audio: AudioConfig{
			SampleRate:  44100,
			Channels:    1,
			MinDuration: 0.5,
		},
		Inject: InjectConfig{
			Method: "type",
		},
		Output: OutputConfig{
			Format: "text",
		},
		Watch: WatchConfig{
			Extensions: []string{".wav", ".mp3"},
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(DefaultDataDir(), "history.db"),
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8750",
			AllowedOrigins: []string{"*"},
			MaxUploadMB:    32,
		},
		LogLevel: "info",
	}
}

// Load reads and parses a config file. Files ending in .toml are read as
// TOML, anything else as YAML. Missing fields are filled with defaults.
func Load(path string) (*Config, error) {
	path = expandTilde(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.History.Path = expandTilde(cfg.History.Path)

	for i, ext := range cfg.Watch.Extensions {
		cfg.Watch.Extensions[i] = normalizeExt(ext)
	}

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if len(c.Hotkey.Keys) == 0 {
		return fmt.Errorf("hotkey.keys must not be empty")
	}

	switch c.Hotkey.Mode {
	case "hold", "toggle":
	default:
		return fmt.Errorf("hotkey.mode must be \"hold\" or \"toggle\", got %q", c.Hotkey.Mode)
	}

	if c.Audio.SampleRate == 0 {
		return fmt.Errorf("audio.sample_rate must be > 0")
	}

	if c.Audio.Channels == 0 {
		return fmt.Errorf("audio.channels must be > 0")
	}

	if c.Audio.MinDuration < 0 {
		return fmt.Errorf("audio.min_duration must be >= 0, got %g", c.Audio.MinDuration)
	}

	switch c.Inject.Method {
	case "type", "paste", "none":
	default:
		return fmt.Errorf("inject.method must be \"type\", \"paste\" or \"none\", got %q", c.Inject.Method)
	}

	switch c.Output.Format {
	case "text", "table":
	default:
		return fmt.Errorf("output.format must be \"text\" or \"table\", got %q", c.Output.Format)
	}

	if len(c.Watch.Extensions) == 0 {
		return fmt.Errorf("watch.extensions must not be empty")
	}
	for _, ext := range c.Watch.Extensions {
		switch normalizeExt(ext) {
		case ".wav", ".mp3":
		default:
			return fmt.Errorf("watch.extensions: unsupported extension %q (supported: .wav, .mp3)", ext)
		}
	}

	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path must be set when history is enabled")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}

	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be > 0, got %d", c.Server.MaxUploadMB)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a log_level value to a slog.Level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const defaultHeader = `# sargam-writer configuration
#
# hotkey.mode: "hold" (play while held) or "toggle" (press to start/stop)
# inject.method: "type", "paste", or "none" (print only)
# output.format: "text" or "table"
# output.collapse: merge repeated consecutive symbols
# history.enabled: record every transcription in a local SQLite database
# server.addr: listen address for "sargam-writer serve"
`

// WriteDefault writes the default config to DefaultConfigPath. It returns
// the path written, or "" if a config file already exists there.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking config file: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// normalizeExt lowercases ext and ensures a leading dot.
func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
