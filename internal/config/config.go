// Package config loads the user configuration from a TOML file in the XDG
// config directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/Gaurav-Gosain/winstate/internal/settings"
	"github.com/Gaurav-Gosain/winstate/internal/window"
)

// Config is the user configuration.
type Config struct {
	Settings    SettingsConfig    `toml:"settings"`
	Window      WindowConfig      `toml:"window"`
	Logging     LoggingConfig     `toml:"logging"`
	Keybindings KeybindingsConfig `toml:"keybindings"`
}

// SettingsConfig locates the settings file.
type SettingsConfig struct {
	// File overrides the settings file. Empty means the XDG data directory.
	File       string `toml:"file"`
	DebounceMS int    `toml:"debounce_ms"`
}

// WindowConfig holds first run defaults and the restore policy.
type WindowConfig struct {
	DefaultWidth      int32    `toml:"default_width"`
	DefaultHeight     int32    `toml:"default_height"`
	DefaultVisibility string   `toml:"default_visibility"`
	Persistence       []string `toml:"persistence"`
	Assertions        bool     `toml:"assertions"`
}

// LoggingConfig sets the log level of every package.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// KeybindingsConfig maps demo actions to keys.
type KeybindingsConfig struct {
	Window map[string][]string `toml:"window"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			DebounceMS: int(settings.DefaultDebounce / time.Millisecond),
		},
		Window: WindowConfig{
			DefaultWidth:      1280,
			DefaultHeight:     720,
			DefaultVisibility: window.Windowed.String(),
			Persistence:       window.PersistAll.Names(),
		},
		Logging: LoggingConfig{
			Level: log.InfoLevel.String(),
		},
		Keybindings: KeybindingsConfig{
			Window: map[string][]string{
				"toggle_fullscreen": {"f11"},
				"toggle_maximized":  {"m"},
				"minimize":          {"n"},
				"cycle_persistence": {"p"},
				"reset_geometry":    {"ctrl+r"},
				"quit":              {"ctrl+q", "esc"},
			},
		},
	}
}

// GetConfigPath returns the configuration file path.
func GetConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(settings.AppName, "config.toml"))
}

// LoadUserConfig loads the configuration, creating the file with defaults
// when it does not exist yet.
func LoadUserConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("could not determine config path: %w", err)
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads the configuration at path. Fields missing from the file
// keep their default value.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := WriteConfigFile(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	defaults := cfg.Keybindings.Window
	cfg.Keybindings.Window = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.Keybindings.Window = mergeBindings(defaults, cfg.Keybindings.Window)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfigFile writes cfg to path with a short header.
func WriteConfigFile(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# winstate configuration file\n")
	sb.WriteString("#\n")
	sb.WriteString("# settings.file        settings file, empty for the default location\n")
	sb.WriteString("# window.persistence   any of: position, size, maximized, fullscreen\n")
	sb.WriteString("# logging.level        debug, info, warn or error\n")
	sb.WriteString("#\n")
	sb.WriteString("# Configuration location: " + path + "\n\n")
	sb.Write(data)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// mergeBindings keeps the default keys of actions the user did not rebind.
func mergeBindings(defaults, user map[string][]string) map[string][]string {
	merged := make(map[string][]string, len(defaults))
	for action, keys := range defaults {
		merged[action] = keys
	}
	for action, keys := range user {
		merged[action] = keys
	}
	return merged
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error

	if c.Settings.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("settings.debounce_ms must not be negative, got %d", c.Settings.DebounceMS))
	}
	if c.Window.DefaultWidth <= 0 || c.Window.DefaultHeight <= 0 {
		errs = append(errs, fmt.Errorf("window default size must be positive, got %dx%d", c.Window.DefaultWidth, c.Window.DefaultHeight))
	}
	if v, err := window.ParseVisibility(c.Window.DefaultVisibility); err != nil {
		errs = append(errs, fmt.Errorf("window.default_visibility: %w", err))
	} else if v == window.Hidden {
		errs = append(errs, errors.New("window.default_visibility: hidden is not a startup state"))
	}
	if _, err := window.ParsePersistence(c.Window.Persistence...); err != nil {
		errs = append(errs, fmt.Errorf("window.persistence: %w", err))
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	normalizer := NewKeyNormalizer()
	for action, keys := range c.Keybindings.Window {
		if _, ok := ActionDescriptions[action]; !ok {
			errs = append(errs, fmt.Errorf("keybindings: unknown action %q", action))
			continue
		}
		for _, key := range keys {
			if ok, reason := normalizer.ValidateKey(key); !ok {
				errs = append(errs, fmt.Errorf("keybindings.%s: %q: %s", action, key, reason))
			}
		}
	}

	return errors.Join(errs...)
}

// SettingsPath returns the configured settings file or the default one.
func (c *Config) SettingsPath() (string, error) {
	if c.Settings.File != "" {
		return c.Settings.File, nil
	}
	return settings.DefaultPath()
}

// Debounce returns the settings flush delay.
func (c *Config) Debounce() time.Duration {
	if c.Settings.DebounceMS <= 0 {
		return settings.DefaultDebounce
	}
	return time.Duration(c.Settings.DebounceMS) * time.Millisecond
}

// Persistence returns the configured restore policy. Invalid names are
// dropped; Validate reports them.
func (c *Config) Persistence() window.Persistence {
	var p window.Persistence
	for _, name := range c.Window.Persistence {
		if bit, err := window.ParsePersistence(name); err == nil {
			p |= bit
		}
	}
	return p
}

// DefaultVisibility returns the first run visibility, windowed when invalid.
func (c *Config) DefaultVisibility() window.Visibility {
	v, err := window.ParseVisibility(c.Window.DefaultVisibility)
	if err != nil || v == window.Hidden {
		return window.Windowed
	}
	return v
}

// LogLevel returns the configured level, info when invalid.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
