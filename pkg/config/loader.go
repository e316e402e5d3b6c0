package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/b/tabline/pkg/colors"
	"github.com/b/tabline/pkg/logging"
	"github.com/b/tabline/pkg/paths"
)

var (
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrInvalidOverflow = errors.New("overflow must be \"count\" or \"arrow\"")
	ErrInvalidMode     = errors.New("theme_mode must be auto, dark or light")
)

const (
	DefaultBlinkInterval = time.Second
	DefaultPollInterval  = 2 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads path. A missing file yields the defaults; a file that
// cannot be parsed or fails validation is an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes the config to path, creating its directory first.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := paths.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects values the tab line cannot run with.
func (c *Config) Validate() error {
	if c.Alerts.BlinkInterval <= 0 {
		return fmt.Errorf("alerts.blink_interval: %w", ErrInvalidDuration)
	}
	if c.Bar.PollInterval <= 0 {
		return fmt.Errorf("bar.poll_interval: %w", ErrInvalidDuration)
	}
	if c.Overflow != "count" && c.Overflow != "arrow" {
		return ErrInvalidOverflow
	}
	if _, ok := colors.ParseThemeMode(c.ThemeMode); !ok {
		return ErrInvalidMode
	}
	if c.Alerts.MaxBlinks < 0 {
		return errors.New("alerts.max_blinks must not be negative")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Theme == "" {
		cfg.Theme = "default"
	}
	if cfg.ThemeMode == "" {
		cfg.ThemeMode = string(colors.ThemeModeAuto)
	}
	if cfg.Overflow == "" {
		cfg.Overflow = "count"
	}
	if cfg.Alerts.BlinkInterval == 0 {
		cfg.Alerts.BlinkInterval = DefaultBlinkInterval
	}
	if cfg.Bar.PollInterval == 0 {
		cfg.Bar.PollInterval = DefaultPollInterval
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
