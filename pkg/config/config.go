package config

import (
	"time"

	"github.com/b/tabline/pkg/paths"
)

type Config struct {
	Theme           string `yaml:"theme"`
	ThemeMode       string `yaml:"theme_mode"`
	HideSessionName bool   `yaml:"hide_session_name"`
	ArrowFonts      *bool  `yaml:"arrow_fonts"`
	Overflow        string `yaml:"overflow"`
	Alerts          Alerts `yaml:"alerts"`
	Bar             Bar    `yaml:"bar"`
	Log             Log    `yaml:"log"`
}

type Alerts struct {
	BlinkInterval time.Duration `yaml:"blink_interval"` // default 1s
	MaxBlinks     int           `yaml:"max_blinks"`     // 0 blinks until visited
	Sync          *bool         `yaml:"sync"`           // default true
}

type Bar struct {
	PollInterval time.Duration `yaml:"poll_interval"` // default 2s
}

type Log struct {
	Path  string `yaml:"path"` // empty disables logging
	Level string `yaml:"level"`
}

// UseArrowFonts reports whether powerline separators are enabled.
func (c *Config) UseArrowFonts() bool {
	return c.ArrowFonts == nil || *c.ArrowFonts
}

// SyncEnabled reports whether alert snapshots are exchanged with siblings.
func (c *Config) SyncEnabled() bool {
	return c.Alerts.Sync == nil || *c.Alerts.Sync
}

func DefaultConfigPath() string {
	return paths.ConfigPath()
}
