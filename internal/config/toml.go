// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	hclog "github.com/hashicorp/go-hclog"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Timer  TimerConfig  `toml:"timer"`
	Notify NotifyConfig `toml:"notify"`
	Log    LogConfig    `toml:"log"`
}

// TimerConfig holds default interval lengths in minutes. They are applied
// only while no session is active.
type TimerConfig struct {
	Focus *int `toml:"focus"`
	Break *int `toml:"break"`
}

// NotifyConfig toggles completion alerts.
type NotifyConfig struct {
	Bell    *bool `toml:"bell"`
	Desktop *bool `toml:"desktop"`
}

// LogConfig controls the log sink.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// BellEnabled reports whether the terminal bell should ring. Defaults to true.
func (c FileConfig) BellEnabled() bool {
	return c.Notify.Bell == nil || *c.Notify.Bell
}

// DesktopEnabled reports whether desktop notifications are wanted. Defaults to true.
func (c FileConfig) DesktopEnabled() bool {
	return c.Notify.Desktop == nil || *c.Notify.Desktop
}

// LogLevel returns the configured hclog level, defaulting to info.
func (c FileConfig) LogLevel() hclog.Level {
	if c.Log.Level == nil {
		return hclog.Info
	}
	level := hclog.LevelFromString(strings.TrimSpace(*c.Log.Level))
	if level == hclog.NoLevel {
		return hclog.Info
	}
	return level
}

// LogFile returns the configured log path or the default one.
func (c FileConfig) LogFile() string {
	if c.Log.File != nil && strings.TrimSpace(*c.Log.File) != "" {
		return *c.Log.File
	}
	return DefaultLogPath()
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Template is written when the config command creates a new file.
const Template = `# sprout configuration

[timer]
# focus = 20   # minutes, 5-60 in steps of 5
# break = 5    # minutes, 5-30 in steps of 5

[notify]
# bell = true
# desktop = true

[log]
# level = "info"
# file = ""
`
