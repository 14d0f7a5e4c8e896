package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	hclog "github.com/hashicorp/go-hclog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Timer.Focus != nil || !cfg.BellEnabled() || !cfg.DesktopEnabled() {
		t.Fatalf("expected zero config with defaults, got %+v", cfg)
	}
	if cfg.LogLevel() != hclog.Info {
		t.Fatalf("expected info level, got %v", cfg.LogLevel())
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := writeConfig(t, `
[timer]
focus = 25
break = 10

[notify]
bell = false

[log]
level = "debug"
file = "/tmp/sprout.log"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timer.Focus == nil || *cfg.Timer.Focus != 25 {
		t.Fatalf("expected focus 25, got %v", cfg.Timer.Focus)
	}
	if cfg.Timer.Break == nil || *cfg.Timer.Break != 10 {
		t.Fatalf("expected break 10, got %v", cfg.Timer.Break)
	}
	if cfg.BellEnabled() {
		t.Fatalf("expected bell disabled")
	}
	if !cfg.DesktopEnabled() {
		t.Fatalf("expected desktop enabled by default")
	}
	if cfg.LogLevel() != hclog.Debug {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel())
	}
	if cfg.LogFile() != "/tmp/sprout.log" {
		t.Fatalf("unexpected log file %q", cfg.LogFile())
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[timer]\nfocuss = 25\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "timer.focuss") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestTemplateDecodes(t *testing.T) {
	path := writeConfig(t, Template)
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("template should decode: %v", err)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "sprout", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "sprout", "sprout.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/data", "sprout", "sprout.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
