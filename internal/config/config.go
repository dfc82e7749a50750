// Package config resolves catalyst's own home directory and ambient
// settings — distinct from the per-project .claude/ layout the
// orchestrator manages. Load resolves in layers: defaults, then
// config.yaml, then environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds catalyst's own settings, loaded from
// <home>/config.yaml and environment overrides.
type Config struct {
	HomeDir string `yaml:"-"`

	LogLevel string `yaml:"log_level"`

	// TrackerBackend names the compiled-in tracker store ("filelog" or
	// "sqlite" — see tracker.DefaultBackendName). Informational only;
	// the actual backend is chosen at build time by the catalyst_sqlite
	// tag, not by this field.
	TrackerBackend string `yaml:"tracker_backend"`

	// RecentWindow is the recent-files window size (config.yaml's
	// recent_window, overridden by CATALYST_RECENT_WINDOW). The activation
	// hook does not read this field; activation.RecentWindow consults only
	// the CATALYST_RECENT_WINDOW environment variable.
	RecentWindow int `yaml:"recent_window"`

	// OTELEndpoint, when set, turns on OTel span export for the
	// orchestrator's init/update phases. Empty means no-op exporter.
	OTELEndpoint string `yaml:"otel_endpoint"`

	NeedsGenesis bool `yaml:"-"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:       "info",
		TrackerBackend: "filelog",
		RecentWindow:   20,
	}
}

// HomeDir resolves catalyst's own home directory: CATALYST_HOME if set,
// else <user home>/.catalyst-home. This is distinct from the per-project
// .claude/ layout that internal/orchestrator manages.
func HomeDir() string {
	if override := os.Getenv("CATALYST_HOME"); override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".catalyst-home")
}

// ConfigPath returns the path to config.yaml within the given home directory.
func ConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}

// Load resolves the effective Config: defaults, then config.yaml (if
// present), then environment overrides.
func Load() (Config, error) {
	cfg := defaultConfig()
	cfg.HomeDir = HomeDir()

	if err := os.MkdirAll(cfg.HomeDir, 0o755); err != nil {
		return cfg, fmt.Errorf("create catalyst home: %w", err)
	}

	configPath := ConfigPath(cfg.HomeDir)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.NeedsGenesis = true
		} else {
			return cfg, fmt.Errorf("read config.yaml: %w", err)
		}
	} else if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config.yaml: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.TrackerBackend == "" {
		cfg.TrackerBackend = "filelog"
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = 20
	}
}

func applyEnvOverrides(cfg *Config) {
	if raw := os.Getenv("CATALYST_LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := os.Getenv("CATALYST_RECENT_WINDOW"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.RecentWindow = v
		}
	}
	if raw := os.Getenv("CATALYST_OTEL_ENDPOINT"); raw != "" {
		cfg.OTELEndpoint = raw
	}
}

// Save writes cfg back to <homeDir>/config.yaml, round-tripping through
// yaml.Marshal (comments and formatting are not preserved).
func Save(homeDir string, cfg Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config.yaml: %w", err)
	}
	return os.WriteFile(ConfigPath(homeDir), out, 0o644)
}
