// Package config handles configuration loading from YAML files.
// A missing configuration file is not an error: tabletmode runs fine with
// defaults. A malformed file yields the defaults plus an error so callers
// can log a warning and proceed instead of crashing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// SystemPath is the system-wide configuration file consulted when no
// user-level file exists.
const SystemPath = "/etc/tabletmode.yaml"

// Config holds the complete tabletmode configuration.
type Config struct {
	// Laptop and Tablet list the input devices grabbed in the respective
	// mode, in the order they are grabbed.
	Laptop []string `yaml:"laptop"`
	Tablet []string `yaml:"tablet"`

	// Notify enables desktop notifications on mode changes.
	Notify bool `yaml:"notify"`

	// Sudo is the privilege escalation binary used for service control.
	Sudo string `yaml:"sudo"`

	Units   UnitsConfig   `yaml:"units"`
	Tools   ToolsConfig   `yaml:"tools"`
	Logging LoggingConfig `yaml:"logging"`
}

// UnitsConfig names the systemd units backing each mode.
type UnitsConfig struct {
	Laptop string `yaml:"laptop"`
	Tablet string `yaml:"tablet"`
}

// ToolsConfig holds the paths of the external binaries tabletmode invokes.
// All fields have absolute-path defaults so a bare configuration works on
// a standard install.
type ToolsConfig struct {
	Systemctl  string `yaml:"systemctl"`
	Gsettings  string `yaml:"gsettings"`
	NotifySend string `yaml:"notify_send"`
	Evtest     string `yaml:"evtest"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sudo: "/usr/bin/sudo",
		Units: UnitsConfig{
			Laptop: "laptop-mode.service",
			Tablet: "tablet-mode.service",
		},
		Tools: ToolsConfig{
			Systemctl:  "/usr/bin/systemctl",
			Gsettings:  "/usr/bin/gsettings",
			NotifySend: "/usr/bin/notify-send",
			Evtest:     "/usr/bin/evtest",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file and merges it with defaults.
// A missing file yields the defaults and no error. A malformed file yields
// the untouched defaults and an error, so a partial unmarshal never leaks
// into the returned configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		applyEnvOverrides(cfg)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = DefaultConfig()
		applyEnvOverrides(cfg)
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Locate returns the configuration file to load: the TABLETMODE_CONFIG
// environment variable if set, the user-level XDG file if present, the
// system-wide file otherwise.
func Locate() string {
	if path := os.Getenv("TABLETMODE_CONFIG"); path != "" {
		return path
	}
	if path, err := xdg.SearchConfigFile(filepath.Join("tabletmode", "tabletmode.yaml")); err == nil {
		return path
	}
	return SystemPath
}

// Devices returns the ordered device list configured for the given mode
// key ("laptop" or "tablet"). Nil when nothing is configured for the key.
func (c *Config) Devices(mode string) []string {
	switch mode {
	case "laptop":
		return c.Laptop
	case "tablet":
		return c.Tablet
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables have the highest precedence.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("TABLETMODE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if sudo := os.Getenv("TABLETMODE_SUDO"); sudo != "" {
		cfg.Sudo = sudo
	}
}
