// Package config provides configuration parsing for sysmon-gui.
package config

import (
	"os"
	"path/filepath"

	"emperror.dev/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Temperature units accepted by display.temperature_unit.
const (
	Celsius    = "celsius"
	Fahrenheit = "fahrenheit"
)

// Themes accepted by display.theme.
const (
	ThemeDefault = "default"
	ThemeMatrix  = "matrix"
)

// Config represents the panel configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFile receives log output of the terminal panel. Empty means a
	// temporary file.
	LogFile string `yaml:"log_file"`

	// Display holds rendering settings.
	Display DisplayConfig `yaml:"display"`

	// Sections holds per-section toggles.
	Sections SectionsConfig `yaml:"sections"`
}

// DisplayConfig holds rendering settings.
type DisplayConfig struct {
	// Theme selects the desktop theme: "default" or "matrix".
	Theme string `yaml:"theme"`
	// TemperatureUnit selects the unit of temperature readouts.
	TemperatureUnit string `yaml:"temperature_unit"`
	// Width and Height are the initial desktop window size.
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// SectionsConfig holds the toggles of the four panel sections.
type SectionsConfig struct {
	CPU         SectionConfig `yaml:"cpu"`
	Memory      SectionConfig `yaml:"memory"`
	Temperature SectionConfig `yaml:"temperature"`
	Network     SectionConfig `yaml:"network"`
}

// SectionConfig controls one section of the panel.
type SectionConfig struct {
	// Enabled shows the section at all.
	Enabled bool `yaml:"enabled"`
	// GraphView is the initial state of the "Graph view" toggle.
	GraphView bool `yaml:"graph_view"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sysmon-gui", "config.yaml")
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	on := SectionConfig{Enabled: true}
	return &Config{
		LogLevel: "info",
		Display: DisplayConfig{
			Theme:           ThemeDefault,
			TemperatureUnit: Celsius,
			Width:           600,
			Height:          800,
		},
		Sections: SectionsConfig{
			CPU:         on,
			Memory:      on,
			Temperature: on,
			Network:     on,
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.WithField("path", path).Debug("no config file, using defaults")
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// Validate checks the configuration for logical consistency. All problems
// are reported together.
func (c *Config) Validate() error {
	var errs []error

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, errors.Errorf("log_level: invalid level %q", c.LogLevel))
	}
	switch c.Display.Theme {
	case ThemeDefault, ThemeMatrix:
	default:
		errs = append(errs, errors.Errorf("display.theme must be %q or %q, got %q",
			ThemeDefault, ThemeMatrix, c.Display.Theme))
	}
	switch c.Display.TemperatureUnit {
	case Celsius, Fahrenheit:
	default:
		errs = append(errs, errors.Errorf("display.temperature_unit must be %q or %q, got %q",
			Celsius, Fahrenheit, c.Display.TemperatureUnit))
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, errors.Errorf("display window size must be positive, got %vx%v",
			c.Display.Width, c.Display.Height))
	}

	return errors.Combine(errs...)
}

// Save writes the configuration as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "writing config")
}
