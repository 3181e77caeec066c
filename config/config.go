// Package config loads the bluepump daemon configuration from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// AdapterConfig describes one local radio the daemon should manage.
type AdapterConfig struct {
	Index int    `yaml:"index"`
	Name  string `yaml:"name"`
}

// Config is the daemon configuration surface. PCM parameters and codecs are
// negotiated per transport at creation time and are deliberately absent
// here; this only covers what the process needs before any device connects.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Adapters lists the radios to register at startup.
	Adapters []AdapterConfig `yaml:"adapters"`

	// ToneFrequency is the fallback generator frequency in Hz for
	// source transports with no attached client.
	ToneFrequency float64 `yaml:"tone_frequency"`

	// DBus enables the system bus notifier and BlueZ backends; off, the
	// daemon runs with in-process mock profiles, the mode the test
	// harness uses.
	DBus bool `yaml:"dbus"`
}

// Default returns the configuration used when no file is given: one hci0
// adapter, info logging, mock profiles.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		Adapters:      []AdapterConfig{{Index: 0, Name: "hci0"}},
		ToneFrequency: 440,
	}
}

// Load reads and validates a YAML configuration file, filling unset fields
// from Default.
func Load(path string) (*Config, error) {
	logrus.WithFields(logrus.Fields{
		"function": "Load",
		"path":     path,
	}).Debug("Loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Load",
		"adapters": len(cfg.Adapters),
		"dbus":     cfg.DBus,
	}).Info("Configuration loaded")

	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if len(c.Adapters) == 0 {
		return fmt.Errorf("at least one adapter is required")
	}
	seen := make(map[int]bool)
	for _, a := range c.Adapters {
		if a.Index < 0 {
			return fmt.Errorf("negative adapter index %d", a.Index)
		}
		if seen[a.Index] {
			return fmt.Errorf("duplicate adapter index %d", a.Index)
		}
		seen[a.Index] = true
	}
	if c.ToneFrequency < 0 {
		return fmt.Errorf("negative tone frequency")
	}
	return nil
}
