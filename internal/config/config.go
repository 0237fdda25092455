// Package config loads container configuration from a YAML file, optional
// .env files and BINDER_* environment variables.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xraph/binder/internal/logger"
	"github.com/xraph/binder/internal/profile"
)

// Environment variables consulted by Load.
const (
	EnvProfiles  = "BINDER_PROFILES"
	EnvLogLevel  = "BINDER_LOG_LEVEL"
	EnvLogFormat = "BINDER_LOG_FORMAT"
	EnvMetrics   = "BINDER_METRICS"
	EnvBindings  = "BINDER_BINDINGS"
)

// Config configures a container.
type Config struct {
	// Profiles lists the active profiles.
	Profiles []string `yaml:"profiles"`

	Logging logger.LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig        `yaml:"metrics"`

	// Bindings is the path of a binding spec file, relative to the config
	// file when not absolute.
	Bindings string `yaml:"bindings,omitempty"`

	// ConfigPath is where the config was loaded from.
	ConfigPath string `yaml:"-"`
}

// MetricsConfig configures the metrics collector.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Profiles: []string{},
		Logging: logger.LoggingConfig{
			Level:       "info",
			Format:      "console",
			Environment: "development",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "binder",
			Subsystem: "registry",
		},
	}
}

// ProfileSet returns the active profiles as a set.
func (c *Config) ProfileSet() profile.Set {
	return profile.NewSet(c.Profiles...)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if level := strings.ToLower(c.Logging.Level); level != "" && !slices.Contains(logger.Levels, level) {
		return fmt.Errorf("logging.level must be one of %s: got %q", strings.Join(logger.Levels, ", "), c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be 'console' or 'json': got %q", c.Logging.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics.namespace is required when metrics are enabled")
	}

	for _, p := range c.Profiles {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("profiles must not contain blank entries")
		}
		if strings.Contains(p, ",") {
			return fmt.Errorf("profile %q must not contain commas", p)
		}
	}

	return nil
}
