package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/profile"
)

// FileNames are the config file names Find looks for.
var FileNames = []string{".binder.yaml", ".binder.yml"}

// Find searches for a config file from dir up the directory tree and
// returns its path.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory: %w", err)
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent", strings.Join(FileNames, " or "), dir)
		}
		dir = parent
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), and the environment. envFiles are loaded first with
// godotenv; missing env files are ignored and variables already set in the
// process environment take precedence.
func Load(path string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, binderrors.ErrConfigError(f, "failed to load env file", err)
		}
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, binderrors.ErrConfigError(path, "failed to read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, binderrors.ErrConfigError(path, "failed to parse config file", err)
		}
		cfg.ConfigPath = path
		if cfg.Bindings != "" && !filepath.IsAbs(cfg.Bindings) {
			cfg.Bindings = filepath.Join(filepath.Dir(path), cfg.Bindings)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, binderrors.ErrConfigError(path, "invalid configuration", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvProfiles); ok {
		cfg.Profiles = profile.Parse(v).Names()
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		cfg.Logging.Format = v
	}
	if v, ok := os.LookupEnv(EnvMetrics); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return binderrors.ErrConfigError(EnvMetrics, "expected a boolean", err)
		}
		cfg.Metrics.Enabled = enabled
	}
	if v, ok := os.LookupEnv(EnvBindings); ok && v != "" {
		cfg.Bindings = v
	}
	return nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
