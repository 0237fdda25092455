package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	binderrors "github.com/xraph/binder/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 0, cfg.ProfileSet().Len())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".binder.yaml", `
profiles: [prod, beta]
logging:
  level: debug
  format: json
metrics:
  enabled: true
  namespace: shop
bindings: bindings.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"prod", "beta"}, cfg.Profiles)
	assert.True(t, cfg.ProfileSet().Active("beta"))
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "shop", cfg.Metrics.Namespace)
	assert.Equal(t, "registry", cfg.Metrics.Subsystem, "defaults survive partial files")
	assert.Equal(t, filepath.Join(dir, "bindings.yaml"), cfg.Bindings)
	assert.Equal(t, path, cfg.ConfigPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "binder.yaml", "profiles: [prod]\n")

	t.Setenv(EnvProfiles, "dev, beta")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvMetrics, "true")
	t.Setenv(EnvBindings, "/etc/binder/bindings.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "dev"}, cfg.Profiles)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/etc/binder/bindings.yaml", cfg.Bindings)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "BINDER_LOG_FORMAT=json\n")

	// godotenv never overrides variables that are already set
	t.Setenv(EnvLogFormat, "")
	require.NoError(t, os.Unsetenv(EnvLogFormat))
	t.Cleanup(func() { _ = os.Unsetenv(EnvLogFormat) })

	cfg, err := Load("", envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.ConfigPath)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, binderrors.ErrConfig)

	bad := writeFile(t, dir, "bad.yaml", "profiles: [")
	_, err = Load(bad)
	assert.ErrorIs(t, err, binderrors.ErrConfig)

	invalid := writeFile(t, dir, "invalid.yaml", "logging:\n  level: loud\n")
	_, err = Load(invalid)
	assert.ErrorIs(t, err, binderrors.ErrConfig)
	assert.ErrorContains(t, err, "logging.level")

	t.Setenv(EnvMetrics, "sometimes")
	_, err = Load("")
	assert.ErrorIs(t, err, binderrors.ErrConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "format", mutate: func(c *Config) { c.Logging.Format = "xml" }},
		{name: "namespace", mutate: func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Namespace = "" }},
		{name: "blank profile", mutate: func(c *Config) { c.Profiles = []string{" "} }},
		{name: "comma profile", mutate: func(c *Config) { c.Profiles = []string{"a,b"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, ".binder.yml", "profiles: []\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".binder.yaml")
	cfg := DefaultConfig()
	cfg.Profiles = []string{"prod"}
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Profiles, loaded.Profiles)
	assert.Equal(t, cfg.Logging, loaded.Logging)
}
