package binder

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/binder/internal/config"
	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/inspect"
	"github.com/xraph/binder/internal/logger"
	"github.com/xraph/binder/internal/metrics"
	"github.com/xraph/binder/internal/spec"
)

// Configuration and binding spec types.
type (
	Config        = config.Config
	MetricsConfig = config.MetricsConfig
	Catalog       = spec.Catalog
	BindingSpec   = spec.BindingSpec
	SpecSource    = spec.Source
	StaticSource  = spec.StaticSource
	Snapshot      = inspect.Snapshot
)

// Configuration and binding spec constructors.
var (
	DefaultConfig = config.DefaultConfig
	LoadConfig    = config.Load
	FindConfig    = config.Find
	NewCatalog    = spec.NewCatalog
	OpenCatalog   = spec.OpenCatalog
	NewYAMLSource = spec.NewYAMLSource
	NewFileSource = spec.NewFileSource
)

// AddType maps name to T in c.
func AddType[T any](c *Catalog, name string) *Catalog {
	return spec.Add[T](c, name)
}

// Container is a Registry wired from configuration: logger, metrics,
// active profiles and an optional binding spec file.
type Container struct {
	*Registry

	config  *Config
	logger  Logger
	metrics *metrics.Collector
	catalog *Catalog
}

// NewContainer builds a Container from cfg. When cfg names a binding spec
// file its specs are applied using catalog to resolve type names. opts are
// applied after the options derived from cfg and may override them.
func NewContainer(cfg *Config, catalog *Catalog, opts ...Option) (*Container, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, binderrors.ErrConfigError(cfg.ConfigPath, "invalid configuration", err)
	}

	c := &Container{
		config:  cfg,
		logger:  logger.NewLogger(cfg.Logging).Named("binder"),
		catalog: catalog,
	}

	base := []Option{
		WithProfiles(cfg.ProfileSet()),
		WithLogger(c.logger),
	}
	if cfg.Metrics.Enabled {
		c.metrics = metrics.New(metrics.Config{
			Namespace: cfg.Metrics.Namespace,
			Subsystem: cfg.Metrics.Subsystem,
		})
		base = append(base, WithObserver(c.metrics))
	}

	c.Registry = New(append(base, opts...)...)

	if c.metrics != nil {
		if err := c.metrics.Watch(c.Registry); err != nil {
			return nil, err
		}
	}

	if cfg.Bindings != "" {
		if catalog == nil {
			return nil, binderrors.ErrConfigError("bindings", "a catalog is required to apply "+cfg.Bindings, nil)
		}
		if _, err := c.Apply(context.Background(), spec.NewFileSource(cfg.Bindings)); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("container ready",
		logger.String("profiles", c.Profiles().String()),
		logger.Bool("metrics", c.metrics != nil),
	)
	return c, nil
}

// Apply registers the specs of every source and returns how many were
// applied.
func (c *Container) Apply(ctx context.Context, sources ...SpecSource) (int, error) {
	catalog := c.catalog
	if catalog == nil {
		catalog = spec.NewCatalog()
	}
	return spec.NewProcessor(catalog, c.logger).Apply(ctx, c.Registry, sources...)
}

// Config returns the container configuration.
func (c *Container) Config() *Config { return c.config }

// Logger returns the container logger.
func (c *Container) Logger() Logger { return c.logger }

// Metrics returns the Prometheus registry, or nil when metrics are disabled.
func (c *Container) Metrics() *prometheus.Registry {
	if c.metrics == nil {
		return nil
	}
	return c.metrics.Registry()
}

// Snapshot captures the container's bindings and interface selections.
func (c *Container) Snapshot() Snapshot {
	return inspect.Take(c.Registry)
}

// WriteSnapshot writes a snapshot as JSON or as a text table.
func (c *Container) WriteSnapshot(w io.Writer, asJSON bool) error {
	if asJSON {
		return inspect.WriteJSON(w, c.Snapshot())
	}
	return inspect.WriteTable(w, c.Snapshot())
}

// Close clears the registry and flushes the logger.
func (c *Container) Close() error {
	c.Clear()
	_ = c.logger.Sync()
	return nil
}
