// Package metrics exports registry activity as Prometheus metrics.
//
// The Collector observes registrations, resolutions and constructions, and
// publishes registry statistics as gauges computed at scrape time. None of
// it feeds back into resolution.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/registry"
	"github.com/xraph/binder/internal/scope"
	"github.com/xraph/binder/internal/types"
)

// Config configures a Collector.
type Config struct {
	Namespace     string
	Subsystem     string
	EnableGo      bool
	EnableProcess bool
}

// DefaultConfig returns the default collector configuration.
func DefaultConfig() Config {
	return Config{Namespace: "binder", Subsystem: "registry"}
}

// StatsSource supplies registry statistics.
type StatsSource interface {
	Stats() registry.Stats
}

// Collector implements registry.Observer on top of a Prometheus registry.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	registrations   *prometheus.CounterVec
	resolutions     *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	constructions   *prometheus.CounterVec
}

var _ registry.Observer = (*Collector)(nil)

// New creates a Collector with its own Prometheus registry.
func New(config Config) *Collector {
	c := &Collector{
		config:   config,
		registry: prometheus.NewRegistry(),
	}

	if config.EnableGo {
		c.registry.MustRegister(collectors.NewGoCollector())
	}
	if config.EnableProcess {
		c.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	c.registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "registrations_total",
			Help:      "Total number of bindings registered",
		},
		[]string{"scope"},
	)
	c.resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "resolutions_total",
			Help:      "Total number of top-level resolutions",
		},
		[]string{"result"},
	)
	c.resolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "resolution_duration_seconds",
			Help:      "Top-level resolution duration in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10},
		},
		[]string{"result"},
	)
	c.constructions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "constructions_total",
			Help:      "Total number of instances constructed",
		},
		[]string{"scope"},
	)

	c.registry.MustRegister(c.registrations, c.resolutions, c.resolveDuration, c.constructions)
	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Watch publishes src's statistics as gauges evaluated on every scrape.
func (c *Collector) Watch(src StatsSource) error {
	gauges := []struct {
		name string
		help string
		get  func(registry.Stats) int
	}{
		{"bindings", "Number of registered bindings", func(s registry.Stats) int { return s.Bindings }},
		{"named_bindings", "Number of named bindings", func(s registry.Stats) int { return s.Named }},
		{"interfaces", "Number of interfaces with registered implementations", func(s registry.Stats) int { return s.Interfaces }},
		{"implementations", "Number of interface implementation entries", func(s registry.Stats) int { return s.Implementations }},
		{"materialized", "Number of bindings holding a cached instance", func(s registry.Stats) int { return s.Materialized }},
		{"active_profiles", "Number of active profiles", func(s registry.Stats) int { return s.ActiveProfiles }},
	}

	for _, g := range gauges {
		get := g.get
		gauge := prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: c.config.Namespace,
				Subsystem: c.config.Subsystem,
				Name:      g.name,
				Help:      g.help,
			},
			func() float64 { return float64(get(src.Stats())) },
		)
		if err := c.registry.Register(gauge); err != nil {
			return err
		}
	}
	return nil
}

// Registered implements registry.Observer.
func (c *Collector) Registered(_ types.Key, s scope.Scope) {
	c.registrations.WithLabelValues(s.String()).Inc()
}

// Resolved implements registry.Observer.
func (c *Collector) Resolved(_ types.Key, elapsed time.Duration, err error) {
	result := Result(err)
	c.resolutions.WithLabelValues(result).Inc()
	c.resolveDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// Constructed implements registry.Observer.
func (c *Collector) Constructed(_ types.Key, s scope.Scope) {
	c.constructions.WithLabelValues(s.String()).Inc()
}

// Result returns the label value for a resolution outcome: "ok", the
// lower-cased error code, or "error" for errors without a code.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	if code := binderrors.Code(err); code != "" {
		return strings.ToLower(code)
	}
	return "error"
}
