package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/binder/internal/binding"
	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/guard"
	"github.com/xraph/binder/internal/registry"
	"github.com/xraph/binder/internal/scope"
	"github.com/xraph/binder/internal/types"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("plain")))
	assert.Equal(t, "binding_not_found", Result(binderrors.NewBindingNotFoundError("T", "")))
	assert.Equal(t, "construction_failed", Result(binderrors.NewConstructionError("T", errors.New("boom"))))
}

func TestCollectorObservesRegistry(t *testing.T) {
	c := New(DefaultConfig())

	counter := 0
	factory := func(context.Context, binding.Resolver, guard.Guard) (any, error) {
		counter++
		return counter, nil
	}

	r := registry.New(registry.WithObserver(c))
	require.NoError(t, c.Watch(r))

	single, proto := types.Named("Single"), types.Named("Proto")
	require.NoError(t, r.RegisterType(single, scope.Singleton, registry.WithFactory(factory)))
	require.NoError(t, r.RegisterType(proto, scope.Prototype, registry.WithFactory(factory)))

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(single)
		require.NoError(t, err)
		_, err = r.Resolve(proto)
		require.NoError(t, err)
	}
	_, err := r.Resolve(types.Named("Missing"))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.registrations.WithLabelValues("singleton")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.registrations.WithLabelValues("prototype")))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.resolutions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.resolutions.WithLabelValues("binding_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.constructions.WithLabelValues("singleton")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.constructions.WithLabelValues("prototype")))

	expected := `
# HELP binder_registry_bindings Number of registered bindings
# TYPE binder_registry_bindings gauge
binder_registry_bindings 2
# HELP binder_registry_materialized Number of bindings holding a cached instance
# TYPE binder_registry_materialized gauge
binder_registry_materialized 1
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected),
		"binder_registry_bindings", "binder_registry_materialized"))

	// gauges follow the registry without any push
	r.Clear()
	assert.Equal(t, 0.0, gaugeValue(t, c, "binder_registry_bindings"))
}

func TestWatchTwiceFails(t *testing.T) {
	c := New(DefaultConfig())
	r := registry.New()
	require.NoError(t, c.Watch(r))
	assert.Error(t, c.Watch(r))
}

func TestRuntimeCollectors(t *testing.T) {
	c := New(Config{Namespace: "x", EnableGo: true})
	families, err := c.Registry().Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "go_") {
			found = true
			break
		}
	}
	assert.True(t, found)
}

func gaugeValue(t *testing.T, c *Collector, name string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
