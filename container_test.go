package binder_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/binder"
)

const bindingsYAML = `
bindings:
  - type: Logger
  - type: PaymentGateway
    implementation: StripeGateway
    primary: true
    priority: 10
  - type: PaymentGateway
    implementation: MockGateway
    alternative: true
    profile: test
`

func writeContainerFiles(t *testing.T, configYAML string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bindings.yaml"), []byte(bindingsYAML), 0o600))
	path := filepath.Join(dir, ".binder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))
	return path
}

func testCatalog() *binder.Catalog {
	c := binder.NewCatalog()
	binder.AddType[*Logger](c, "Logger")
	binder.AddType[PaymentGateway](c, "PaymentGateway")
	binder.AddType[*StripeGateway](c, "StripeGateway")
	binder.AddType[*MockGateway](c, "MockGateway")
	return c
}

func testConstructors() binder.Instantiator {
	return binder.NewConstructors().MustAdd(
		func() *Logger { return &Logger{} },
		func(l *Logger) *StripeGateway { return &StripeGateway{log: l} },
		func() *MockGateway { return &MockGateway{} },
	)
}

func TestNewContainerFromConfig(t *testing.T) {
	path := writeContainerFiles(t, `
profiles: [test]
logging:
  level: error
metrics:
  enabled: true
  namespace: shop
  subsystem: di
bindings: bindings.yaml
`)
	cfg, err := binder.LoadConfig(path)
	require.NoError(t, err)

	c, err := binder.NewContainer(cfg, testCatalog(), binder.WithInstantiator(testConstructors()))
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.Profiles().Active("test"))
	assert.Same(t, cfg, c.Config())

	gw, err := binder.Resolve[PaymentGateway](c.Registry)
	require.NoError(t, err)
	assert.Equal(t, "stripe", gw.Name())

	require.NotNil(t, c.Metrics())
	count, err := testutil.GatherAndCount(c.Metrics(), "shop_di_bindings", "shop_di_resolutions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var buf bytes.Buffer
	require.NoError(t, c.WriteSnapshot(&buf, false))
	assert.Contains(t, buf.String(), "StripeGateway")

	buf.Reset()
	require.NoError(t, c.WriteSnapshot(&buf, true))
	assert.Contains(t, buf.String(), `"selections"`)
}

func TestNewContainerDefaults(t *testing.T) {
	c, err := binder.NewContainer(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, c.Metrics())
	assert.Empty(t, c.Bindings())
	assert.NoError(t, c.Close())
}

func TestNewContainerErrors(t *testing.T) {
	cfg := binder.DefaultConfig()
	cfg.Logging.Format = "xml"
	_, err := binder.NewContainer(cfg, nil)
	assert.ErrorIs(t, err, binder.ErrConfig)

	path := writeContainerFiles(t, "bindings: bindings.yaml\n")
	cfg, err = binder.LoadConfig(path)
	require.NoError(t, err)

	_, err = binder.NewContainer(cfg, nil)
	assert.ErrorIs(t, err, binder.ErrConfig)

	_, err = binder.NewContainer(cfg, binder.NewCatalog())
	assert.ErrorIs(t, err, binder.ErrConfig, "unknown type names are rejected by a closed catalog")
}

func TestContainerApply(t *testing.T) {
	c, err := binder.NewContainer(nil, binder.OpenCatalog(), binder.WithInstantiator(binder.NewDeclared()))
	require.NoError(t, err)

	n, err := c.Apply(context.Background(), binder.StaticSource{
		{Type: "Clock"},
		{Type: "Store", Implementation: "Memory", Scope: "prototype"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Len(t, c.Bindings(), 2)

	sel, err := c.Explain(binder.NamedType("Store"))
	require.NoError(t, err)
	assert.Equal(t, "Memory", sel.Chosen.Implementation.String())
}
