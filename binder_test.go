package binder_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/binder"
)

type Logger struct{ id int64 }

type PaymentGateway interface{ Name() string }

type StripeGateway struct{ log *Logger }

func (*StripeGateway) Name() string { return "stripe" }

type MockGateway struct{}

func (*MockGateway) Name() string { return "mock" }

type Checkout struct {
	gateway PaymentGateway
	log     *Logger
}

func TestExampleScenario(t *testing.T) {
	var loggers atomic.Int64
	ctors := binder.NewConstructors().MustAdd(
		func() *Logger { return &Logger{id: loggers.Add(1)} },
		func(l *Logger) *StripeGateway { return &StripeGateway{log: l} },
		func() *MockGateway { return &MockGateway{} },
	)
	reg := binder.New(binder.WithInstantiator(ctors))

	require.NoError(t, binder.RegisterType[*Logger](reg, binder.Singleton))
	require.NoError(t, binder.RegisterImplementation[PaymentGateway, *StripeGateway](reg, binder.Singleton, binder.WithPriority(10)))
	require.NoError(t, binder.RegisterImplementation[PaymentGateway, *MockGateway](reg, binder.Singleton))

	a, err := binder.Resolve[PaymentGateway](reg)
	require.NoError(t, err)
	b, err := binder.Resolve[PaymentGateway](reg)
	require.NoError(t, err)
	assert.Equal(t, "stripe", a.Name())
	assert.Same(t, a.(*StripeGateway), b.(*StripeGateway))

	const n = 50
	got := make([]*Logger, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = binder.MustResolve[*Logger](reg)
		}(i)
	}
	wg.Wait()

	for _, l := range got {
		assert.Same(t, got[0], l)
	}
	assert.Equal(t, int64(1), loggers.Load())
	assert.Same(t, got[0], a.(*StripeGateway).log)
}

func TestProvideAndInject(t *testing.T) {
	reg := binder.New()
	require.NoError(t, binder.RegisterInstance(reg, &Logger{id: 9}))
	require.NoError(t, binder.RegisterInstance[PaymentGateway](reg, &MockGateway{}))
	require.NoError(t, binder.Provide(reg, binder.Prototype,
		func(ctx context.Context, r binder.Resolver, g binder.Guard) (*Checkout, error) {
			gw, err := binder.Inject[PaymentGateway](ctx, r, g)
			if err != nil {
				return nil, err
			}
			l, err := binder.Inject[*Logger](ctx, r, g)
			if err != nil {
				return nil, err
			}
			return &Checkout{gateway: gw, log: l}, nil
		}))

	c1, err := binder.Resolve[*Checkout](reg)
	require.NoError(t, err)
	c2, err := binder.Resolve[*Checkout](reg)
	require.NoError(t, err)

	assert.NotSame(t, c1, c2)
	assert.Equal(t, "mock", c1.gateway.Name())
	assert.Equal(t, int64(9), c1.log.id)
}

func TestNamedAndErrors(t *testing.T) {
	reg := binder.New(binder.WithInstantiator(binder.NewConstructors().MustAdd(
		func() *MockGateway { return &MockGateway{} },
	)))
	require.NoError(t, binder.RegisterNamed[*MockGateway](reg, "test", binder.Singleton))

	m, err := binder.ResolveNamed[*MockGateway](reg, "test")
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = binder.ResolveNamed[*MockGateway](reg, "prod")
	assert.ErrorIs(t, err, binder.ErrBindingNotFound)
	assert.Equal(t, binder.CodeBindingNotFound, binder.ErrorCode(err))
	assert.False(t, binder.IsConfigurationError(err))

	_, err = binder.Resolve[*Checkout](reg)
	var nf *binder.BindingNotFoundError
	require.True(t, errors.As(err, &nf))

	assert.Panics(t, func() { binder.MustResolve[*Checkout](reg) })
}

func TestTypeMismatch(t *testing.T) {
	reg := binder.New()
	require.NoError(t, reg.RegisterInstance(binder.NamedType("Thing"), "a string"))

	v, err := reg.Resolve(binder.NamedType("Thing"))
	require.NoError(t, err)
	assert.Equal(t, "a string", v)

	// a factory that lies about its type is caught by the generic helper
	require.NoError(t, reg.RegisterType(binder.TypeOf[*Logger](), binder.Singleton, binder.WithFactory(
		func(context.Context, binder.Resolver, binder.Guard) (any, error) { return "nope", nil },
	)))
	_, err = binder.Resolve[*Logger](reg)
	assert.ErrorContains(t, err, "is not a *binder_test.Logger")
}

func TestProfilesAndAlternatives(t *testing.T) {
	newReg := func(profiles ...string) *binder.Registry {
		reg := binder.New(
			binder.WithProfiles(binder.NewProfiles(profiles...)),
			binder.WithInstantiator(binder.NewConstructors().MustAdd(
				func() *MockGateway { return &MockGateway{} },
			)),
		)
		require.NoError(t, binder.RegisterImplementation[PaymentGateway, *MockGateway](reg, binder.Singleton, binder.Alternative("beta")))
		return reg
	}

	_, err := binder.Resolve[PaymentGateway](newReg())
	assert.ErrorIs(t, err, binder.ErrNoEligibleImplementation)
	assert.True(t, binder.IsConfigurationError(err))

	gw, err := binder.Resolve[PaymentGateway](newReg("beta"))
	require.NoError(t, err)
	assert.Equal(t, "mock", gw.Name())
}

func TestSessionScope(t *testing.T) {
	var n atomic.Int64
	reg := binder.New(binder.WithInstantiator(binder.NewConstructors().MustAdd(
		func() *Logger { return &Logger{id: n.Add(1)} },
	)))
	require.NoError(t, binder.RegisterType[*Logger](reg, binder.Session))

	_, err := binder.Resolve[*Logger](reg)
	assert.ErrorIs(t, err, binder.ErrScopeNotActive)

	ctx := binder.WithSession(context.Background(), "user-1")
	a, err := binder.ResolveContext[*Logger](ctx, reg)
	require.NoError(t, err)
	b, err := binder.ResolveContext[*Logger](ctx, reg)
	require.NoError(t, err)
	assert.Same(t, a, b)
}
