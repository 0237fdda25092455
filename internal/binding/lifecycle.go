package binding

import (
	"context"
	"sync/atomic"

	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/guard"
	"github.com/xraph/binder/internal/scope"
)

// Env carries the collaborators GetInstance needs.
type Env struct {
	Resolver     Resolver
	Instantiator Instantiator
	Store        scope.Store
	// OnConstruct is called after every successful construction.
	OnConstruct func(d *Descriptor)
}

// GetInstance returns the instance for d according to its scope.
//
// Singleton and application descriptors construct at most once: concurrent
// callers block on the descriptor's gate and all observe the same value.
// Prototype descriptors construct on every call and never keep the result.
// Session and request descriptors delegate storage to env.Store using the
// scope id carried by ctx.
//
// A failed construction leaves the descriptor UNMATERIALIZED with nothing
// cached, so the next call tries again.
func (d *Descriptor) GetInstance(ctx context.Context, env Env, g guard.Guard) (any, error) {
	switch {
	case d.Scope.Cached():
		return d.materialize(ctx, env, g)

	case d.Scope == scope.Prototype:
		d.ClearInstanceForPrototype()
		return d.constructPrototype(ctx, env, g)

	case d.Scope.External():
		id, ok := scope.IDFrom(ctx, d.Scope)
		if !ok {
			return nil, binderrors.NewScopeNotActiveError(d.Target.String(), d.Scope.String())
		}
		if env.Store == nil {
			return nil, binderrors.NewInvalidBindingError(d.Target.String(), "no scope store configured for "+d.Scope.String()+" scope")
		}
		return env.Store.GetOrCreate(d.Scope, id, d.Key(), func() (any, error) {
			return d.build(ctx, env, g)
		})

	default:
		return nil, binderrors.NewInvalidBindingError(d.Target.String(), "unsupported scope "+d.Scope.String())
	}
}

func (d *Descriptor) materialize(ctx context.Context, env Env, g guard.Guard) (any, error) {
	// Fast path: already materialized
	if v, ok := d.Instance(); ok {
		return v, nil
	}

	d.gate.Lock()
	defer d.gate.Unlock()

	// Double-check after acquiring the gate
	if v, ok := d.Instance(); ok {
		return v, nil
	}

	d.state.Store(int32(Materializing))

	v, err := d.build(ctx, env, g)
	if err != nil {
		d.state.Store(int32(Unmaterialized))
		return nil, err
	}

	d.mu.Lock()
	if !d.has {
		d.instance = v
		d.has = true
	}
	v = d.instance
	d.mu.Unlock()

	d.state.Store(int32(Materialized))
	return v, nil
}

// inflight counts concurrent prototype constructions per descriptor.
type inflight struct {
	n atomic.Int32
}

func (d *Descriptor) constructPrototype(ctx context.Context, env Env, g guard.Guard) (any, error) {
	d.building.n.Add(1)
	d.state.Store(int32(Materializing))
	defer func() {
		if d.building.n.Add(-1) == 0 {
			d.state.Store(int32(Unmaterialized))
		}
	}()

	return d.build(ctx, env, g)
}

func (d *Descriptor) construct(ctx context.Context, env Env, g guard.Guard) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v = nil
			err = &binderrors.PanicError{Value: rec}
		}
	}()

	factory := d.factory()
	switch {
	case factory != nil:
		v, err = factory(ctx, env.Resolver, g)
	case env.Instantiator != nil:
		v, err = env.Instantiator.Construct(ctx, env.Resolver, d.Implementation, g)
	default:
		return nil, binderrors.NewInvalidBindingError(d.Target.String(), "no factory or instantiator available")
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// build constructs and reports the construction to env.OnConstruct. Hook
// panics are swallowed; observers never affect resolution.
func (d *Descriptor) build(ctx context.Context, env Env, g guard.Guard) (any, error) {
	v, err := d.construct(ctx, env, g)
	if err != nil || env.OnConstruct == nil {
		return v, err
	}

	func() {
		defer func() { _ = recover() }()
		env.OnConstruct(d)
	}()
	return v, nil
}
