package registry

import (
	"context"
	"time"

	"github.com/xraph/binder/internal/binding"
	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/guard"
	"github.com/xraph/binder/internal/logger"
	"github.com/xraph/binder/internal/resolver"
	"github.com/xraph/binder/internal/types"
)

// Resolve returns the instance bound to t.
//
// A direct binding under t wins; otherwise the implementations registered
// for t compete through best-implementation selection; otherwise the first
// binding whose implementation type is t is used.
func (r *Registry) Resolve(t types.Type) (any, error) {
	return r.ResolveContext(context.Background(), t)
}

// ResolveContext is Resolve with a context carrying session or request scope
// ids.
func (r *Registry) ResolveContext(ctx context.Context, t types.Type) (any, error) {
	return r.resolveTop(ctx, types.KeyOf(t))
}

// ResolveNamed returns the instance bound to (t, name).
func (r *Registry) ResolveNamed(t types.Type, name string) (any, error) {
	return r.ResolveNamedContext(context.Background(), t, name)
}

// ResolveNamedContext is ResolveNamed with a context.
func (r *Registry) ResolveNamedContext(ctx context.Context, t types.Type, name string) (any, error) {
	return r.resolveTop(ctx, types.NamedKey(t, name))
}

// ResolveBestImplementation selects among the implementations registered
// for iface, falling back to a direct binding under iface when none are
// registered.
func (r *Registry) ResolveBestImplementation(iface types.Type) (any, error) {
	ctx := context.Background()
	key := types.KeyOf(iface)
	start := time.Now()

	v, err := func() (any, error) {
		g, err := guard.New().Enter(key)
		if err != nil {
			return nil, err
		}
		d, err := r.best(iface)
		if err != nil {
			return nil, err
		}
		return r.instantiate(ctx, g, key, d)
	}()

	r.finish(key, start, err)
	return v, err
}

// ResolveWith resolves key on behalf of an Instantiator building another
// binding. g must be the guard the Instantiator received.
func (r *Registry) ResolveWith(ctx context.Context, g guard.Guard, key types.Key) (any, error) {
	return r.resolveKey(ctx, g, key)
}

// Explain runs best-implementation selection for iface without constructing
// anything.
func (r *Registry) Explain(iface types.Type) (*resolver.Selection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cands := r.interfaceImplementations[iface]; len(cands) > 0 {
		return resolver.Explain(iface, cands, r.profiles, r.provenance)
	}
	if d, ok := r.typeBindings[iface]; ok {
		return &resolver.Selection{Chosen: d, Reason: resolver.ReasonDirect}, nil
	}
	return nil, binderrors.NewBindingNotFoundError(iface.String(), "")
}

func (r *Registry) resolveTop(ctx context.Context, key types.Key) (any, error) {
	start := time.Now()
	v, err := r.resolveKey(ctx, guard.New(), key)
	r.finish(key, start, err)
	return v, err
}

func (r *Registry) resolveKey(ctx context.Context, g guard.Guard, key types.Key) (any, error) {
	g, err := g.Enter(key)
	if err != nil {
		return nil, err
	}

	var d *binding.Descriptor
	if key.Name == "" {
		d, err = r.lookup(key.Type)
	} else {
		d, err = r.lookupNamed(key)
	}
	if err != nil {
		return nil, err
	}
	return r.instantiate(ctx, g, key, d)
}

func (r *Registry) instantiate(ctx context.Context, g guard.Guard, key types.Key, d *binding.Descriptor) (any, error) {
	if dk := d.Key(); dk != key {
		var err error
		if g, err = g.Enter(dk); err != nil {
			return nil, err
		}
	}

	v, err := d.GetInstance(ctx, r.env(), g)
	if err != nil {
		return nil, binderrors.NewConstructionError(key.String(), err)
	}
	return v, nil
}

func (r *Registry) lookup(t types.Type) (*binding.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.typeBindings[t]; ok {
		return d, nil
	}
	if cands := r.interfaceImplementations[t]; len(cands) > 0 {
		return resolver.Select(t, cands, r.profiles, r.provenance)
	}
	if ds := r.typeIndex[t]; len(ds) > 0 {
		return ds[0], nil
	}
	return nil, binderrors.NewBindingNotFoundError(t.String(), "")
}

func (r *Registry) lookupNamed(key types.Key) (*binding.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.namedBindings[key]; ok {
		return d, nil
	}
	if d, ok := r.interfaceNameIndex[key]; ok {
		return d, nil
	}
	if key.Type.IsInterface() {
		for _, d := range r.nameIndex[key.Name] {
			if d.Implementation.Implements(key.Type) {
				return d, nil
			}
		}
	}
	return nil, binderrors.NewBindingNotFoundError(key.Type.String(), key.Name)
}

func (r *Registry) best(iface types.Type) (*binding.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cands := r.interfaceImplementations[iface]; len(cands) > 0 {
		return resolver.Select(iface, cands, r.profiles, r.provenance)
	}
	if d, ok := r.typeBindings[iface]; ok {
		return d, nil
	}
	return nil, binderrors.NewBindingNotFoundError(iface.String(), "")
}

func (r *Registry) finish(key types.Key, start time.Time, err error) {
	elapsed := time.Since(start)
	if err != nil && binderrors.Code(err) == binderrors.CodeConstructionFailed {
		r.logger.Warn("construction failed",
			logger.Key(key),
			logger.Error(err),
		)
	}
	r.notify(func(o Observer) { o.Resolved(key, elapsed, err) })
}
