package instantiate

import (
	"context"
	"sync"

	"github.com/xraph/binder/internal/binding"
	"github.com/xraph/binder/internal/guard"
	"github.com/xraph/binder/internal/types"
)

// Placeholder stands in for an instance during a declaration-only dry run.
type Placeholder struct {
	Type types.Type
	Deps []any
}

// Declared is an Instantiator for binding graphs known only by declaration.
// Construct resolves every declared dependency, which exercises selection,
// profiles and cycle detection, and returns a Placeholder.
type Declared struct {
	mu   sync.RWMutex
	deps map[types.Type][]types.Key
}

// NewDeclared creates an empty declaration table.
func NewDeclared() *Declared {
	return &Declared{deps: make(map[types.Type][]types.Key)}
}

// Declare records the dependencies of impl.
func (d *Declared) Declare(impl types.Type, deps ...types.Key) *Declared {
	d.mu.Lock()
	d.deps[impl] = append([]types.Key(nil), deps...)
	d.mu.Unlock()
	return d
}

// Has reports whether impl was declared.
func (d *Declared) Has(impl types.Type) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.deps[impl]
	return ok
}

// Dependencies implements binding.Inspector.
func (d *Declared) Dependencies(impl types.Type) ([]types.Key, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	deps, ok := d.deps[impl]
	if !ok {
		return nil, false
	}
	return append([]types.Key(nil), deps...), true
}

// Construct implements binding.Instantiator. Undeclared types build a
// Placeholder without dependencies.
func (d *Declared) Construct(ctx context.Context, r binding.Resolver, impl types.Type, g guard.Guard) (any, error) {
	deps, _ := d.Dependencies(impl)

	p := &Placeholder{Type: impl, Deps: make([]any, 0, len(deps))}
	for _, key := range deps {
		v, err := r.ResolveWith(ctx, g, key)
		if err != nil {
			return nil, err
		}
		p.Deps = append(p.Deps, v)
	}
	return p, nil
}
