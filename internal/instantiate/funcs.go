package instantiate

import (
	"context"
	"sync"

	"github.com/xraph/binder/internal/binding"
	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/guard"
	"github.com/xraph/binder/internal/types"
)

// Func builds one implementation type. It resolves its own dependencies
// through r, passing g along.
type Func func(ctx context.Context, r binding.Resolver, g guard.Guard) (any, error)

// Funcs is a table of builder closures keyed by implementation type.
type Funcs struct {
	mu    sync.RWMutex
	funcs map[types.Type]entry
}

type entry struct {
	fn   Func
	deps []types.Key
}

// NewFuncs creates an empty table.
func NewFuncs() *Funcs {
	return &Funcs{funcs: make(map[types.Type]entry)}
}

// Set registers fn for impl. deps are reported by Dependencies and are
// informational only; fn resolves whatever it needs.
func (f *Funcs) Set(impl types.Type, fn Func, deps ...types.Key) *Funcs {
	f.mu.Lock()
	f.funcs[impl] = entry{fn: fn, deps: deps}
	f.mu.Unlock()
	return f
}

// Has reports whether a builder for impl is registered.
func (f *Funcs) Has(impl types.Type) bool {
	_, ok := f.get(impl)
	return ok
}

// Dependencies implements binding.Inspector.
func (f *Funcs) Dependencies(impl types.Type) ([]types.Key, bool) {
	e, ok := f.get(impl)
	if !ok {
		return nil, false
	}
	return append([]types.Key(nil), e.deps...), true
}

// Construct implements binding.Instantiator.
func (f *Funcs) Construct(ctx context.Context, r binding.Resolver, impl types.Type, g guard.Guard) (any, error) {
	e, ok := f.get(impl)
	if !ok {
		return nil, binderrors.NewInvalidBindingError(impl.String(), "no builder registered")
	}
	return e.fn(ctx, r, g)
}

func (f *Funcs) get(impl types.Type) (entry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.funcs[impl]
	return e, ok
}
