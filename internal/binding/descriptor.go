// Package binding holds the binding descriptor and its scope lifecycle.
//
// A Descriptor is a single resolvable rule. Its lifecycle decides whether
// GetInstance reuses a materialized value or constructs a new one:
//
//	singleton, application: UNMATERIALIZED -> MATERIALIZING -> MATERIALIZED
//	prototype:              UNMATERIALIZED -> MATERIALIZING -> UNMATERIALIZED
//	session, request:       stateless; instances live in a scope.Store
package binding

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/xraph/binder/internal/guard"
	"github.com/xraph/binder/internal/scope"
	"github.com/xraph/binder/internal/types"
)

// State is the materialization state of a descriptor.
type State int32

const (
	Unmaterialized State = iota
	Materializing
	Materialized
)

// String returns the upper-case state name.
func (s State) String() string {
	switch s {
	case Unmaterialized:
		return "UNMATERIALIZED"
	case Materializing:
		return "MATERIALIZING"
	case Materialized:
		return "MATERIALIZED"
	default:
		return "UNKNOWN"
	}
}

// Resolver is the callback surface an Instantiator uses to resolve its own
// dependencies. The guard received by Construct must be passed through.
type Resolver interface {
	ResolveWith(ctx context.Context, g guard.Guard, key types.Key) (any, error)
}

// Instantiator builds instances of implementation types.
type Instantiator interface {
	Construct(ctx context.Context, r Resolver, impl types.Type, g guard.Guard) (any, error)
}

// InstantiatorFunc adapts a function to Instantiator.
type InstantiatorFunc func(ctx context.Context, r Resolver, impl types.Type, g guard.Guard) (any, error)

// Construct implements Instantiator.
func (f InstantiatorFunc) Construct(ctx context.Context, r Resolver, impl types.Type, g guard.Guard) (any, error) {
	return f(ctx, r, impl, g)
}

// Inspector is optionally implemented by an Instantiator to report the
// dependencies its constructor for impl would resolve.
type Inspector interface {
	Dependencies(impl types.Type) ([]types.Key, bool)
}

// Factory builds the instance for one descriptor, overriding the Instantiator.
type Factory func(ctx context.Context, r Resolver, g guard.Guard) (any, error)

// Provenance points back at the declaration that produced a binding. It is
// consulted for disambiguation only, never for construction.
type Provenance struct {
	Declaration string
	Primary     bool
	Priority    int
	Alternative bool
	Profile     string
}

// IsZero reports whether p carries no information.
func (p Provenance) IsZero() bool { return p == Provenance{} }

// Descriptor is a single resolvable rule.
type Descriptor struct {
	Target         types.Type
	Implementation types.Type
	Name           string
	Scope          scope.Scope

	Primary     bool
	Priority    int
	Alternative bool
	Profile     string

	// Profiles gates registration: at least one must be active.
	Profiles   []string
	Provenance Provenance
	Factory    Factory

	// Seq is the registration order assigned by the registry.
	Seq uint64

	state    atomic.Int32
	building inflight
	mu       sync.RWMutex
	gate     sync.Mutex
	instance any
	has      bool
}

// Key returns the key the descriptor is registered under.
func (d *Descriptor) Key() types.Key {
	return types.Key{Type: d.Target, Name: d.Name}
}

// ImplementationKey returns the unnamed key of the implementation type.
func (d *Descriptor) ImplementationKey() types.Key {
	return types.KeyOf(d.Implementation)
}

// State returns the current materialization state.
func (d *Descriptor) State() State {
	return State(d.state.Load())
}

// Instance returns the cached instance, if any.
func (d *Descriptor) Instance() (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.instance, d.has
}

// Materialized reports whether an instance is cached on the descriptor.
func (d *Descriptor) Materialized() bool {
	_, ok := d.Instance()
	return ok
}

// SetInstance stores a pre-supplied instance. It returns false without
// changing anything when the descriptor is already materialized.
func (d *Descriptor) SetInstance(v any) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.has && d.Scope.Cached() {
		return false
	}
	d.instance = v
	d.has = true
	if d.Scope.Cached() {
		d.state.Store(int32(Materialized))
	}
	return true
}

// Update runs fn with the descriptor locked against concurrent construction
// and returns its result. Registrations that change flags or the factory of
// a published descriptor go through Update.
func (d *Descriptor) Update(fn func(d *Descriptor) bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d)
}

func (d *Descriptor) factory() Factory {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.Factory
}

// ClearInstanceForPrototype drops any instance left on a prototype descriptor.
func (d *Descriptor) ClearInstanceForPrototype() {
	if d.Scope != scope.Prototype {
		return
	}
	d.mu.Lock()
	d.instance = nil
	d.has = false
	d.mu.Unlock()
	d.state.Store(int32(Unmaterialized))
}
