// Package registry owns binding descriptors, their lookup indices and the
// resolution entry points.
//
// Registration and resolution may run concurrently. The registry's maps are
// guarded by a single RWMutex that is never held while an instance is being
// constructed; construction is serialized per descriptor instead, so a slow
// constructor only blocks callers waiting on that same binding.
package registry

import (
	"sync"

	"github.com/xraph/binder/internal/binding"
	"github.com/xraph/binder/internal/logger"
	"github.com/xraph/binder/internal/profile"
	"github.com/xraph/binder/internal/scope"
	"github.com/xraph/binder/internal/types"
)

// Registry holds every binding of one container.
type Registry struct {
	mu sync.RWMutex

	typeBindings             map[types.Type]*binding.Descriptor
	namedBindings            map[types.Key]*binding.Descriptor
	interfaceImplementations map[types.Type][]*binding.Descriptor
	provenance               map[types.Type]binding.Provenance

	// derived indices
	nameIndex          map[string][]*binding.Descriptor
	interfaceNameIndex map[types.Key]*binding.Descriptor
	typeIndex          map[types.Type][]*binding.Descriptor

	// interfaces lists known interface types in first-seen order.
	interfaces []types.Type
	seq        uint64

	profiles     profile.Set
	instantiator binding.Instantiator
	store        scope.Store
	logger       logger.Logger
	observer     Observer
}

// Option configures a Registry.
type Option func(*Registry)

// WithProfiles sets the active profile set.
func WithProfiles(p profile.Set) Option {
	return func(r *Registry) { r.profiles = p }
}

// WithInstantiator sets the object construction strategy.
func WithInstantiator(i binding.Instantiator) Option {
	return func(r *Registry) { r.instantiator = i }
}

// WithScopeStore sets the store used for session and request scoped bindings.
func WithScopeStore(s scope.Store) Option {
	return func(r *Registry) { r.store = s }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver sets the observer notified of registrations, resolutions and
// constructions.
func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		profiles: profile.NewSet(),
		store:    scope.NewMemoryStore(),
		logger:   logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.reset()
	return r
}

// Profiles returns the active profile set.
func (r *Registry) Profiles() profile.Set { return r.profiles }

// Store returns the scope store.
func (r *Registry) Store() scope.Store { return r.store }

// Clear drops all bindings, indices and cached instances.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.reset()
	r.mu.Unlock()

	if s, ok := r.store.(interface{ Reset() }); ok {
		s.Reset()
	}
	r.logger.Debug("registry cleared")
}

func (r *Registry) reset() {
	r.typeBindings = make(map[types.Type]*binding.Descriptor)
	r.namedBindings = make(map[types.Key]*binding.Descriptor)
	r.interfaceImplementations = make(map[types.Type][]*binding.Descriptor)
	r.provenance = make(map[types.Type]binding.Provenance)
	r.nameIndex = make(map[string][]*binding.Descriptor)
	r.interfaceNameIndex = make(map[types.Key]*binding.Descriptor)
	r.typeIndex = make(map[types.Type][]*binding.Descriptor)
	r.interfaces = nil
	r.seq = 0
}

func (r *Registry) env() binding.Env {
	return binding.Env{
		Resolver:     r,
		Instantiator: r.instantiator,
		Store:        r.store,
		OnConstruct:  r.constructed,
	}
}
