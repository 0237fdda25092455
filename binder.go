package binder

import (
	"context"
	"fmt"

	"github.com/xraph/binder/internal/binding"
	"github.com/xraph/binder/internal/guard"
	"github.com/xraph/binder/internal/instantiate"
	"github.com/xraph/binder/internal/profile"
	"github.com/xraph/binder/internal/registry"
	"github.com/xraph/binder/internal/scope"
	"github.com/xraph/binder/internal/types"
)

// Core types.
type (
	Registry       = registry.Registry
	Option         = registry.Option
	RegisterOption = registry.RegisterOption
	Observer       = registry.Observer
	BindingInfo    = registry.BindingInfo
	Stats          = registry.Stats

	Type  = types.Type
	Key   = types.Key
	Scope = scope.Scope
	Guard = guard.Guard

	Resolver     = binding.Resolver
	Instantiator = binding.Instantiator
	Factory      = binding.Factory
	Provenance   = binding.Provenance

	Profiles = profile.Set
)

// Scopes.
const (
	Singleton   = scope.Singleton
	Prototype   = scope.Prototype
	Application = scope.Application
	Session     = scope.Session
	Request     = scope.Request
)

// Registry options.
var (
	WithProfiles     = registry.WithProfiles
	WithInstantiator = registry.WithInstantiator
	WithScopeStore   = registry.WithScopeStore
	WithLogger       = registry.WithLogger
	WithObserver     = registry.WithObserver
)

// Registration options.
var (
	WithScope       = registry.WithScope
	Primary         = registry.Primary
	WithPriority    = registry.WithPriority
	Alternative     = registry.Alternative
	RequireProfiles = registry.RequireProfiles
	WithProvenance  = registry.WithProvenance
	WithFactory     = registry.WithFactory
)

// Instantiators.
var (
	NewConstructors = instantiate.NewConstructors
	NewFuncs        = instantiate.NewFuncs
	NewDeclared     = instantiate.NewDeclared
)

// Scope and profile helpers.
var (
	NewProfiles    = profile.NewSet
	ParseProfiles  = profile.Parse
	ParseScope     = scope.Parse
	NewMemoryStore = scope.NewMemoryStore
	WithSession    = scope.WithSession
	WithRequest    = scope.WithRequest
	BeginSession   = scope.BeginSession
	BeginRequest   = scope.BeginRequest
	NamedType      = types.Named
)

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	return registry.New(opts...)
}

// TypeOf returns the Type of T. Use TypeOf[Iface]() for interfaces.
func TypeOf[T any]() Type {
	return types.Of[T]()
}

// Resolve resolves T and asserts the result.
func Resolve[T any](r *Registry) (T, error) {
	return ResolveContext[T](context.Background(), r)
}

// ResolveContext resolves T with a context carrying scope ids.
func ResolveContext[T any](ctx context.Context, r *Registry) (T, error) {
	v, err := r.ResolveContext(ctx, types.Of[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v)
}

// ResolveNamed resolves (T, name) and asserts the result.
func ResolveNamed[T any](r *Registry, name string) (T, error) {
	v, err := r.ResolveNamed(types.Of[T](), name)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v)
}

// MustResolve is Resolve that panics on error.
func MustResolve[T any](r *Registry) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

// RegisterType installs a direct binding for T.
func RegisterType[T any](r *Registry, s Scope, opts ...RegisterOption) error {
	return r.RegisterType(types.Of[T](), s, opts...)
}

// RegisterInstance binds T to a pre-built instance.
func RegisterInstance[T any](r *Registry, instance T, opts ...RegisterOption) error {
	return r.RegisterInstance(types.Of[T](), instance, opts...)
}

// RegisterNamed installs a binding for T qualified by name.
func RegisterNamed[T any](r *Registry, name string, s Scope, opts ...RegisterOption) error {
	return r.RegisterNamed(types.Of[T](), name, s, opts...)
}

// RegisterImplementation records Impl as an implementation of the interface I.
func RegisterImplementation[I, Impl any](r *Registry, s Scope, opts ...RegisterOption) error {
	return r.RegisterInterfaceImplementation(types.Of[I](), types.Of[Impl](), s, opts...)
}

// Provide registers fn as the factory of T. fn receives the resolution
// context, the resolver and the guard to thread through its own lookups.
func Provide[T any](r *Registry, s Scope, fn func(ctx context.Context, res Resolver, g Guard) (T, error), opts ...RegisterOption) error {
	factory := func(ctx context.Context, res binding.Resolver, g guard.Guard) (any, error) {
		v, err := fn(ctx, res, g)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return r.RegisterType(types.Of[T](), s, append(opts, WithFactory(factory))...)
}

// Inject resolves T from inside a factory, threading g.
func Inject[T any](ctx context.Context, res Resolver, g Guard) (T, error) {
	v, err := res.ResolveWith(ctx, g, types.KeyOf(types.Of[T]()))
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v)
}

func cast[T any](v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("resolved %T is not a %s", v, types.Of[T]())
	}
	return t, nil
}
