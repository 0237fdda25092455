package spec

import (
	"context"
	"fmt"

	"github.com/xraph/binder/internal/binding"
	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/instantiate"
	"github.com/xraph/binder/internal/logger"
	"github.com/xraph/binder/internal/registry"
	"github.com/xraph/binder/internal/scope"
	"github.com/xraph/binder/internal/types"
)

// Registrar is the part of the registry a Processor drives.
type Registrar interface {
	RegisterType(t types.Type, s scope.Scope, opts ...registry.RegisterOption) error
	RegisterNamedImplementation(target types.Type, name string, impl types.Type, s scope.Scope, opts ...registry.RegisterOption) error
	RegisterInterfaceImplementation(iface, impl types.Type, s scope.Scope, opts ...registry.RegisterOption) error
}

// Processor applies binding specs to a registry.
type Processor struct {
	catalog *Catalog
	logger  logger.Logger
}

// NewProcessor creates a Processor resolving type names through catalog.
func NewProcessor(catalog *Catalog, l logger.Logger) *Processor {
	if l == nil {
		l = logger.NewNoopLogger()
	}
	return &Processor{catalog: catalog, logger: l}
}

// Apply loads every source in order and registers its specs. It stops at
// the first invalid spec or failed registration.
func (p *Processor) Apply(ctx context.Context, reg Registrar, sources ...Source) (int, error) {
	applied := 0
	for _, src := range sources {
		specs, err := src.Load(ctx)
		if err != nil {
			return applied, binderrors.ErrConfigError(src.Name(), "failed to load binding specs", err)
		}
		for i, s := range specs {
			if err := p.ApplySpec(reg, s); err != nil {
				return applied, binderrors.ErrConfigError(fmt.Sprintf("%s: bindings[%d]", src.Name(), i), "invalid binding spec", err)
			}
			applied++
		}
		p.logger.Debug("binding specs applied",
			logger.String("source", src.Name()),
			logger.Int("count", len(specs)),
		)
	}
	return applied, nil
}

// ApplySpec registers a single spec.
func (p *Processor) ApplySpec(reg Registrar, s BindingSpec) error {
	if err := s.Validate(); err != nil {
		return err
	}
	sc, _ := s.ScopeValue()

	target, err := p.catalog.Lookup(s.Type)
	if err != nil {
		return err
	}
	impl, err := p.catalog.Lookup(s.ImplementationName())
	if err != nil {
		return err
	}
	ifaces := make([]types.Type, 0, len(s.Implements))
	for _, name := range s.Implements {
		t, err := p.catalog.Lookup(name)
		if err != nil {
			return err
		}
		ifaces = append(ifaces, t)
	}

	opts := Options(s)

	switch {
	case s.Name != "":
		if err := reg.RegisterNamedImplementation(target, s.Name, impl, sc, opts...); err != nil {
			return err
		}
		for _, iface := range ifaces {
			if err := reg.RegisterNamedImplementation(iface, s.Name, impl, sc, opts...); err != nil {
				return err
			}
		}
		return nil

	case target != impl:
		if err := reg.RegisterInterfaceImplementation(target, impl, sc, opts...); err != nil {
			return err
		}

	default:
		if err := reg.RegisterType(target, sc, opts...); err != nil {
			return err
		}
	}

	for _, iface := range ifaces {
		if err := reg.RegisterInterfaceImplementation(iface, impl, sc, opts...); err != nil {
			return err
		}
	}
	return nil
}

// Options converts the disambiguation fields of s to register options.
func Options(s BindingSpec) []registry.RegisterOption {
	var opts []registry.RegisterOption
	if s.Primary {
		opts = append(opts, registry.WithPriority(s.Priority))
	}
	if s.Alternative {
		opts = append(opts, registry.Alternative(s.Profile))
	}
	if len(s.Profiles) > 0 {
		opts = append(opts, registry.RequireProfiles(s.Profiles...))
	}
	if s.Factory != "" {
		opts = append(opts, registry.WithProvenance(binding.Provenance{
			Declaration: s.Factory,
			Primary:     s.Primary,
			Priority:    s.Priority,
			Alternative: s.Alternative,
			Profile:     s.Profile,
		}))
	}
	return opts
}

// DeclaredInstantiator builds a declaration-only Instantiator from the
// dependsOn fields of specs.
func DeclaredInstantiator(catalog *Catalog, specs []BindingSpec) (*instantiate.Declared, error) {
	d := instantiate.NewDeclared()
	for _, s := range specs {
		impl, err := catalog.Lookup(s.ImplementationName())
		if err != nil {
			return nil, err
		}
		deps := make([]types.Key, 0, len(s.DependsOn))
		for _, ref := range s.DependsOn {
			key, err := catalog.Dependency(ref)
			if err != nil {
				return nil, err
			}
			deps = append(deps, key)
		}
		if !d.Has(impl) || len(deps) > 0 {
			d.Declare(impl, deps...)
		}
	}
	return d, nil
}

// LoadAll loads every source and concatenates the specs.
func LoadAll(ctx context.Context, sources ...Source) ([]BindingSpec, error) {
	var all []BindingSpec
	for _, src := range sources {
		specs, err := src.Load(ctx)
		if err != nil {
			return nil, binderrors.ErrConfigError(src.Name(), "failed to load binding specs", err)
		}
		all = append(all, specs...)
	}
	return all, nil
}
