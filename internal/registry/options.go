package registry

import (
	"github.com/xraph/binder/internal/binding"
	"github.com/xraph/binder/internal/scope"
)

// RegisterOption customizes a single registration.
type RegisterOption func(*registration)

type registration struct {
	scope       scope.Scope
	scopeSet    bool
	primary     bool
	priority    int
	alternative bool
	profile     string
	profiles    []string
	provenance  binding.Provenance
	factory     binding.Factory
}

func mergeOptions(opts []RegisterOption) registration {
	var reg registration
	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}
	return reg
}

// WithScope overrides the scope inferred by RegisterInstance.
func WithScope(s scope.Scope) RegisterOption {
	return func(r *registration) {
		r.scope = s
		r.scopeSet = true
	}
}

// Primary marks the binding as the preferred implementation of its interfaces.
func Primary() RegisterOption {
	return func(r *registration) { r.primary = true }
}

// WithPriority marks the binding primary with the given priority. Higher wins.
func WithPriority(priority int) RegisterOption {
	return func(r *registration) {
		r.primary = true
		r.priority = priority
	}
}

// Alternative marks the binding as a fallback that only participates while
// profile is active. An empty profile is always eligible.
func Alternative(profile string) RegisterOption {
	return func(r *registration) {
		r.alternative = true
		r.profile = profile
	}
}

// RequireProfiles skips the registration unless one of names is active.
func RequireProfiles(names ...string) RegisterOption {
	return func(r *registration) { r.profiles = append(r.profiles, names...) }
}

// WithProvenance records the declaration that produced the binding.
func WithProvenance(p binding.Provenance) RegisterOption {
	return func(r *registration) { r.provenance = p }
}

// WithFactory constructs the binding with f instead of the registry's
// Instantiator.
func WithFactory(f binding.Factory) RegisterOption {
	return func(r *registration) { r.factory = f }
}

func (reg registration) apply(d *binding.Descriptor) {
	d.Primary = reg.primary
	d.Priority = reg.priority
	d.Alternative = reg.alternative
	d.Profile = reg.profile
	d.Profiles = reg.profiles
	d.Provenance = reg.provenance
	d.Factory = reg.factory
}

// merge folds flags of a later registration into an existing descriptor
// without clearing anything already set. It reports whether d changed.
func (reg registration) merge(d *binding.Descriptor) bool {
	return d.Update(func(d *binding.Descriptor) bool {
		changed := false
		if reg.primary && !d.Primary {
			d.Primary = true
			d.Priority = reg.priority
			changed = true
		}
		if reg.alternative && !d.Alternative {
			d.Alternative = true
			d.Profile = reg.profile
			changed = true
		}
		if d.Provenance.IsZero() && !reg.provenance.IsZero() {
			d.Provenance = reg.provenance
			changed = true
		}
		if d.Factory == nil && reg.factory != nil {
			d.Factory = reg.factory
			changed = true
		}
		return changed
	})
}
