package registry

import (
	"reflect"

	"github.com/xraph/binder/internal/binding"
	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/logger"
	"github.com/xraph/binder/internal/scope"
	"github.com/xraph/binder/internal/types"
)

// RegisterType installs a direct binding for t. Registering a type that
// already has a direct binding is a no-op, as is a registration whose
// required profiles are all inactive.
func (r *Registry) RegisterType(t types.Type, s scope.Scope, opts ...RegisterOption) error {
	if t.IsZero() {
		return binderrors.NewInvalidBindingError(t.String(), "type is required")
	}
	reg := mergeOptions(opts)
	if !r.profiles.Intersects(reg.profiles) {
		r.skipped(types.KeyOf(t), reg.profiles)
		return nil
	}

	r.mu.Lock()
	if _, exists := r.typeBindings[t]; exists {
		r.mu.Unlock()
		return nil
	}
	d := r.newDescriptor(t, t, "", s, reg)
	r.typeBindings[t] = d
	r.index(d)
	r.mu.Unlock()

	r.registered(d)
	return nil
}

// RegisterInstance installs a binding for t whose instance is supplied by the
// caller. An existing binding that is not yet materialized receives the
// instance; a materialized one is left untouched.
//
// Unless WithScope is given, the scope is SINGLETON when the Instantiator
// reports no constructor dependencies for the instance's type and PROTOTYPE
// otherwise.
func (r *Registry) RegisterInstance(t types.Type, instance any, opts ...RegisterOption) error {
	if t.IsZero() {
		return binderrors.NewInvalidBindingError(t.String(), "type is required")
	}
	reg := mergeOptions(opts)
	if !r.profiles.Intersects(reg.profiles) {
		r.skipped(types.KeyOf(t), reg.profiles)
		return nil
	}

	impl := t
	if instance != nil && t.IsInterface() {
		impl = types.FromReflect(reflect.TypeOf(instance))
	}
	if !impl.Implements(t) {
		return binderrors.NewInvalidBindingError(t.String(), "instance of "+impl.String()+" does not satisfy "+t.String())
	}

	r.mu.Lock()
	if d, exists := r.typeBindings[t]; exists {
		r.mu.Unlock()
		if !d.SetInstance(instance) {
			r.logger.Debug("instance ignored, binding already materialized", logger.Type(t))
			return nil
		}
		r.registered(d)
		return nil
	}

	s := reg.scope
	if !reg.scopeSet {
		s = r.inferScope(impl)
	}

	d := r.newDescriptor(t, impl, "", s, reg)
	d.SetInstance(instance)
	r.typeBindings[t] = d
	r.index(d)
	r.mu.Unlock()

	r.registered(d)
	return nil
}

// RegisterNamed installs a binding for t qualified by name and registers it
// against every known interface t satisfies.
func (r *Registry) RegisterNamed(t types.Type, name string, s scope.Scope, opts ...RegisterOption) error {
	return r.RegisterNamedImplementation(t, name, t, s, opts...)
}

// RegisterNamedImplementation installs a binding keyed by (target, name) that
// constructs impl. The binding is registered as an implementation of target
// when target is not impl itself, and of every other known interface impl
// satisfies. Registering an existing (target, name) pair is a no-op.
func (r *Registry) RegisterNamedImplementation(target types.Type, name string, impl types.Type, s scope.Scope, opts ...RegisterOption) error {
	if target.IsZero() || impl.IsZero() {
		return binderrors.NewInvalidBindingError(target.String(), "target and implementation types are required")
	}
	if name == "" {
		return binderrors.NewInvalidBindingError(target.String(), "name is required")
	}
	if !impl.Implements(target) {
		return binderrors.NewInvalidBindingError(target.String(), impl.String()+" does not satisfy "+target.String())
	}
	reg := mergeOptions(opts)
	key := types.NamedKey(target, name)
	if !r.profiles.Intersects(reg.profiles) {
		r.skipped(key, reg.profiles)
		return nil
	}

	r.mu.Lock()
	if _, exists := r.namedBindings[key]; exists {
		r.mu.Unlock()
		return nil
	}

	d := r.newDescriptor(target, impl, name, s, reg)
	r.namedBindings[key] = d
	r.index(d)

	if target != impl {
		r.addImplementation(target, d)
	}
	for _, iface := range r.interfaces {
		if iface != target && iface.IsInterface() && impl.Implements(iface) {
			r.addImplementation(iface, d)
		}
	}
	r.mu.Unlock()

	r.registered(d)
	return nil
}

// RegisterInterfaceImplementation records impl as one implementer of iface.
// The implementation's direct binding is created with scope s if it does not
// exist yet and shared otherwise, so resolving iface and impl yield the same
// singleton.
func (r *Registry) RegisterInterfaceImplementation(iface, impl types.Type, s scope.Scope, opts ...RegisterOption) error {
	if iface.IsZero() || impl.IsZero() {
		return binderrors.NewInvalidBindingError(iface.String(), "interface and implementation types are required")
	}
	if iface == impl {
		return binderrors.NewInvalidBindingError(iface.String(), "a type cannot implement itself")
	}
	if !impl.Implements(iface) {
		return binderrors.NewInvalidBindingError(iface.String(), impl.String()+" does not satisfy "+iface.String())
	}
	reg := mergeOptions(opts)
	if !r.profiles.Intersects(reg.profiles) {
		r.skipped(types.KeyOf(iface), reg.profiles)
		return nil
	}

	r.mu.Lock()
	changed := true
	d, exists := r.typeBindings[impl]
	if exists {
		changed = reg.merge(d)
	} else {
		d = r.newDescriptor(impl, impl, "", s, reg)
		r.typeBindings[impl] = d
	}
	if !reg.provenance.IsZero() && r.provenance[impl] != reg.provenance {
		r.provenance[impl] = reg.provenance
		changed = true
	}
	r.index(d)
	if r.addImplementation(iface, d) {
		changed = true
	}
	r.mu.Unlock()

	if changed {
		r.registered(d)
	}
	return nil
}

func (r *Registry) newDescriptor(target, impl types.Type, name string, s scope.Scope, reg registration) *binding.Descriptor {
	r.seq++
	d := &binding.Descriptor{
		Target:         target,
		Implementation: impl,
		Name:           name,
		Scope:          s,
		Seq:            r.seq,
	}
	reg.apply(d)
	return d
}

// inferScope returns PROTOTYPE when impl's constructor takes dependencies.
func (r *Registry) inferScope(impl types.Type) scope.Scope {
	in, ok := r.instantiator.(binding.Inspector)
	if !ok {
		return scope.Singleton
	}
	deps, known := in.Dependencies(impl)
	if known && len(deps) > 0 {
		return scope.Prototype
	}
	return scope.Singleton
}

// addImplementation appends d to iface's implementers unless present and
// reports whether it was added. Callers hold r.mu.
func (r *Registry) addImplementation(iface types.Type, d *binding.Descriptor) bool {
	impls, known := r.interfaceImplementations[iface]
	for _, existing := range impls {
		if existing == d {
			return false
		}
	}
	if !known {
		r.interfaces = append(r.interfaces, iface)
	}
	r.interfaceImplementations[iface] = append(impls, d)

	if d.Name != "" {
		k := types.NamedKey(iface, d.Name)
		if _, taken := r.interfaceNameIndex[k]; !taken {
			r.interfaceNameIndex[k] = d
		}
	}
	return true
}

// index adds d to the derived indices. Callers hold r.mu.
func (r *Registry) index(d *binding.Descriptor) {
	for _, existing := range r.typeIndex[d.Implementation] {
		if existing == d {
			return
		}
	}
	r.typeIndex[d.Implementation] = append(r.typeIndex[d.Implementation], d)

	if d.Name != "" {
		r.nameIndex[d.Name] = append(r.nameIndex[d.Name], d)
		r.interfaceNameIndex[d.Key()] = d
	}
}

// registered logs and notifies the observer. Callers must not hold r.mu.
func (r *Registry) registered(d *binding.Descriptor) {
	r.logger.Debug("binding registered",
		logger.Key(d.Key()),
		logger.String("implementation", d.Implementation.String()),
		logger.String("scope", d.Scope.String()),
	)
	r.notify(func(o Observer) { o.Registered(d.Key(), d.Scope) })
}

func (r *Registry) skipped(key types.Key, required []string) {
	r.logger.Debug("registration skipped, profiles inactive",
		logger.Key(key),
		logger.Strings("required", required),
		logger.String("active", r.profiles.String()),
	)
}
