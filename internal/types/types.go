// Package types provides the comparable type descriptors used as binding keys.
//
// A Type usually wraps a reflect.Type. Declaration-only tooling (dry runs over a
// binding spec file) can also build a Type from a bare name, in which case no
// reflection information is available and interface satisfaction is decided by
// the caller.
package types

import (
	"reflect"
)

// Type identifies something a binding can satisfy.
type Type struct {
	name string
	rt   reflect.Type
}

// Of returns the Type for T. Use Of[Iface]() for interfaces.
func Of[T any]() Type {
	return FromReflect(reflect.TypeFor[T]())
}

// FromReflect wraps a reflect.Type.
func FromReflect(rt reflect.Type) Type {
	if rt == nil {
		return Type{}
	}
	return Type{name: rt.String(), rt: rt}
}

// Named returns a declaration-only Type identified by name.
func Named(name string) Type {
	return Type{name: name}
}

// String returns the display name of the type.
func (t Type) String() string {
	if t.name == "" {
		return "<nil>"
	}
	return t.name
}

// Reflect returns the underlying reflect.Type, or nil for named types.
func (t Type) Reflect() reflect.Type { return t.rt }

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool { return t.name == "" && t.rt == nil }

// IsNamed reports whether t carries no reflection information.
func (t Type) IsNamed() bool { return t.rt == nil && t.name != "" }

// IsInterface reports whether t is a Go interface type.
// Named types are never considered interfaces.
func (t Type) IsInterface() bool {
	return t.rt != nil && t.rt.Kind() == reflect.Interface
}

// Implements reports whether t satisfies iface.
//
// When either side is declaration-only the answer cannot be computed and
// Implements returns true, deferring the decision to whoever declared the
// relationship.
func (t Type) Implements(iface Type) bool {
	if t.rt == nil || iface.rt == nil {
		return !t.IsZero() && !iface.IsZero()
	}
	if iface.rt.Kind() != reflect.Interface {
		return t.rt == iface.rt
	}
	return t.rt.Implements(iface.rt)
}

// Key identifies a binding: a type plus an optional qualifying name.
type Key struct {
	Type Type
	Name string
}

// KeyOf returns an unnamed Key for t.
func KeyOf(t Type) Key { return Key{Type: t} }

// NamedKey returns a Key for t qualified by name.
func NamedKey(t Type, name string) Key { return Key{Type: t, Name: name} }

// String returns "type" or "type[name=...]".
func (k Key) String() string {
	if k.Name == "" {
		return k.Type.String()
	}
	return k.Type.String() + "[name=" + k.Name + "]"
}

// Names returns the display names of ts, preserving order.
func Names(ts []Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}
