package registry

import (
	"sort"

	"github.com/xraph/binder/internal/binding"
	"github.com/xraph/binder/internal/types"
)

// BindingInfo is a point-in-time view of one binding.
type BindingInfo struct {
	Key            types.Key `json:"-"`
	Type           string    `json:"type"`
	Name           string    `json:"name,omitempty"`
	Implementation string    `json:"implementation"`
	Scope          string    `json:"scope"`
	State          string    `json:"state"`
	Primary        bool      `json:"primary,omitempty"`
	Priority       int       `json:"priority,omitempty"`
	Alternative    bool      `json:"alternative,omitempty"`
	Profile        string    `json:"profile,omitempty"`
	Profiles       []string  `json:"profiles,omitempty"`
	Interfaces     []string  `json:"interfaces,omitempty"`
	Declaration    string    `json:"declaration,omitempty"`
	Materialized   bool      `json:"materialized"`
	Seq            uint64    `json:"seq"`
}

// Stats summarizes registry contents.
type Stats struct {
	Bindings        int `json:"bindings"`
	Named           int `json:"named"`
	Interfaces      int `json:"interfaces"`
	Implementations int `json:"implementations"`
	Materialized    int `json:"materialized"`
	ActiveProfiles  int `json:"active_profiles"`
}

// Bindings returns every binding ordered by registration.
func (r *Registry) Bindings() []BindingInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ifaces := make(map[*binding.Descriptor][]string)
	for _, iface := range r.interfaces {
		for _, d := range r.interfaceImplementations[iface] {
			ifaces[d] = append(ifaces[d], iface.String())
		}
	}

	out := make([]BindingInfo, 0, len(r.typeBindings)+len(r.namedBindings))
	for _, d := range r.descriptors() {
		info := BindingInfo{
			Key:            d.Key(),
			Type:           d.Target.String(),
			Name:           d.Name,
			Implementation: d.Implementation.String(),
			Scope:          d.Scope.String(),
			State:          d.State().String(),
			Primary:        d.Primary,
			Priority:       d.Priority,
			Alternative:    d.Alternative,
			Profile:        d.Profile,
			Profiles:       d.Profiles,
			Interfaces:     ifaces[d],
			Declaration:    d.Provenance.Declaration,
			Materialized:   d.Materialized(),
			Seq:            d.Seq,
		}
		if p, ok := r.provenance[d.Implementation]; ok && info.Declaration == "" {
			info.Declaration = p.Declaration
		}
		out = append(out, info)
	}
	return out
}

// Interfaces returns the interface types with registered implementations in
// first-registered order.
func (r *Registry) Interfaces() []types.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Type, len(r.interfaces))
	copy(out, r.interfaces)
	return out
}

// Stats returns counts derived from the current registry contents.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{
		Bindings:       len(r.typeBindings) + len(r.namedBindings),
		Named:          len(r.namedBindings),
		Interfaces:     len(r.interfaces),
		ActiveProfiles: r.profiles.Len(),
	}
	for _, impls := range r.interfaceImplementations {
		s.Implementations += len(impls)
	}
	for _, d := range r.descriptors() {
		if d.Materialized() {
			s.Materialized++
		}
	}
	return s
}

// descriptors returns all owned descriptors sorted by Seq. Callers hold r.mu.
func (r *Registry) descriptors() []*binding.Descriptor {
	out := make([]*binding.Descriptor, 0, len(r.typeBindings)+len(r.namedBindings))
	for _, d := range r.typeBindings {
		out = append(out, d)
	}
	for _, d := range r.namedBindings {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}
