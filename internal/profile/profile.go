// Package profile models the immutable set of active configuration profiles.
package profile

import (
	"slices"
	"strings"
)

// Set is an immutable snapshot of enabled profile names.
// The zero Set is empty and ready to use.
type Set struct {
	names map[string]struct{}
}

// NewSet builds a Set from names. Blank entries are ignored and names are trimmed.
func NewSet(names ...string) Set {
	s := Set{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		s.names[n] = struct{}{}
	}
	return s
}

// Parse builds a Set from a comma separated list such as "dev,beta".
func Parse(list string) Set {
	return NewSet(strings.Split(list, ",")...)
}

// Active reports whether name is enabled.
func (s Set) Active(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Eligible reports whether something gated on profile may participate.
// An empty profile is always eligible.
func (s Set) Eligible(profile string) bool {
	return profile == "" || s.Active(profile)
}

// Intersects reports whether any of required is active. An empty requirement
// always intersects.
func (s Set) Intersects(required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if s.Active(r) {
			return true
		}
	}
	return false
}

// Len returns the number of active profiles.
func (s Set) Len() int { return len(s.names) }

// Names returns the active profiles in sorted order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// String returns "{a,b}".
func (s Set) String() string {
	return "{" + strings.Join(s.Names(), ",") + "}"
}
