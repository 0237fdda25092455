// Package resolver selects the best implementation of an interface among
// competing candidates.
//
// Selection order: the highest priority primary, then the first regular
// candidate, then the first profile-eligible alternative. Ties between
// primaries are configuration errors.
package resolver

import (
	"github.com/xraph/binder/internal/binding"
	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/profile"
	"github.com/xraph/binder/internal/types"
)

// Candidate is a descriptor with its effective disambiguation flags.
type Candidate struct {
	Descriptor  *binding.Descriptor
	Primary     bool
	Priority    int
	Alternative bool
	Profile     string
}

// Selection is the outcome of Select with the buckets it was chosen from.
type Selection struct {
	Chosen       *binding.Descriptor
	Reason       string
	Primaries    []Candidate
	Regulars     []Candidate
	Alternatives []Candidate
	// Excluded lists alternatives dropped by profile filtering.
	Excluded []Candidate
}

// Reasons reported in Selection.Reason.
const (
	ReasonPrimary     = "primary"
	ReasonRegular     = "regular"
	ReasonAlternative = "alternative"
	// ReasonDirect is used by callers that fall back to a direct binding.
	ReasonDirect = "direct"
)

// Select picks the descriptor to use for iface. Candidates must be in the
// order they joined iface's implementation set, which decides regular and
// alternative tie-breaks; provenance, keyed by implementation type, supplies
// flags the descriptors do not carry themselves.
func Select(iface types.Type, candidates []*binding.Descriptor, profiles profile.Set, provenance map[types.Type]binding.Provenance) (*binding.Descriptor, error) {
	sel, err := Explain(iface, candidates, profiles, provenance)
	if err != nil {
		return nil, err
	}
	return sel.Chosen, nil
}

// Explain runs the selection and returns the partitioned candidates along
// with the choice.
func Explain(iface types.Type, candidates []*binding.Descriptor, profiles profile.Set, provenance map[types.Type]binding.Provenance) (*Selection, error) {
	sel := &Selection{}

	for _, c := range dedupe(candidates) {
		eff := effective(c, provenance)
		switch {
		case eff.Primary:
			sel.Primaries = append(sel.Primaries, eff)
		case eff.Alternative:
			if profiles.Eligible(eff.Profile) {
				sel.Alternatives = append(sel.Alternatives, eff)
			} else {
				sel.Excluded = append(sel.Excluded, eff)
			}
		default:
			sel.Regulars = append(sel.Regulars, eff)
		}
	}

	switch {
	case len(sel.Primaries) > 0:
		top := topPriority(sel.Primaries)
		if len(top) > 1 {
			impls := make([]string, len(top))
			for i, c := range top {
				impls[i] = c.Descriptor.Implementation.String()
			}
			return sel, binderrors.NewAmbiguousBindingError(iface.String(), impls, top[0].Priority)
		}
		sel.Chosen, sel.Reason = top[0].Descriptor, ReasonPrimary

	case len(sel.Regulars) > 0:
		sel.Chosen, sel.Reason = sel.Regulars[0].Descriptor, ReasonRegular

	case len(sel.Alternatives) > 0:
		sel.Chosen, sel.Reason = sel.Alternatives[0].Descriptor, ReasonAlternative

	default:
		names := make([]string, 0, len(sel.Excluded))
		for _, c := range sel.Excluded {
			names = append(names, c.Descriptor.Implementation.String())
		}
		return sel, binderrors.NewNoEligibleImplementationError(iface.String(), names, profiles.Names())
	}

	return sel, nil
}

// dedupe drops later descriptors sharing an implementation type, keeping
// the input order.
func dedupe(candidates []*binding.Descriptor) []*binding.Descriptor {
	seen := make(map[types.Type]struct{}, len(candidates))
	out := make([]*binding.Descriptor, 0, len(candidates))
	for _, d := range candidates {
		if d == nil {
			continue
		}
		if _, ok := seen[d.Implementation]; ok {
			continue
		}
		seen[d.Implementation] = struct{}{}
		out = append(out, d)
	}
	return out
}

func effective(d *binding.Descriptor, provenance map[types.Type]binding.Provenance) Candidate {
	c := Candidate{
		Descriptor:  d,
		Primary:     d.Primary,
		Priority:    d.Priority,
		Alternative: d.Alternative,
		Profile:     d.Profile,
	}

	p := d.Provenance
	if p.IsZero() {
		p = provenance[d.Implementation]
	}
	if p.IsZero() {
		return c
	}

	if !c.Primary && p.Primary {
		c.Primary = true
		if c.Priority == 0 {
			c.Priority = p.Priority
		}
	}
	if !c.Alternative && p.Alternative {
		c.Alternative = true
	}
	if c.Profile == "" {
		c.Profile = p.Profile
	}
	return c
}

// topPriority returns the primaries sharing the highest priority, in order.
func topPriority(primaries []Candidate) []Candidate {
	best := primaries[0].Priority
	for _, c := range primaries[1:] {
		if c.Priority > best {
			best = c.Priority
		}
	}
	var top []Candidate
	for _, c := range primaries {
		if c.Priority == best {
			top = append(top, c)
		}
	}
	return top
}
