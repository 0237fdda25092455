// Package inspect renders point-in-time snapshots of a registry.
package inspect

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	json "github.com/json-iterator/go"

	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/registry"
	"github.com/xraph/binder/internal/resolver"
)

// Snapshot captures bindings, statistics and interface selections.
type Snapshot struct {
	Profiles   []string               `json:"profiles"`
	Stats      registry.Stats         `json:"stats"`
	Bindings   []registry.BindingInfo `json:"bindings"`
	Selections []Selection            `json:"selections"`
}

// Selection describes how an interface resolves.
type Selection struct {
	Interface  string   `json:"interface"`
	Chosen     string   `json:"chosen,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Candidates []string `json:"candidates"`
	Excluded   []string `json:"excluded,omitempty"`
	Error      string   `json:"error,omitempty"`
	Code       string   `json:"code,omitempty"`
}

// Take builds a Snapshot of r. Selections are computed without constructing
// anything.
func Take(r *registry.Registry) Snapshot {
	s := Snapshot{
		Profiles: r.Profiles().Names(),
		Stats:    r.Stats(),
		Bindings: r.Bindings(),
	}

	for _, iface := range r.Interfaces() {
		sel := Selection{Interface: iface.String(), Candidates: []string{}}
		explained, err := r.Explain(iface)
		if explained != nil {
			sel.Candidates = candidates(explained)
			for _, c := range explained.Excluded {
				sel.Excluded = append(sel.Excluded, c.Descriptor.Implementation.String())
			}
			if explained.Chosen != nil {
				sel.Chosen = explained.Chosen.Implementation.String()
				sel.Reason = explained.Reason
			}
		}
		if err != nil {
			sel.Error = err.Error()
			sel.Code = binderrors.Code(err)
		}
		s.Selections = append(s.Selections, sel)
	}
	return s
}

// HasErrors reports whether any selection failed.
func (s Snapshot) HasErrors() bool {
	for _, sel := range s.Selections {
		if sel.Error != "" {
			return true
		}
	}
	return false
}

func candidates(sel *resolver.Selection) []string {
	out := []string{}
	groups := []struct {
		tag   string
		cands []resolver.Candidate
	}{
		{"primary", sel.Primaries},
		{"regular", sel.Regulars},
		{"alternative", sel.Alternatives},
	}
	for _, g := range groups {
		for _, c := range g.cands {
			label := c.Descriptor.Implementation.String() + " (" + g.tag
			if c.Primary {
				label += " " + strconv.Itoa(c.Priority)
			}
			if c.Alternative && c.Profile != "" {
				label += " @" + c.Profile
			}
			out = append(out, label+")")
		}
	}
	return out
}

// WriteJSON writes s as indented JSON.
func WriteJSON(w io.Writer, s Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteTable writes the bindings and selections of s as aligned text.
func WriteTable(w io.Writer, s Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "TYPE\tNAME\tIMPLEMENTATION\tSCOPE\tSTATE\tFLAGS\n")
	for _, b := range s.Bindings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.Type, dash(b.Name), b.Implementation, b.Scope, b.State, flags(b))
	}

	if len(s.Selections) > 0 {
		fmt.Fprintf(tw, "\nINTERFACE\tSELECTED\tREASON\tCANDIDATES\n")
		for _, sel := range s.Selections {
			chosen, reason := sel.Chosen, sel.Reason
			if sel.Error != "" {
				chosen, reason = "!", sel.Code
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				sel.Interface, dash(chosen), dash(reason), dash(strings.Join(sel.Candidates, ", ")))
		}
	}

	fmt.Fprintf(tw, "\n%d bindings, %d interfaces, %d materialized, profiles %s\n",
		s.Stats.Bindings, s.Stats.Interfaces, s.Stats.Materialized, "{"+strings.Join(s.Profiles, ",")+"}")
	return tw.Flush()
}

func flags(b registry.BindingInfo) string {
	var parts []string
	if b.Primary {
		parts = append(parts, "primary="+strconv.Itoa(b.Priority))
	}
	if b.Alternative {
		parts = append(parts, "alternative="+dash(b.Profile))
	}
	if len(b.Profiles) > 0 {
		parts = append(parts, "profiles="+strings.Join(b.Profiles, ","))
	}
	return dash(strings.Join(parts, " "))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
