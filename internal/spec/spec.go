// Package spec turns declarative binding definitions into registry
// calls.
//
// Specs name types by string. A Catalog maps those names to types.Type
// values: a closed catalog rejects unknown names, an open catalog turns them
// into declaration-only types, which is what dry runs over a spec file use.
package spec

import (
	"fmt"
	"strings"

	"github.com/xraph/binder/internal/scope"
	"github.com/xraph/binder/internal/types"
)

// BindingSpec declares one binding.
//
// Without Name and Implementation, Type gets a direct binding. With
// Implementation, Type is an interface implemented by Implementation. With
// Name, the binding is keyed by (Type, Name). Implements lists further
// interfaces the implementation is registered against.
type BindingSpec struct {
	Type           string   `yaml:"type" json:"type"`
	Name           string   `yaml:"name,omitempty" json:"name,omitempty"`
	Implementation string   `yaml:"implementation,omitempty" json:"implementation,omitempty"`
	Implements     []string `yaml:"implements,omitempty" json:"implements,omitempty"`
	Scope          string   `yaml:"scope,omitempty" json:"scope,omitempty"`
	Primary        bool     `yaml:"primary,omitempty" json:"primary,omitempty"`
	Priority       int      `yaml:"priority,omitempty" json:"priority,omitempty"`
	Alternative    bool     `yaml:"alternative,omitempty" json:"alternative,omitempty"`
	Profile        string   `yaml:"profile,omitempty" json:"profile,omitempty"`
	Profiles       []string `yaml:"profiles,omitempty" json:"profiles,omitempty"`
	// Factory names the declaration that produces the binding. It is kept
	// as provenance.
	Factory   string   `yaml:"factory,omitempty" json:"factory,omitempty"`
	DependsOn []string `yaml:"dependsOn,omitempty" json:"dependsOn,omitempty"`
}

// ImplementationName returns Implementation, or Type when unset.
func (s BindingSpec) ImplementationName() string {
	if s.Implementation != "" {
		return s.Implementation
	}
	return s.Type
}

// ScopeValue parses Scope.
func (s BindingSpec) ScopeValue() (scope.Scope, error) {
	return scope.Parse(s.Scope)
}

// Validate checks the fields that do not need a Catalog.
func (s BindingSpec) Validate() error {
	if strings.TrimSpace(s.Type) == "" {
		return fmt.Errorf("type is required")
	}
	if _, err := s.ScopeValue(); err != nil {
		return err
	}
	if s.Priority != 0 && !s.Primary {
		return fmt.Errorf("priority %d set on %s without primary", s.Priority, s.Type)
	}
	if s.Profile != "" && !s.Alternative {
		return fmt.Errorf("profile %q set on %s without alternative", s.Profile, s.Type)
	}
	for _, dep := range s.DependsOn {
		if _, _, err := ParseDependency(dep); err != nil {
			return err
		}
	}
	return nil
}

// ParseDependency splits a dependency reference of the form "Type" or
// "Type#name".
func ParseDependency(ref string) (typeName, name string, err error) {
	typeName, name, _ = strings.Cut(strings.TrimSpace(ref), "#")
	if typeName == "" {
		return "", "", fmt.Errorf("invalid dependency reference %q", ref)
	}
	return typeName, name, nil
}

// Catalog maps type names used in specs to types.
type Catalog struct {
	types map[string]types.Type
	open  bool
}

// NewCatalog returns a closed catalog: unknown names are errors.
func NewCatalog() *Catalog {
	return &Catalog{types: make(map[string]types.Type)}
}

// OpenCatalog returns a catalog that maps unknown names to declaration-only
// types.
func OpenCatalog() *Catalog {
	return &Catalog{types: make(map[string]types.Type), open: true}
}

// Add maps name to t.
func (c *Catalog) Add(name string, t types.Type) *Catalog {
	c.types[name] = t
	return c
}

// Add maps name to T in c.
func Add[T any](c *Catalog, name string) *Catalog {
	return c.Add(name, types.Of[T]())
}

// Open reports whether unknown names are accepted.
func (c *Catalog) Open() bool { return c.open }

// Lookup returns the type registered under name.
func (c *Catalog) Lookup(name string) (types.Type, error) {
	if t, ok := c.types[name]; ok {
		return t, nil
	}
	if c.open && name != "" {
		return types.Named(name), nil
	}
	return types.Type{}, fmt.Errorf("unknown type %q", name)
}

// Dependency resolves a "Type" or "Type#name" reference to a key.
func (c *Catalog) Dependency(ref string) (types.Key, error) {
	typeName, name, err := ParseDependency(ref)
	if err != nil {
		return types.Key{}, err
	}
	t, err := c.Lookup(typeName)
	if err != nil {
		return types.Key{}, err
	}
	return types.NamedKey(t, name), nil
}
