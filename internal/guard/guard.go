// Package guard implements the per-resolution cycle guard.
//
// A Guard is an immutable chain of keys currently being constructed. Adding a
// key returns a new Guard that shares the parent chain, so every dependency
// branch gets its own view and sibling branches never observe each other.
package guard

import (
	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/types"
)

// Guard is the set of keys in progress along one resolution path.
// The zero Guard is empty.
type Guard struct {
	tail *link
}

type link struct {
	key    types.Key
	parent *link
	depth  int
}

// New returns an empty Guard.
func New() Guard { return Guard{} }

// Contains reports whether key is already in progress on this path.
func (g Guard) Contains(key types.Key) bool {
	for l := g.tail; l != nil; l = l.parent {
		if l.key == key {
			return true
		}
	}
	return false
}

// Depth returns the number of keys on this path.
func (g Guard) Depth() int {
	if g.tail == nil {
		return 0
	}
	return g.tail.depth
}

// Chain returns the keys on this path from outermost to innermost.
func (g Guard) Chain() []types.Key {
	out := make([]types.Key, g.Depth())
	for l := g.tail; l != nil; l = l.parent {
		out[l.depth-1] = l.key
	}
	return out
}

// Enter returns a branch of g with key added. It fails with a
// CircularDependencyError naming the full chain when key is already present.
func (g Guard) Enter(key types.Key) (Guard, error) {
	if g.Contains(key) {
		return g, binderrors.NewCircularDependencyError(chainNames(g.Chain(), key))
	}
	return Guard{tail: &link{key: key, parent: g.tail, depth: g.Depth() + 1}}, nil
}

func chainNames(chain []types.Key, closing types.Key) []string {
	names := make([]string, 0, len(chain)+1)
	for _, k := range chain {
		names = append(names, k.String())
	}
	return append(names, closing.String())
}
