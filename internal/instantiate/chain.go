package instantiate

import (
	"context"

	"github.com/xraph/binder/internal/binding"
	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/guard"
	"github.com/xraph/binder/internal/types"
)

// Source is an Instantiator that can tell whether it knows a type.
type Source interface {
	binding.Instantiator
	Has(impl types.Type) bool
}

// Chain delegates to the first source that knows the implementation type.
type Chain []Source

// Has reports whether any source knows impl.
func (c Chain) Has(impl types.Type) bool {
	_, ok := c.find(impl)
	return ok
}

// Construct implements binding.Instantiator.
func (c Chain) Construct(ctx context.Context, r binding.Resolver, impl types.Type, g guard.Guard) (any, error) {
	s, ok := c.find(impl)
	if !ok {
		return nil, binderrors.NewInvalidBindingError(impl.String(), "no instantiator knows this type")
	}
	return s.Construct(ctx, r, impl, g)
}

// Dependencies implements binding.Inspector.
func (c Chain) Dependencies(impl types.Type) ([]types.Key, bool) {
	s, ok := c.find(impl)
	if !ok {
		return nil, false
	}
	if in, ok := s.(binding.Inspector); ok {
		return in.Dependencies(impl)
	}
	return nil, false
}

func (c Chain) find(impl types.Type) (Source, bool) {
	for _, s := range c {
		if s != nil && s.Has(impl) {
			return s, true
		}
	}
	return nil, false
}
