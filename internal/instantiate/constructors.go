// Package instantiate provides Instantiator implementations: reflected
// constructor functions, closure tables, declaration-only placeholders and a
// chain combining them.
package instantiate

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/xraph/binder/internal/binding"
	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/guard"
	"github.com/xraph/binder/internal/types"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Constructors builds instances by calling constructor functions of the form
// func(deps...) T or func(deps...) (T, error). Each parameter is resolved
// from the registry except context.Context, which receives the resolution
// context.
type Constructors struct {
	mu    sync.RWMutex
	ctors map[types.Type]*constructor
}

type constructor struct {
	fn      reflect.Value
	params  []reflect.Type
	deps    []types.Key
	withErr bool
}

// NewConstructors creates an empty constructor table.
func NewConstructors() *Constructors {
	return &Constructors{ctors: make(map[types.Type]*constructor)}
}

// Add registers fn as the constructor of its first result type and returns
// that type.
func (c *Constructors) Add(fn any) (types.Type, error) {
	ctor, out, err := analyze(fn)
	if err != nil {
		return types.Type{}, err
	}

	c.mu.Lock()
	c.ctors[out] = ctor
	c.mu.Unlock()
	return out, nil
}

// MustAdd is Add that panics on an invalid constructor.
func (c *Constructors) MustAdd(fns ...any) *Constructors {
	for _, fn := range fns {
		if _, err := c.Add(fn); err != nil {
			panic(err)
		}
	}
	return c
}

// Has reports whether a constructor for impl is registered.
func (c *Constructors) Has(impl types.Type) bool {
	_, ok := c.get(impl)
	return ok
}

// Dependencies implements binding.Inspector.
func (c *Constructors) Dependencies(impl types.Type) ([]types.Key, bool) {
	ctor, ok := c.get(impl)
	if !ok {
		return nil, false
	}
	out := make([]types.Key, len(ctor.deps))
	copy(out, ctor.deps)
	return out, true
}

// Construct implements binding.Instantiator.
func (c *Constructors) Construct(ctx context.Context, r binding.Resolver, impl types.Type, g guard.Guard) (any, error) {
	ctor, ok := c.get(impl)
	if !ok {
		return nil, binderrors.NewInvalidBindingError(impl.String(), "no constructor registered")
	}

	args := make([]reflect.Value, len(ctor.params))
	dep := 0
	for i, pt := range ctor.params {
		if pt == contextType {
			args[i] = reflect.ValueOf(&ctx).Elem()
			continue
		}

		key := ctor.deps[dep]
		dep++

		v, err := r.ResolveWith(ctx, g, key)
		if err != nil {
			return nil, err
		}
		if v == nil {
			args[i] = reflect.Zero(pt)
			continue
		}

		val := reflect.ValueOf(v)
		if !val.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("dependency %s resolved to %T, not assignable to %s", key, v, pt)
		}
		args[i] = val
	}

	results := ctor.fn.Call(args)
	if ctor.withErr {
		if errv := results[1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
	}
	return results[0].Interface(), nil
}

func (c *Constructors) get(impl types.Type) (*constructor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ctor, ok := c.ctors[impl]
	return ctor, ok
}

// analyze validates fn and extracts its dependencies.
func analyze(fn any) (*constructor, types.Type, error) {
	fnValue := reflect.ValueOf(fn)
	if fn == nil || fnValue.Kind() != reflect.Func {
		return nil, types.Type{}, fmt.Errorf("constructor must be a function, got %T", fn)
	}
	fnType := fnValue.Type()

	if fnType.IsVariadic() {
		return nil, types.Type{}, fmt.Errorf("constructor %s must not be variadic", fnType)
	}

	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, types.Type{}, fmt.Errorf("constructor %s: second result must be error", fnType)
		}
	default:
		return nil, types.Type{}, fmt.Errorf("constructor %s must return T or (T, error)", fnType)
	}

	ctor := &constructor{
		fn:      fnValue,
		params:  make([]reflect.Type, fnType.NumIn()),
		withErr: fnType.NumOut() == 2,
	}
	for i := 0; i < fnType.NumIn(); i++ {
		pt := fnType.In(i)
		ctor.params[i] = pt
		if pt != contextType {
			ctor.deps = append(ctor.deps, types.KeyOf(types.FromReflect(pt)))
		}
	}
	return ctor, types.FromReflect(fnType.Out(0)), nil
}
