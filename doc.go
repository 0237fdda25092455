// Package binder is an in-process binding resolution engine.
//
// Bindings describe what satisfies a type: a direct binding, a named
// binding, one of several implementations of an interface, a pre-built
// instance or a factory. Resolution returns instances according to each
// binding's scope, detects circular dependencies and picks deterministically
// among competing implementations:
//
//	reg := binder.New(binder.WithInstantiator(
//		binder.NewConstructors().MustAdd(NewLogger, NewStripe, NewMock),
//	))
//	_ = binder.RegisterType[*Logger](reg, binder.Singleton)
//	_ = binder.RegisterImplementation[Gateway, *Stripe](reg, binder.Singleton, binder.WithPriority(10))
//	_ = binder.RegisterImplementation[Gateway, *Mock](reg, binder.Singleton)
//
//	gw, err := binder.Resolve[Gateway](reg) // *Stripe
//
// Among the implementations of an interface the highest priority primary
// wins; two primaries tied at the highest priority are an error. Without
// primaries the first registered regular implementation wins, and
// profile-gated alternatives are used only when nothing else is eligible.
package binder
