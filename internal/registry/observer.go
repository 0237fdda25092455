package registry

import (
	"time"

	"github.com/xraph/binder/internal/binding"
	"github.com/xraph/binder/internal/logger"
	"github.com/xraph/binder/internal/scope"
	"github.com/xraph/binder/internal/types"
)

// Observer receives registry events. Implementations must be safe for
// concurrent use. Events are delivered with no registry lock held, so an
// observer may call read methods such as Stats. Panics are recovered and
// ignored.
type Observer interface {
	// Registered is called for every registration that installed or updated a
	// binding. Duplicate registrations that change nothing are not reported.
	Registered(key types.Key, s scope.Scope)
	// Resolved is called once per top-level resolution.
	Resolved(key types.Key, elapsed time.Duration, err error)
	// Constructed is called after every successful construction.
	Constructed(key types.Key, s scope.Scope)
}

func (r *Registry) notify(fn func(Observer)) {
	if r.observer == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("observer panicked", logger.Any("panic", rec))
		}
	}()
	fn(r.observer)
}

func (r *Registry) constructed(d *binding.Descriptor) {
	r.logger.Debug("instance constructed",
		logger.Key(d.Key()),
		logger.String("scope", d.Scope.String()),
	)
	r.notify(func(o Observer) { o.Constructed(d.Key(), d.Scope) })
}
