// Package scope defines binding scopes and the external storage used for
// session and request scoped instances.
package scope

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Scope is the lifecycle policy of a binding.
type Scope int

const (
	// Singleton materializes once per registry.
	Singleton Scope = iota
	// Prototype constructs a fresh instance on every resolution.
	Prototype
	// Application behaves like Singleton; kept distinct for reporting.
	Application
	// Session stores one instance per session id in a Store.
	Session
	// Request stores one instance per request id in a Store.
	Request
)

// String returns the lower-case scope name.
func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Prototype:
		return "prototype"
	case Application:
		return "application"
	case Session:
		return "session"
	case Request:
		return "request"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Cached reports whether instances live on the descriptor itself.
func (s Scope) Cached() bool { return s == Singleton || s == Application }

// External reports whether instances live in a Store.
func (s Scope) External() bool { return s == Session || s == Request }

// Parse converts a scope name. Empty input yields Singleton; "transient" is
// accepted as an alias of prototype.
func Parse(name string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "singleton":
		return Singleton, nil
	case "prototype", "transient":
		return Prototype, nil
	case "application":
		return Application, nil
	case "session":
		return Session, nil
	case "request":
		return Request, nil
	default:
		return Singleton, fmt.Errorf("unknown scope %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Scope) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scope) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type contextKey struct{ scope Scope }

// WithID attaches the id of an active session or request scope to ctx.
func WithID(ctx context.Context, s Scope, id string) context.Context {
	return context.WithValue(ctx, contextKey{scope: s}, id)
}

// WithSession attaches a session id to ctx.
func WithSession(ctx context.Context, id string) context.Context {
	return WithID(ctx, Session, id)
}

// WithRequest attaches a request id to ctx.
func WithRequest(ctx context.Context, id string) context.Context {
	return WithID(ctx, Request, id)
}

// BeginSession starts a session scope with a fresh id.
func BeginSession(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return WithSession(ctx, id), id
}

// BeginRequest starts a request scope with a fresh id.
func BeginRequest(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return WithRequest(ctx, id), id
}

// IDFrom returns the active id for s carried by ctx.
func IDFrom(ctx context.Context, s Scope) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(contextKey{scope: s}).(string)
	return id, ok && id != ""
}
