package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/go-utils/errs"
)

// =============================================================================
// ERROR CODES
// =============================================================================

// Error code constants for structured errors.
const (
	CodeBindingNotFound          = "BINDING_NOT_FOUND"
	CodeAmbiguousBinding         = "AMBIGUOUS_BINDING"
	CodeNoEligibleImplementation = "NO_ELIGIBLE_IMPLEMENTATION"
	CodeCircularDependency       = "CIRCULAR_DEPENDENCY"
	CodeConstructionFailed       = "CONSTRUCTION_FAILED"
	CodeInvalidBinding           = "INVALID_BINDING"
	CodeScopeNotActive           = "SCOPE_NOT_ACTIVE"
	CodeConfigError              = "CONFIG_ERROR"
)

// =============================================================================
// SENTINELS
// =============================================================================

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrBindingNotFound          = errs.New("binding not found")
	ErrAmbiguousBinding         = errs.New("ambiguous binding")
	ErrNoEligibleImplementation = errs.New("no eligible implementation")
	ErrCircularDependency       = errs.New("circular dependency detected")
	ErrConstructionFailed       = errs.New("construction failed")
	ErrInvalidBinding           = errs.New("invalid binding")
	ErrScopeNotActive           = errs.New("scope not active")
	ErrConfig                   = errs.New("configuration error")
)

// Coded is implemented by every error produced by the engine.
type Coded interface {
	error
	Code() string
}

// Code returns the code of the first Coded error in err's chain, or "".
func Code(err error) string {
	var c Coded
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// IsConfiguration reports whether err is a configuration error that retrying
// cannot fix (ambiguity, no eligible implementation, cycles, invalid bindings).
func IsConfiguration(err error) bool {
	switch Code(err) {
	case CodeAmbiguousBinding, CodeNoEligibleImplementation, CodeCircularDependency,
		CodeInvalidBinding, CodeConfigError:
		return true
	default:
		return false
	}
}

// =============================================================================
// BINDING ERRORS
// =============================================================================

// BindingNotFoundError is returned when no registration exists for a type or name.
type BindingNotFoundError struct {
	Type string
	Name string
}

func (e *BindingNotFoundError) Error() string {
	if e.Name == "" {
		return "binding not found for type " + e.Type
	}
	return "binding not found for type " + e.Type + " named " + strconv.Quote(e.Name)
}

// Code implements Coded.
func (e *BindingNotFoundError) Code() string { return CodeBindingNotFound }

// Is matches ErrBindingNotFound.
func (e *BindingNotFoundError) Is(target error) bool { return target == ErrBindingNotFound }

// NewBindingNotFoundError creates a BindingNotFoundError.
func NewBindingNotFoundError(typ, name string) *BindingNotFoundError {
	return &BindingNotFoundError{Type: typ, Name: name}
}

// AmbiguousBindingError is returned when several primary candidates share the
// highest priority.
type AmbiguousBindingError struct {
	Interface       string
	Implementations []string
	Priority        int
}

func (e *AmbiguousBindingError) Error() string {
	return fmt.Sprintf("ambiguous binding for %s: primary implementations [%s] share priority %d",
		e.Interface, strings.Join(e.Implementations, ", "), e.Priority)
}

// Code implements Coded.
func (e *AmbiguousBindingError) Code() string { return CodeAmbiguousBinding }

// Is matches ErrAmbiguousBinding.
func (e *AmbiguousBindingError) Is(target error) bool { return target == ErrAmbiguousBinding }

// NewAmbiguousBindingError creates an AmbiguousBindingError.
func NewAmbiguousBindingError(iface string, impls []string, priority int) *AmbiguousBindingError {
	return &AmbiguousBindingError{Interface: iface, Implementations: impls, Priority: priority}
}

// NoEligibleImplementationError is returned when candidates exist for an
// interface but none survive profile filtering.
type NoEligibleImplementationError struct {
	Interface  string
	Candidates []string
	Profiles   []string
}

func (e *NoEligibleImplementationError) Error() string {
	return fmt.Sprintf("no eligible implementation for %s among [%s] with active profiles [%s]",
		e.Interface, strings.Join(e.Candidates, ", "), strings.Join(e.Profiles, ", "))
}

// Code implements Coded.
func (e *NoEligibleImplementationError) Code() string { return CodeNoEligibleImplementation }

// Is matches ErrNoEligibleImplementation.
func (e *NoEligibleImplementationError) Is(target error) bool {
	return target == ErrNoEligibleImplementation
}

// NewNoEligibleImplementationError creates a NoEligibleImplementationError.
func NewNoEligibleImplementationError(iface string, candidates, profiles []string) *NoEligibleImplementationError {
	return &NoEligibleImplementationError{Interface: iface, Candidates: candidates, Profiles: profiles}
}

// CircularDependencyError is returned when construction re-enters a type
// already in progress. Chain lists the path, ending with the repeated type.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return "circular dependency detected: " + strings.Join(e.Chain, " -> ")
}

// Code implements Coded.
func (e *CircularDependencyError) Code() string { return CodeCircularDependency }

// Is matches ErrCircularDependency.
func (e *CircularDependencyError) Is(target error) bool { return target == ErrCircularDependency }

// NewCircularDependencyError creates a CircularDependencyError.
func NewCircularDependencyError(chain []string) *CircularDependencyError {
	return &CircularDependencyError{Chain: chain}
}

// ConstructionError wraps a failure raised while building an instance.
type ConstructionError struct {
	Type string
	Err  error
}

func (e *ConstructionError) Error() string {
	return "construct " + e.Type + ": " + e.Err.Error()
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// Code implements Coded.
func (e *ConstructionError) Code() string { return CodeConstructionFailed }

// Is matches ErrConstructionFailed.
func (e *ConstructionError) Is(target error) bool { return target == ErrConstructionFailed }

// NewConstructionError wraps err with the requested type. Errors that already
// belong to the engine's taxonomy are returned unchanged so nested resolution
// failures keep their original type at the top of the chain.
func NewConstructionError(typ string, err error) error {
	if err == nil {
		return nil
	}
	var c Coded
	if errors.As(err, &c) {
		return err
	}
	return &ConstructionError{Type: typ, Err: err}
}

// PanicError carries a value recovered from a panicking constructor.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during construction: %v", e.Value)
}

// InvalidBindingError is returned for malformed registrations.
type InvalidBindingError struct {
	Type   string
	Reason string
}

func (e *InvalidBindingError) Error() string {
	return "invalid binding for " + e.Type + ": " + e.Reason
}

// Code implements Coded.
func (e *InvalidBindingError) Code() string { return CodeInvalidBinding }

// Is matches ErrInvalidBinding.
func (e *InvalidBindingError) Is(target error) bool { return target == ErrInvalidBinding }

// NewInvalidBindingError creates an InvalidBindingError.
func NewInvalidBindingError(typ, reason string) *InvalidBindingError {
	return &InvalidBindingError{Type: typ, Reason: reason}
}

// ScopeNotActiveError is returned when a session or request scoped binding is
// resolved without an active scope id.
type ScopeNotActiveError struct {
	Type  string
	Scope string
}

func (e *ScopeNotActiveError) Error() string {
	return "no active " + e.Scope + " scope while resolving " + e.Type
}

// Code implements Coded.
func (e *ScopeNotActiveError) Code() string { return CodeScopeNotActive }

// Is matches ErrScopeNotActive.
func (e *ScopeNotActiveError) Is(target error) bool { return target == ErrScopeNotActive }

// NewScopeNotActiveError creates a ScopeNotActiveError.
func NewScopeNotActiveError(typ, scope string) *ScopeNotActiveError {
	return &ScopeNotActiveError{Type: typ, Scope: scope}
}

// =============================================================================
// CONFIG ERRORS
// =============================================================================

// ConfigError is a structured configuration failure with context.
type ConfigError struct {
	Key       string
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg = "config " + strconv.Quote(e.Key) + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// Code implements Coded.
func (e *ConfigError) Code() string { return CodeConfigError }

// Is matches ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// ErrConfigError creates a ConfigError.
func ErrConfigError(key, message string, cause error) *ConfigError {
	return &ConfigError{Key: key, Message: message, Cause: cause, Timestamp: time.Now()}
}
