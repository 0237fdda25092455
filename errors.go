package binder

import (
	binderrors "github.com/xraph/binder/internal/errors"
)

// Error codes.
const (
	CodeBindingNotFound          = binderrors.CodeBindingNotFound
	CodeAmbiguousBinding         = binderrors.CodeAmbiguousBinding
	CodeNoEligibleImplementation = binderrors.CodeNoEligibleImplementation
	CodeCircularDependency       = binderrors.CodeCircularDependency
	CodeConstructionFailed       = binderrors.CodeConstructionFailed
	CodeInvalidBinding           = binderrors.CodeInvalidBinding
	CodeScopeNotActive           = binderrors.CodeScopeNotActive
	CodeConfigError              = binderrors.CodeConfigError
)

// Sentinel errors for comparison using errors.Is().
var (
	ErrBindingNotFound          = binderrors.ErrBindingNotFound
	ErrAmbiguousBinding         = binderrors.ErrAmbiguousBinding
	ErrNoEligibleImplementation = binderrors.ErrNoEligibleImplementation
	ErrCircularDependency       = binderrors.ErrCircularDependency
	ErrConstructionFailed       = binderrors.ErrConstructionFailed
	ErrInvalidBinding           = binderrors.ErrInvalidBinding
	ErrScopeNotActive           = binderrors.ErrScopeNotActive
	ErrConfig                   = binderrors.ErrConfig
)

// Typed errors for use with errors.As().
type (
	BindingNotFoundError          = binderrors.BindingNotFoundError
	AmbiguousBindingError         = binderrors.AmbiguousBindingError
	NoEligibleImplementationError = binderrors.NoEligibleImplementationError
	CircularDependencyError       = binderrors.CircularDependencyError
	ConstructionError             = binderrors.ConstructionError
	PanicError                    = binderrors.PanicError
	InvalidBindingError           = binderrors.InvalidBindingError
	ScopeNotActiveError           = binderrors.ScopeNotActiveError
	ConfigError                   = binderrors.ConfigError
)

// ErrorCode returns the code of the first coded error in err's chain.
func ErrorCode(err error) string {
	return binderrors.Code(err)
}

// IsConfigurationError reports whether err is a configuration problem, as
// opposed to a runtime failure such as a constructor returning an error.
func IsConfigurationError(err error) bool {
	return binderrors.IsConfiguration(err)
}
