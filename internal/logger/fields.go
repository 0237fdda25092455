package logger

import (
	"go.uber.org/zap"

	"github.com/xraph/binder/internal/types"
)

// Field represents a structured log field.
type Field = zap.Field

// Field constructors.
var (
	String   = zap.String
	Strings  = zap.Strings
	Int      = zap.Int
	Int64    = zap.Int64
	Bool     = zap.Bool
	Duration = zap.Duration
	Error    = zap.Error
	Any      = zap.Any
)

// Type creates a field holding a binding type name.
func Type(t types.Type) Field {
	return zap.String("type", t.String())
}

// Key creates a field holding a binding key.
func Key(k types.Key) Field {
	return zap.String("key", k.String())
}
