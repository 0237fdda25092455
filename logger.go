package binder

import "github.com/xraph/binder/internal/logger"

// Re-export logger types
type (
	Logger        = logger.Logger
	Field         = logger.Field
	LoggingConfig = logger.LoggingConfig
)

// Re-export logger constructors
var (
	NewLogger            = logger.NewLogger
	NewDevelopmentLogger = logger.NewDevelopmentLogger
	NewProductionLogger  = logger.NewProductionLogger
	NewNoopLogger        = logger.NewNoopLogger
	NewZapLogger         = logger.NewZapLogger
)
