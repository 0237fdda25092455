// Package logger provides the zap-backed structured logger used across the
// engine.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI level colors for the console encoder.
const (
	ansiReset   = "\033[0m"
	ansiCyan    = "\033[36m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiRed     = "\033[31m"
	ansiMagenta = "\033[35m"
)

// Logger represents the logging interface.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	With(fields ...Field) Logger
	Named(name string) Logger

	Sync() error
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Environment string `yaml:"environment"`
}

// Levels accepted by LoggingConfig.Level.
var Levels = []string{"debug", "info", "warn", "warning", "error"}

// logger implements Logger using zap.
type logger struct {
	zap *zap.Logger
}

// NewLogger creates a logger from config. JSON output is used for production
// or when Format is "json"; otherwise a colored console encoder.
func NewLogger(config LoggingConfig) Logger {
	level := ParseLevel(config.Level)

	if config.Environment == "production" || config.Format == "json" {
		zapConfig := zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(level)
		zapLogger, err := zapConfig.Build(zap.AddCallerSkip(1))
		if err != nil {
			return NewNoopLogger()
		}
		return &logger{zap: zapLogger}
	}

	return &logger{zap: createDevelopmentLogger(level)}
}

// NewDevelopmentLogger creates a colored console logger at debug level.
func NewDevelopmentLogger() Logger {
	return &logger{zap: createDevelopmentLogger(zapcore.DebugLevel)}
}

// NewProductionLogger creates a JSON logger at info level.
func NewProductionLogger() Logger {
	return NewLogger(LoggingConfig{Level: "info", Format: "json"})
}

// NewNoopLogger creates a logger that discards everything.
func NewNoopLogger() Logger {
	return &logger{zap: zap.NewNop()}
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(z *zap.Logger) Logger {
	if z == nil {
		return NewNoopLogger()
	}
	return &logger{zap: z}
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func createDevelopmentLogger(level zapcore.Level) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = colorLevelEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.AddSync(os.Stderr),
		zap.NewAtomicLevelAt(level),
	)

	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel:  ansiCyan,
	zapcore.InfoLevel:   ansiGreen,
	zapcore.WarnLevel:   ansiYellow,
	zapcore.ErrorLevel:  ansiRed,
	zapcore.DPanicLevel: ansiMagenta,
	zapcore.PanicLevel:  ansiMagenta,
	zapcore.FatalLevel:  ansiMagenta,
}

func colorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	c, ok := levelColors[level]
	if !ok {
		enc.AppendString(level.CapitalString())
		return
	}
	enc.AppendString(c + level.CapitalString() + ansiReset)
}

func (l *logger) Debug(msg string, fields ...Field) { l.zap.Debug(msg, fields...) }
func (l *logger) Info(msg string, fields ...Field)  { l.zap.Info(msg, fields...) }
func (l *logger) Warn(msg string, fields ...Field)  { l.zap.Warn(msg, fields...) }
func (l *logger) Error(msg string, fields ...Field) { l.zap.Error(msg, fields...) }

func (l *logger) With(fields ...Field) Logger {
	return &logger{zap: l.zap.With(fields...)}
}

func (l *logger) Named(name string) Logger {
	return &logger{zap: l.zap.Named(name)}
}

func (l *logger) Sync() error {
	return l.zap.Sync()
}
