// Package logger provides structured logging for the game server.
// Every action the server takes on behalf of a town should be traceable
// through this.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging with context.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a production logger (JSON to stdout).
func NewLogger() *Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{sugar: z.Sugar()}
}

// NewDebugLogger creates a human-readable logger for debug runs and tests.
func NewDebugLogger() *Logger {
	z, err := zap.NewDevelopment(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{sugar: z.Sugar()}
}

// NewNopLogger discards everything. Used by tests that assert on behavior,
// not on log output.
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.sugar.Info(msg)
}

// Infof logs formatted informational messages.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.sugar.Warn(msg)
}

// Warnf logs formatted warning messages.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.sugar.Error(msg)
}

// Errorf logs formatted error messages.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Event logs a game event for audit.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.sugar.Infow("game event",
		"event", eventType,
		"actor", actorID,
		"details", details,
	)
}

// Sync flushes buffered log entries. Call on shutdown.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}
