// Package eventlog provides the structured logging surface shared by every
// core component that logs (dispatcher, ActorCell, SystemState). Its
// API follows the common protoactor-go/log package shape (Field builders
// plus a small Logger interface) but is backed by
// go.uber.org/zap instead of a hand-rolled encoder.
package eventlog

import (
	"fmt"

	"go.uber.org/zap"
)

// Field is a structured logging field, a thin alias over zap.Field so
// callers never need to import zap directly.
type Field = zap.Field

// Message attaches an arbitrary system message value to a log line.
func Message(v interface{}) Field {
	return zap.Any("message", v)
}

// PID logs a pid's string form under the given key.
func PID(key string, v fmt.Stringer) Field {
	return zap.Stringer(key, v)
}

// Error logs an error under the conventional "error" key.
func Error(err error) Field {
	return zap.Error(err)
}

// Logger is the narrow logging surface the core depends on. Production
// code obtains one via New/Nop; tests typically use Nop.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type zapLogger struct {
	z *zap.Logger
}

// New wraps an existing *zap.Logger.
func New(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

// NewProduction builds a sane default production logger, following the
// common top-level `plog` package-level logger convention.
func NewProduction() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &zapLogger{z: z}
}

// Nop returns a logger that discards everything, used by default in tests
// and anywhere a caller doesn't wire in a real sink.
func Nop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, fields...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}
