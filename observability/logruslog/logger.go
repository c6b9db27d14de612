// Package logruslog adapts logrus to the core.Logger interface.
package logruslog

import (
	"github.com/osal-go/osal/core"
	"github.com/sirupsen/logrus"
)

// Logger forwards core.Logger calls to a logrus logger, mapping Field
// pairs onto logrus structured fields.
type Logger struct {
	l logrus.FieldLogger
}

var _ core.Logger = (*Logger)(nil)

// New wraps a logrus logger. A nil argument uses the logrus standard logger.
func New(l logrus.FieldLogger) *Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Logger{l: l}
}

// Debug logs a debug message with optional fields.
func (a *Logger) Debug(msg string, fields ...core.Field) {
	a.entry(fields).Debug(msg)
}

// Info logs an info message with optional fields.
func (a *Logger) Info(msg string, fields ...core.Field) {
	a.entry(fields).Info(msg)
}

// Warn logs a warning message with optional fields.
func (a *Logger) Warn(msg string, fields ...core.Field) {
	a.entry(fields).Warn(msg)
}

// Error logs an error message with optional fields.
func (a *Logger) Error(msg string, fields ...core.Field) {
	a.entry(fields).Error(msg)
}

func (a *Logger) entry(fields []core.Field) logrus.FieldLogger {
	if len(fields) == 0 {
		return a.l
	}
	lf := make(logrus.Fields, len(fields))
	for _, f := range fields {
		lf[f.Key] = f.Value
	}
	return a.l.WithFields(lf)
}
