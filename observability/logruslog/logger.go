// Package logruslog adapts a logrus logger to the core.Logger interface.
package logruslog

import (
	"github.com/sirupsen/logrus"

	"github.com/rtsched/go-rt-dispatch/core"
)

// Logger routes core log messages through logrus with structured fields.
type Logger struct {
	log *logrus.Logger
}

var _ core.Logger = (*Logger)(nil)

// New wraps the given logrus logger; nil selects the logrus standard logger.
func New(log *logrus.Logger) *Logger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logger{log: log}
}

func (l *Logger) Debug(msg string, fields ...core.Field) {
	l.log.WithFields(toLogrusFields(fields)).Debug(msg)
}

func (l *Logger) Info(msg string, fields ...core.Field) {
	l.log.WithFields(toLogrusFields(fields)).Info(msg)
}

func (l *Logger) Warn(msg string, fields ...core.Field) {
	l.log.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (l *Logger) Error(msg string, fields ...core.Field) {
	l.log.WithFields(toLogrusFields(fields)).Error(msg)
}

func toLogrusFields(fields []core.Field) logrus.Fields {
	if len(fields) == 0 {
		return nil
	}
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}
