package logger

import corelogger "github.com/kilianp07/batlife/core/logger"

type Logger = corelogger.Logger

// NopLogger discards every record. Tests use it to keep output quiet.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Infow(string, map[string]any)  {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Warnw(string, map[string]any)  {}
func (NopLogger) Errorf(string, ...any)         {}
func (NopLogger) Errorw(string, map[string]any) {}
func (n NopLogger) With(map[string]any) Logger  { return n }

// New returns the zerolog-backed logger for a component.
func New(component string) Logger {
	return NewZerologLogger(component)
}
