package logger

// Logger is the logging surface of the service layers. The numeric core
// (features, soh, estimator, bundle) never logs.
//
// The *w variants attach structured fields; With returns a child logger that
// carries fields on every record, such as the run id.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Infow(msg string, fields map[string]any)
	Warnf(format string, args ...any)
	Warnw(msg string, fields map[string]any)
	Errorf(format string, args ...any)
	Errorw(msg string, fields map[string]any)
	With(fields map[string]any) Logger
}
