// Package monitoring defines how unexpected failures reach an error tracker.
// Rejected input is not reported; only estimator and internal failures are.
package monitoring

import "time"

// Reporter sends errors to an error tracker.
type Reporter interface {
	// CaptureError reports err with optional tags.
	CaptureError(err error, tags map[string]string)
	// Recover reports a panic and re-panics. Use it deferred.
	Recover()
	// Flush waits for buffered reports and reports whether all were sent.
	Flush(timeout time.Duration) bool
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) CaptureError(error, map[string]string) {}

func (NopReporter) Recover() {
	if r := recover(); r != nil {
		panic(r)
	}
}

func (NopReporter) Flush(time.Duration) bool { return true }
