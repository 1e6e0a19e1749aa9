package metrics

import (
	"errors"
	"io"
	"time"
)

// RunEvent describes one completed trajectory.
type RunEvent struct {
	RunID      string
	Strategy   string
	NominalKWh float64
	Days       []int
	SOH        []float64
	Losses     []float64
	Epoch      time.Time // wall-clock time of day 0
	Duration   time.Duration
}

// FinalSOH returns the last SOH value, or 1 when the run has no day.
func (e RunEvent) FinalSOH() float64 {
	if len(e.SOH) == 0 {
		return 1
	}
	return e.SOH[len(e.SOH)-1]
}

// DayTime returns the timestamp of the given day relative to Epoch.
func (e RunEvent) DayTime(day int) time.Time {
	return e.Epoch.AddDate(0, 0, day)
}

// MetricsSink records completed runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// FailureEvent captures a rejected or failed prediction.
type FailureEvent struct {
	Strategy string
	Reason   string
	Time     time.Time
}

// FailureRecorder records failed predictions.
type FailureRecorder interface {
	RecordFailure(ev FailureEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error         { return nil }
func (NopSink) RecordFailure(FailureEvent) error { return nil }

// Ensure NopSink implements FailureRecorder.
var _ FailureRecorder = NopSink{}

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the run to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordFailure forwards failures to sinks that support them.
func (m *MultiSink) RecordFailure(ev FailureEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FailureRecorder); ok {
			if err := rec.RecordFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases every sink that holds resources.
func (m *MultiSink) Close() error {
	errs := make([]error, 0, len(m.Sinks))
	for _, s := range m.Sinks {
		errs = append(errs, CloseSink(s))
	}
	return errors.Join(errs...)
}

// CloseSink closes s when it implements io.Closer, such as the InfluxDB sink.
func CloseSink(s MetricsSink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
