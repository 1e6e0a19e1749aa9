package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/batlife/core/metrics"
)

// PromSink records completed runs in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	days     *prometheus.CounterVec
	final    *prometheus.GaugeVec
	loss     *prometheus.HistogramVec
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewPromSink registers run metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soh_runs_total",
			Help: "Total number of completed SOH trajectory runs",
		}, []string{"strategy"}),
		days: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soh_simulated_days_total",
			Help: "Total number of simulated days",
		}, []string{"strategy"}),
		final: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "soh_final",
			Help: "SOH at the start of the last day of the latest run",
		}, []string{"strategy"}),
		loss: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soh_daily_loss",
			Help:    "Estimated capacity loss per simulated day",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"strategy"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soh_run_duration_seconds",
			Help:    "Time spent computing a trajectory",
			Buckets: prometheus.DefBuckets,
		}, []string{"strategy"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soh_run_failures_total",
			Help: "Total number of failed predictions",
		}, []string{"reason"}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.days, err = register(reg, s.days); err != nil {
		return nil, err
	}
	if s.final, err = register(reg, s.final); err != nil {
		return nil, err
	}
	if s.loss, err = register(reg, s.loss); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, s.failures); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the counters and observes every daily loss.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Strategy).Inc()
	s.days.WithLabelValues(ev.Strategy).Add(float64(len(ev.SOH)))
	s.final.WithLabelValues(ev.Strategy).Set(ev.FinalSOH())
	h := s.loss.WithLabelValues(ev.Strategy)
	for _, l := range ev.Losses {
		h.Observe(l)
	}
	if ev.Duration > 0 {
		s.duration.WithLabelValues(ev.Strategy).Observe(ev.Duration.Seconds())
	}
	return nil
}

// RunsCounter returns the run counter for a strategy label.
func (s *PromSink) RunsCounter(strategy string) prometheus.Counter {
	return s.runs.WithLabelValues(strategy)
}

// RecordFailure increments the failure counter for the reason.
func (s *PromSink) RecordFailure(ev coremetrics.FailureEvent) error {
	s.failures.WithLabelValues(ev.Reason).Inc()
	return nil
}
