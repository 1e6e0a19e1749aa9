package app

import (
	"fmt"
	"time"

	"github.com/kilianp07/batlife/config"
	"github.com/kilianp07/batlife/core/bundle"
	coremetrics "github.com/kilianp07/batlife/core/metrics"
	"github.com/kilianp07/batlife/core/prediction"
	"github.com/kilianp07/batlife/core/runstore"
	"github.com/kilianp07/batlife/infra/logger"
	_ "github.com/kilianp07/batlife/infra/metrics"
	"github.com/kilianp07/batlife/infra/monitoring"
	"github.com/kilianp07/batlife/infra/mqtt"
)

// LoadModel reads the bundle at path, or builds the starter bundle when
// path is empty.
func LoadModel(path string) (*bundle.Model, error) {
	if path == "" {
		return bundle.Starter().Build()
	}
	return bundle.Load(path)
}

// Build wires a Service from the configuration: model bundle, run store,
// metrics sinks, error reporting and the optional MQTT publisher. Everything
// built is released by Service.Close, or before returning when a later step
// fails.
func Build(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	m, err := LoadModel(cfg.Model.BundlePath)
	if err != nil {
		return nil, fmt.Errorf("model bundle: %w", err)
	}

	var release []func() error
	fail := func(err error) (*Service, error) {
		for i := len(release) - 1; i >= 0; i-- {
			if cerr := release[i](); cerr != nil {
				log.Errorf("release after failed build: %v", cerr)
			}
		}
		return nil, err
	}

	store, err := runstore.Open(cfg.Store.Options())
	if err != nil {
		return fail(fmt.Errorf("run store: %w", err))
	}
	release = append(release, store.Close)
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fail(fmt.Errorf("metrics sink: %w", err))
	}
	release = append(release, func() error { return coremetrics.CloseSink(sink) })
	reporter, err := monitoring.NewSentryReporter(cfg.Sentry)
	if err != nil {
		return fail(fmt.Errorf("error reporting: %w", err))
	}
	release = append(release, func() error { reporter.Flush(2 * time.Second); return nil })

	opts := Options{
		Engine:              prediction.NewMLEngine(m),
		Store:               store,
		Sink:                sink,
		Reporter:            reporter,
		Strict:              cfg.Input.IsStrict(),
		Epoch:               cfg.Input.Epoch(),
		TrainingCapacityKWh: m.TrainingCapacityKWh,
		Logger:              log,
	}
	var pub *mqtt.Publisher
	if cfg.MQTT.Enabled() {
		pub, err = mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return fail(fmt.Errorf("mqtt publisher: %w", err))
		}
		release = append(release, func() error { pub.Disconnect(); return nil })
		opts.Publisher = pub
	}
	svc, err := New(opts)
	if err != nil {
		return fail(err)
	}
	// The store is closed by Service.Close itself.
	svc.OnClose(func() error { return coremetrics.CloseSink(sink) })
	if pub != nil {
		svc.OnClose(func() error { pub.Disconnect(); return nil })
	}
	log.Infof("service ready (store=%s, sinks=%d, mqtt=%t)", cfg.Store.Backend, len(cfg.Metrics.Sinks), pub != nil)
	return svc, nil
}
