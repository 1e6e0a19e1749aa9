package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/batlife/config"
	"github.com/kilianp07/batlife/core/estimator"
	"github.com/kilianp07/batlife/core/factory"
	coremetrics "github.com/kilianp07/batlife/core/metrics"
	"github.com/kilianp07/batlife/core/model"
	"github.com/kilianp07/batlife/core/prediction"
	"github.com/kilianp07/batlife/core/runstore"
	"github.com/kilianp07/batlife/core/soh"
	"github.com/kilianp07/batlife/infra/logger"
)

func series(days int, start int64) model.TimeSeries {
	n := days * model.MinutesPerDay
	ts := model.TimeSeries{Timestamps: make([]int64, n), Powers: make([]float64, n)}
	for i := range ts.Timestamps {
		ts.Timestamps[i] = start + int64(i)
		ts.Powers[i] = 100
	}
	return ts
}

type recordingSink struct {
	runs     []coremetrics.RunEvent
	failures []coremetrics.FailureEvent
	err      error
}

func (r *recordingSink) RecordRun(ev coremetrics.RunEvent) error {
	r.runs = append(r.runs, ev)
	return r.err
}

func (r *recordingSink) RecordFailure(ev coremetrics.FailureEvent) error {
	r.failures = append(r.failures, ev)
	return nil
}

type recordingPublisher struct {
	recs []runstore.RunRecord
	err  error
}

func (p *recordingPublisher) PublishRun(_ context.Context, rec runstore.RunRecord) error {
	p.recs = append(p.recs, rec)
	return p.err
}

type mockReporter struct{ mock.Mock }

func (m *mockReporter) CaptureError(err error, tags map[string]string) { m.Called(err, tags) }
func (m *mockReporter) Recover()                                       {}
func (m *mockReporter) Flush(d time.Duration) bool                     { return m.Called(d).Bool(0) }

type failingStore struct{ runstore.MemoryStore }

func (f *failingStore) Append(context.Context, runstore.RunRecord) error {
	return errors.New("disk full")
}

func TestService_Predict(t *testing.T) {
	sink := &recordingSink{}
	pub := &recordingPublisher{}
	store := runstore.NewMemoryStore()
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, err := New(Options{
		Engine:              prediction.MockEngine{DailyLoss: 0.01},
		Store:               store,
		Sink:                sink,
		Publisher:           pub,
		Strict:              true,
		Epoch:               epoch,
		TrainingCapacityKWh: 5,
		Logger:              logger.NopLogger{},
	})
	require.NoError(t, err)

	rec, err := svc.Predict(context.Background(), Request{
		Series:     series(3, 1440),
		Strategy:   model.StrategyFeedInDamp,
		NominalKWh: 10,
		Source:     "test.csv",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "feedindamp", rec.Strategy)
	assert.Equal(t, []int{1, 2, 3}, rec.Days)
	require.Len(t, rec.SOH, 3)
	assert.Equal(t, 1.0, rec.SOH[0])
	assert.InDelta(t, 0.98, rec.SOH[2], 1e-12)
	assert.Equal(t, []float64{0.01, 0.01, 0.01}, rec.Losses)
	assert.Equal(t, 5.0, rec.TrainingCapacityKWh)

	stored, err := svc.Run(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.SOH, stored.SOH)
	runs, err := svc.Runs(context.Background(), runstore.RunQuery{Strategy: "feedindamp"})
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	require.Len(t, sink.runs, 1)
	assert.Equal(t, epoch, sink.runs[0].Epoch)
	assert.Equal(t, rec.ID, sink.runs[0].RunID)
	require.Len(t, pub.recs, 1)
	assert.Equal(t, rec.ID, pub.recs[0].ID)
}

func TestService_StrictRejectsGaps(t *testing.T) {
	sink := &recordingSink{}
	svc, err := New(Options{Engine: prediction.MockEngine{}, Sink: sink, Strict: true, Logger: logger.NopLogger{}})
	require.NoError(t, err)

	ts := series(1, 0)
	ts.Timestamps[10] = 11
	_, err = svc.Predict(context.Background(), Request{Series: ts, NominalKWh: 5})
	assert.ErrorIs(t, err, model.ErrNonContiguous)
	require.Len(t, sink.failures, 1)
	assert.Equal(t, "non_contiguous", sink.failures[0].Reason)

	lenient, err := New(Options{Engine: prediction.MockEngine{}, Logger: logger.NopLogger{}})
	require.NoError(t, err)
	_, err = lenient.Predict(context.Background(), Request{Series: ts, NominalKWh: 5})
	assert.NoError(t, err)
}

func TestService_SinkAndPublisherFailuresAreNotFatal(t *testing.T) {
	svc, err := New(Options{
		Engine:    prediction.MockEngine{},
		Sink:      &recordingSink{err: errors.New("influx down")},
		Publisher: &recordingPublisher{err: errors.New("broker down")},
		Logger:    logger.NopLogger{},
	})
	require.NoError(t, err)
	_, err = svc.Predict(context.Background(), Request{Series: series(1, 0), NominalKWh: 5})
	assert.NoError(t, err)
}

func TestService_StoreFailureIsFatal(t *testing.T) {
	svc, err := New(Options{Engine: prediction.MockEngine{}, Store: &failingStore{}, Logger: logger.NopLogger{}})
	require.NoError(t, err)
	_, err = svc.Predict(context.Background(), Request{Series: series(1, 0), NominalKWh: 5})
	assert.ErrorContains(t, err, "disk full")
}

func TestService_EngineError(t *testing.T) {
	sink := &recordingSink{}
	svc, err := New(Options{Engine: prediction.MockEngine{Err: model.ErrDegenerateParameter}, Sink: sink, Logger: logger.NopLogger{}})
	require.NoError(t, err)
	_, err = svc.Predict(context.Background(), Request{Series: series(1, 0)})
	assert.ErrorIs(t, err, model.ErrDegenerateParameter)
	require.Len(t, sink.failures, 1)
	assert.Equal(t, "degenerate_parameter", sink.failures[0].Reason)
}

func TestService_CanceledContext(t *testing.T) {
	svc, err := New(Options{Engine: prediction.MockEngine{}, Logger: logger.NopLogger{}})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Predict(ctx, Request{Series: series(1, 0)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RequiresEngine(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestFailureReason(t *testing.T) {
	cases := map[error]string{
		fmt.Errorf("x: %w", model.ErrMalformedInput):  "malformed_input",
		fmt.Errorf("x: %w", model.ErrInvalidStrategy): "invalid_strategy",
		&soh.EstimatorError{Err: errors.New("bad")}:   "estimator",
		fmt.Errorf("x: %w", estimator.ErrNonFinite):   "estimator",
		errors.New("other"):                           "internal",
	}
	for err, want := range cases {
		assert.Equal(t, want, FailureReason(err), err.Error())
	}
}

func TestBuild_WithStarterBundle(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "memory"
	svc, err := Build(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	rec, err := svc.Predict(context.Background(), Request{
		Series:     series(2, 0),
		Strategy:   model.StrategyGreedy,
		NominalKWh: 5,
	})
	require.NoError(t, err)
	require.Len(t, rec.SOH, 2)
	assert.Equal(t, 1.0, rec.SOH[0])
	assert.Less(t, rec.SOH[1], 1.0)
}

func TestBuild_MissingBundle(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "memory"
	cfg.Model.BundlePath = t.TempDir() + "/missing.yaml"
	_, err := Build(cfg)
	assert.Error(t, err)
}

func TestService_ReportsUnexpectedFailures(t *testing.T) {
	rep := &mockReporter{}
	rep.On("CaptureError", mock.Anything, map[string]string{"reason": "estimator", "strategy": "feedindamp"}).Once()
	rep.On("Flush", mock.Anything).Return(true).Once()

	engine := prediction.MockEngine{Err: &soh.EstimatorError{Day: 3, Err: errors.New("nan input")}}
	svc, err := New(Options{Engine: engine, Reporter: rep, Logger: logger.NopLogger{}})
	require.NoError(t, err)
	_, err = svc.Predict(context.Background(), Request{Series: series(1, 0), Strategy: model.StrategyFeedInDamp, NominalKWh: 5})
	require.Error(t, err)

	// Rejected input is not reported.
	svc.engine = prediction.MockEngine{Err: model.ErrInvalidStrategy}
	_, err = svc.Predict(context.Background(), Request{Series: series(1, 0), NominalKWh: 5})
	require.ErrorIs(t, err, model.ErrInvalidStrategy)

	require.NoError(t, svc.Close())
	rep.AssertExpectations(t)
}

func TestService_ReportsStoreFailure(t *testing.T) {
	rep := &mockReporter{}
	rep.On("CaptureError", mock.Anything, mock.MatchedBy(func(tags map[string]string) bool {
		return tags["stage"] == "store" && tags["run_id"] != ""
	})).Once()
	svc, err := New(Options{Engine: prediction.MockEngine{}, Store: &failingStore{}, Reporter: rep, Logger: logger.NopLogger{}})
	require.NoError(t, err)
	_, err = svc.Predict(context.Background(), Request{Series: series(1, 0), NominalKWh: 5})
	require.Error(t, err)
	rep.AssertExpectations(t)
}

type closingSink struct {
	coremetrics.NopSink
	closed int
}

func (c *closingSink) Close() error {
	c.closed++
	return nil
}

var lastClosingSink *closingSink

func init() {
	_ = coremetrics.RegisterMetricsSink("closing", func(map[string]any) (coremetrics.MetricsSink, error) {
		lastClosingSink = &closingSink{}
		return lastClosingSink, nil
	})
}

func TestBuild_ClosesSinks(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "memory"
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "closing"}, {Type: "nop"}}
	svc, err := Build(cfg)
	require.NoError(t, err)
	sink := lastClosingSink
	require.NotNil(t, sink)
	assert.Zero(t, sink.closed)

	require.NoError(t, svc.Close())
	assert.Equal(t, 1, sink.closed)
}

func TestBuild_ReleasesOnLaterFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "memory"
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "closing"}}
	cfg.Sentry.DSN = "not a dsn"
	_, err := Build(cfg)
	require.ErrorContains(t, err, "error reporting")
	require.NotNil(t, lastClosingSink)
	assert.Equal(t, 1, lastClosingSink.closed)

	// A sink built before an unknown one is closed too.
	cfg.Sentry.DSN = ""
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "closing"}, {Type: "missing"}}
	_, err = Build(cfg)
	require.ErrorIs(t, err, factory.ErrUnknownType)
	assert.Equal(t, 1, lastClosingSink.closed)
}
