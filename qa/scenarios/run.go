package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/batlife/app"
	"github.com/kilianp07/batlife/core/features"
	"github.com/kilianp07/batlife/core/model"
	"github.com/kilianp07/batlife/core/prediction"
	"github.com/kilianp07/batlife/infra/logger"
	"github.com/kilianp07/batlife/infra/metrics"
)

// RunScenario builds the bundle, runs the profile through the application
// service and checks the expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	require.NoError(t, err, "prom sink")

	m, err := sc.Bundle().Build()
	if sc.Expected.Error != "" && err != nil {
		assert.Equal(t, sc.Expected.Error, app.FailureReason(err), err.Error())
		return
	}
	require.NoError(t, err, "bundle")

	svc, err := app.New(app.Options{
		Engine:              prediction.NewMLEngine(m),
		Sink:                sink,
		Strict:              true,
		TrainingCapacityKWh: m.TrainingCapacityKWh,
		Logger:              logger.NopLogger{},
	})
	require.NoError(t, err)

	ts, err := sc.Profile.ToSeries()
	require.NoError(t, err, "profile")
	strategy, err := model.ParseStrategy(sc.Strategy)
	if sc.Expected.Error != "" && err != nil {
		assert.Equal(t, sc.Expected.Error, app.FailureReason(err))
		return
	}
	require.NoError(t, err)

	rec, err := svc.Predict(context.Background(), app.Request{Series: ts, Strategy: strategy, NominalKWh: sc.NominalKWh})
	if sc.Expected.Error != "" {
		require.Error(t, err)
		assert.Equal(t, sc.Expected.Error, app.FailureReason(err), err.Error())
		return
	}
	require.NoError(t, err)

	exp := sc.Expected
	tol := exp.Tolerance
	if exp.Features != nil {
		feats, _, err := features.Extract(ts)
		require.NoError(t, err)
		require.Len(t, feats, len(exp.Features))
		for i, f := range exp.Features {
			assert.InDelta(t, f[0], feats[i].MeanPowerW, tol, "T1 day %d", i)
			assert.InDelta(t, f[1], feats[i].MeanAbsPowerW, tol, "T4 day %d", i)
		}
	}
	if exp.Days != nil {
		assert.Equal(t, exp.Days, rec.Days)
	}
	if exp.SOH != nil {
		require.Len(t, rec.SOH, len(exp.SOH))
		for i, v := range exp.SOH {
			assert.InDelta(t, v, rec.SOH[i], tol, "SOH day %d", i)
		}
	}
	if exp.Count != nil {
		assert.Len(t, rec.SOH, *exp.Count)
	}
	if len(rec.SOH) > 0 {
		assert.Equal(t, 1.0, rec.SOH[0])
	}
	if exp.Decreasing {
		for i := 1; i < len(rec.SOH); i++ {
			assert.Less(t, rec.SOH[i], rec.SOH[i-1], "day %d", i)
		}
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.RunsCounter(strategy.String())))
}
