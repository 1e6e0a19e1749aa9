package prediction

import (
	"github.com/kilianp07/batlife/core/bundle"
	"github.com/kilianp07/batlife/core/features"
	"github.com/kilianp07/batlife/core/model"
	"github.com/kilianp07/batlife/core/soh"
)

// Trajectory is the outcome of one prediction.
type Trajectory struct {
	Features []model.DailyFeatures
	Steps    []soh.Step
}

// SOH returns the start-of-day capacity fractions.
func (t Trajectory) SOH() []float64 { return soh.Trajectory(t.Steps) }

// Days returns the day index of each step.
func (t Trajectory) Days() []int {
	out := make([]int, len(t.Steps))
	for i, s := range t.Steps {
		out[i] = s.Day
	}
	return out
}

// Engine predicts an SOH trajectory from a power profile.
type Engine interface {
	Predict(ts model.TimeSeries, strategy model.Strategy, nominalKWh float64) (Trajectory, error)
}

// ExtractFeatures computes the daily features of a profile given as two
// parallel sequences.
func ExtractFeatures(timestamps []int64, powers []float64) ([]model.DailyFeatures, []int, error) {
	return features.Extract(model.TimeSeries{Timestamps: timestamps, Powers: powers})
}

// EstimateSOH runs the simulation over previously extracted features.
func EstimateSOH(feats []model.DailyFeatures, days []int, strategy model.Strategy, nominalKWh float64, m *bundle.Model) ([]float64, error) {
	return soh.Simulate(feats, days, strategy, nominalKWh, m)
}

// MLEngine predicts with a loaded model bundle. It holds no mutable state and
// may be shared between goroutines.
type MLEngine struct {
	Model *bundle.Model
}

// NewMLEngine returns an engine backed by m.
func NewMLEngine(m *bundle.Model) *MLEngine { return &MLEngine{Model: m} }

// Predict extracts features from ts and simulates the trajectory.
func (e *MLEngine) Predict(ts model.TimeSeries, strategy model.Strategy, nominalKWh float64) (Trajectory, error) {
	feats, days, err := features.Extract(ts)
	if err != nil {
		return Trajectory{}, err
	}
	steps, err := soh.Run(feats, days, strategy, nominalKWh, e.Model)
	if err != nil {
		return Trajectory{}, err
	}
	return Trajectory{Features: feats, Steps: steps}, nil
}
