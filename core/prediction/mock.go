package prediction

import (
	"github.com/kilianp07/batlife/core/model"
	"github.com/kilianp07/batlife/core/soh"
)

// MockEngine returns a deterministic trajectory: the start-of-day SOH drops by
// DailyLoss per complete day in the profile. Err, when set, is returned
// instead.
type MockEngine struct {
	DailyLoss float64
	Err       error
}

// Predict implements Engine.
func (m MockEngine) Predict(ts model.TimeSeries, strategy model.Strategy, nominalKWh float64) (Trajectory, error) {
	_, _ = strategy, nominalKWh
	if m.Err != nil {
		return Trajectory{}, m.Err
	}
	if err := ts.Validate(); err != nil {
		return Trajectory{}, err
	}
	n := ts.Days()
	tr := Trajectory{Features: make([]model.DailyFeatures, n), Steps: make([]soh.Step, n)}
	current := soh.InitialSOH
	for i := 0; i < n; i++ {
		tr.Steps[i] = soh.Step{Day: model.DayIndex(ts.Timestamps[i*model.MinutesPerDay]), SOH: current, Loss: m.DailyLoss}
		current -= m.DailyLoss
	}
	return tr, nil
}
