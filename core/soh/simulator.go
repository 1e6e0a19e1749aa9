package soh

import (
	"fmt"
	"math"

	"github.com/kilianp07/batlife/core/bundle"
	"github.com/kilianp07/batlife/core/estimator"
	"github.com/kilianp07/batlife/core/model"
)

// InitialSOH is the capacity fraction at the start of the first simulated day.
const InitialSOH = 1.0

// Step is the detailed result of one simulated day.
type Step struct {
	Day        int              `json:"day"`
	SOH        float64          `json:"soh"`  // capacity at the start of the day
	Loss       float64          `json:"loss"` // estimated loss during the day
	Row        model.FeatureRow `json:"row"`
	Normalized model.FeatureRow `json:"normalized"`
}

// Simulate returns the start-of-day SOH for each day described by features
// and days.
func Simulate(features []model.DailyFeatures, days []int, strategy model.Strategy, nominalKWh float64, m *bundle.Model) ([]float64, error) {
	steps, err := Run(features, days, strategy, nominalKWh, m)
	if err != nil {
		return nil, err
	}
	return Trajectory(steps), nil
}

// Run performs the simulation and keeps the per-day details.
func Run(features []model.DailyFeatures, days []int, strategy model.Strategy, nominalKWh float64, m *bundle.Model) ([]Step, error) {
	if err := validate(features, days, strategy, nominalKWh, m); err != nil {
		return nil, err
	}
	scale := m.Scale(nominalKWh)
	steps := make([]Step, len(features))
	current := InitialSOH
	for i, f := range features {
		row := BuildRow(current, f, strategy, days[i], scale)
		norm := m.Normalize(row)
		loss, err := m.Estimator.EstimateLoss(norm[:])
		if err != nil {
			return nil, &EstimatorError{Index: i, Day: days[i], Err: err}
		}
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return nil, &EstimatorError{Index: i, Day: days[i], Err: estimator.ErrNonFinite}
		}
		steps[i] = Step{Day: days[i], SOH: current, Loss: loss, Row: row, Normalized: norm}
		current -= loss
	}
	return steps, nil
}

// BuildRow assembles the un-normalized estimator input for one day. scale is
// the training capacity divided by the nominal capacity.
func BuildRow(soh0 float64, f model.DailyFeatures, strategy model.Strategy, day int, scale float64) model.FeatureRow {
	var row model.FeatureRow
	row[model.FeatSOH0] = soh0
	row[model.FeatT1] = f.MeanPowerW * scale
	row[model.FeatStrategy] = float64(strategy)
	row[model.FeatT4] = f.MeanAbsPowerW * scale
	row[model.FeatDay] = float64(day)
	return row
}

// Trajectory projects steps onto their start-of-day SOH.
func Trajectory(steps []Step) []float64 {
	out := make([]float64, len(steps))
	for i, s := range steps {
		out[i] = s.SOH
	}
	return out
}

func validate(features []model.DailyFeatures, days []int, strategy model.Strategy, nominalKWh float64, m *bundle.Model) error {
	if len(features) != len(days) {
		return fmt.Errorf("%w: %d feature rows for %d day indices", model.ErrMalformedInput, len(features), len(days))
	}
	if !strategy.Valid() {
		return fmt.Errorf("%w: %d", model.ErrInvalidStrategy, int(strategy))
	}
	if !(nominalKWh > 0) || math.IsInf(nominalKWh, 0) {
		return fmt.Errorf("%w: nominal capacity %v kWh", model.ErrDegenerateParameter, nominalKWh)
	}
	if m == nil {
		return fmt.Errorf("%w: nil model", model.ErrDegenerateParameter)
	}
	return m.Validate()
}
