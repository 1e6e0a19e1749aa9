// Package bundle loads the pretrained degradation model: the capacity-loss
// estimator, the normalization statistics of the training set and the battery
// capacity used during training.
//
// On disk a bundle is a versioned YAML or JSON document:
//
//	version: 1
//	training_capacity_kwh: 5
//	normalization:
//	  mean: [0.9, 12.5, 0.5, 480, 182]
//	  std:  [0.05, 150, 0.5, 210, 105]
//	estimator:
//	  type: forest
//	  conf:
//	    trees: [...]
package bundle

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/batlife/core/estimator"
	"github.com/kilianp07/batlife/core/factory"
	"github.com/kilianp07/batlife/core/model"
)

// SchemaVersion is the only bundle layout understood by this package.
const SchemaVersion = 1

// ErrUnsupportedVersion is returned for bundles written with another schema.
var ErrUnsupportedVersion = errors.New("unsupported bundle version")

// Normalization holds the per-feature statistics of the training set.
type Normalization struct {
	Mean []float64 `json:"mean" yaml:"mean"`
	Std  []float64 `json:"std" yaml:"std"`
}

// File is the serialized form of a bundle.
type File struct {
	Version             int                  `json:"version" yaml:"version"`
	TrainingCapacityKWh float64              `json:"training_capacity_kwh" yaml:"training_capacity_kwh"`
	Normalization       Normalization        `json:"normalization" yaml:"normalization"`
	Estimator           factory.ModuleConfig `json:"estimator" yaml:"estimator"`
}

// Model is a loaded bundle. It is never mutated after Build and can be shared
// between concurrent simulations.
type Model struct {
	Estimator           estimator.Estimator
	Mean                model.FeatureRow
	Std                 model.FeatureRow
	TrainingCapacityKWh float64
}

// Build validates f and instantiates its estimator.
func (f File) Build() (*Model, error) {
	if f.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}
	est, err := estimator.New(f.Estimator)
	if err != nil {
		return nil, fmt.Errorf("estimator: %w", err)
	}
	return NewModel(est, f.Normalization.Mean, f.Normalization.Std, f.TrainingCapacityKWh)
}

// NewModel assembles a Model from its parts and validates it.
func NewModel(est estimator.Estimator, mean, std []float64, trainingKWh float64) (*Model, error) {
	if est == nil {
		return nil, fmt.Errorf("%w: nil estimator", model.ErrDegenerateParameter)
	}
	if len(mean) != model.FeatureCount || len(std) != model.FeatureCount {
		return nil, fmt.Errorf("%w: normalization needs %d means and stds, got %d/%d",
			model.ErrMalformedInput, model.FeatureCount, len(mean), len(std))
	}
	m := &Model{Estimator: est, TrainingCapacityKWh: trainingKWh}
	copy(m.Mean[:], mean)
	copy(m.Std[:], std)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate rejects parameters that would make the simulation produce NaN or
// Inf: a non-positive training capacity, non-finite statistics, or a zero std
// on a feature the estimator depends on.
func (m *Model) Validate() error {
	if m.Estimator == nil {
		return fmt.Errorf("%w: nil estimator", model.ErrDegenerateParameter)
	}
	if !(m.TrainingCapacityKWh > 0) || math.IsInf(m.TrainingCapacityKWh, 0) {
		return fmt.Errorf("%w: training capacity %v kWh", model.ErrDegenerateParameter, m.TrainingCapacityKWh)
	}
	for i := 0; i < model.FeatureCount; i++ {
		if !finite(m.Mean[i]) || !finite(m.Std[i]) {
			return fmt.Errorf("%w: non-finite normalization for %s", model.ErrDegenerateParameter, model.FeatureNames[i])
		}
		if m.Std[i] == 0 && estimator.Uses(m.Estimator, i) {
			return fmt.Errorf("%w: zero std for %s", model.ErrDegenerateParameter, model.FeatureNames[i])
		}
	}
	return nil
}

// Normalize returns (row - mean) / std. Features with a zero std are not used
// by the estimator (Validate guarantees it) and normalize to 0.
func (m *Model) Normalize(row model.FeatureRow) model.FeatureRow {
	var out model.FeatureRow
	for i := range row {
		if m.Std[i] == 0 {
			continue
		}
		out[i] = (row[i] - m.Mean[i]) / m.Std[i]
	}
	return out
}

// Scale is the factor applied to T1 and T4 so that a model trained on one
// battery size can be used for another.
func (m *Model) Scale(nominalKWh float64) float64 {
	return m.TrainingCapacityKWh / nominalKWh
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
