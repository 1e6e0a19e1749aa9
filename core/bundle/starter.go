package bundle

import "github.com/kilianp07/batlife/core/factory"

// Starter returns an example bundle with a linear estimator: about 5.5e-5 of
// capacity lost per day (20% over ten years) plus a term growing with the
// daily throughput T4. It is meant as a template for real bundles.
func Starter() File {
	return File{
		Version:             SchemaVersion,
		TrainingCapacityKWh: 5,
		Normalization: Normalization{
			Mean: []float64{0.9, 0, 0.5, 400, 182},
			Std:  []float64{0.05, 300, 0.5, 200, 105},
		},
		Estimator: factory.ModuleConfig{
			Type: "linear",
			Conf: map[string]any{
				"intercept": 5.5e-5,
				"weights":   []float64{0, 0, 0, 1e-5, 0},
			},
		},
	}
}
