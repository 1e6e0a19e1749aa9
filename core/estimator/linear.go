package estimator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/batlife/core/model"
)

// Linear is a linear regression over the normalized features.
type Linear struct {
	Intercept float64
	weights   *mat.VecDense
}

// NewLinear returns a linear estimator. weights must have one entry per feature.
func NewLinear(intercept float64, weights []float64) (*Linear, error) {
	if len(weights) != model.FeatureCount {
		return nil, fmt.Errorf("%w: linear estimator needs %d weights, got %d", model.ErrMalformedInput, model.FeatureCount, len(weights))
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Linear{Intercept: intercept, weights: mat.NewVecDense(len(w), w)}, nil
}

// EstimateLoss returns intercept + w·x.
func (l *Linear) EstimateLoss(x []float64) (float64, error) {
	if err := checkDim(x); err != nil {
		return 0, err
	}
	return l.Intercept + mat.Dot(l.weights, mat.NewVecDense(len(x), x)), nil
}

// UsesFeature reports whether feature i has a non-zero weight.
func (l *Linear) UsesFeature(i int) bool {
	if i < 0 || i >= l.weights.Len() {
		return false
	}
	return l.weights.AtVec(i) != 0
}

// Weights returns a copy of the coefficients.
func (l *Linear) Weights() []float64 {
	out := make([]float64, l.weights.Len())
	for i := range out {
		out[i] = l.weights.AtVec(i)
	}
	return out
}
