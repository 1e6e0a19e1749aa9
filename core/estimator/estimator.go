// Package estimator defines the capacity-loss estimator consumed by the SOH
// simulator and a few concrete implementations that can be serialized inside
// a model bundle.
package estimator

import (
	"errors"
	"fmt"

	"github.com/kilianp07/batlife/core/model"
)

// Estimator maps a normalized feature row to the fractional capacity lost
// during that day. Implementations must be deterministic and safe for
// concurrent use.
type Estimator interface {
	EstimateLoss(x []float64) (float64, error)
}

// FeatureWeighter is implemented by estimators that can tell which inputs
// actually influence their output. Bundle validation uses it to decide
// whether a zero normalization std is harmful.
type FeatureWeighter interface {
	UsesFeature(i int) bool
}

// ErrNonFinite is returned when an estimator produces NaN or Inf.
var ErrNonFinite = errors.New("estimator returned non-finite loss")

// Uses reports whether e depends on feature i. Estimators that do not
// implement FeatureWeighter are assumed to use every feature.
func Uses(e Estimator, i int) bool {
	if fw, ok := e.(FeatureWeighter); ok {
		return fw.UsesFeature(i)
	}
	return true
}

func checkDim(x []float64) error {
	if len(x) != model.FeatureCount {
		return fmt.Errorf("%w: expected %d features, got %d", model.ErrMalformedInput, model.FeatureCount, len(x))
	}
	return nil
}
