package estimator

// Constant returns the same loss for every day.
type Constant struct {
	Loss float64 `json:"loss"`
}

// EstimateLoss returns c.Loss.
func (c Constant) EstimateLoss(x []float64) (float64, error) {
	if err := checkDim(x); err != nil {
		return 0, err
	}
	return c.Loss, nil
}

// UsesFeature always returns false.
func (Constant) UsesFeature(int) bool { return false }
