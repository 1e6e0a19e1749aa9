package soh

import "fmt"

// EstimatorError reports an estimator failure for one day of the run.
type EstimatorError struct {
	Index int // position in the input sequence
	Day   int // day index since the start of the year
	Err   error
}

func (e *EstimatorError) Error() string {
	return fmt.Sprintf("estimate loss for day %d (row %d): %v", e.Day, e.Index, e.Err)
}

func (e *EstimatorError) Unwrap() error { return e.Err }
