package model

import "errors"

var (
	// ErrMalformedInput reports paired sequences of different lengths or
	// vectors of the wrong dimension.
	ErrMalformedInput = errors.New("malformed input")
	// ErrDegenerateParameter reports a parameter that would turn the
	// simulation into NaN/Inf, such as a non-positive capacity or a zero
	// normalization std.
	ErrDegenerateParameter = errors.New("degenerate parameter")
	// ErrInvalidStrategy reports a strategy label other than Greedy or FeedInDamp.
	ErrInvalidStrategy = errors.New("invalid strategy")
	// ErrNonContiguous reports a time series that is not sampled every minute.
	ErrNonContiguous = errors.New("time series not contiguous")
)
