package model

import "fmt"

// MinutesPerDay is the number of one-minute samples making up a day.
const MinutesPerDay = 24 * 60

// TimeSeries is a per-minute power profile. Timestamps are minutes since the
// start of the year, Powers are in watts (demand minus PV generation).
type TimeSeries struct {
	Timestamps []int64
	Powers     []float64
}

// Len returns the number of samples.
func (ts TimeSeries) Len() int { return len(ts.Powers) }

// Validate checks that timestamps and powers are paired.
func (ts TimeSeries) Validate() error {
	if len(ts.Timestamps) != len(ts.Powers) {
		return fmt.Errorf("%w: %d timestamps for %d power samples", ErrMalformedInput, len(ts.Timestamps), len(ts.Powers))
	}
	return nil
}

// CheckContiguous verifies that consecutive samples are exactly one minute
// apart. Gaps and duplicates are both rejected.
func (ts TimeSeries) CheckContiguous() error {
	if err := ts.Validate(); err != nil {
		return err
	}
	for i := 1; i < len(ts.Timestamps); i++ {
		if step := ts.Timestamps[i] - ts.Timestamps[i-1]; step != 1 {
			return fmt.Errorf("%w: step of %d minutes at sample %d", ErrNonContiguous, step, i)
		}
	}
	return nil
}

// Days returns the number of complete days contained in the series.
func (ts TimeSeries) Days() int { return ts.Len() / MinutesPerDay }

// DayIndex returns the whole number of days since the start of the year for
// the given minute offset. Negative offsets round toward minus infinity.
func DayIndex(minute int64) int {
	d := minute / MinutesPerDay
	if minute%MinutesPerDay != 0 && minute < 0 {
		d--
	}
	return int(d)
}
