package features

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/batlife/core/model"
)

// Extract splits ts into consecutive blocks of model.MinutesPerDay samples and
// returns T1 (mean power) and T4 (mean absolute power) for each block along
// with the day index of the block's first sample. Samples after the last
// complete day are discarded. Contiguity of the timestamps is assumed, not
// checked; see model.TimeSeries.CheckContiguous.
func Extract(ts model.TimeSeries) ([]model.DailyFeatures, []int, error) {
	if err := ts.Validate(); err != nil {
		return nil, nil, err
	}
	n := ts.Days()
	feats := make([]model.DailyFeatures, n)
	days := make([]int, n)
	abs := make([]float64, model.MinutesPerDay)
	for d := 0; d < n; d++ {
		start := d * model.MinutesPerDay
		block := ts.Powers[start : start+model.MinutesPerDay]
		for i, p := range block {
			abs[i] = math.Abs(p)
		}
		feats[d] = model.DailyFeatures{
			MeanPowerW:    stat.Mean(block, nil),
			MeanAbsPowerW: stat.Mean(abs, nil),
		}
		days[d] = model.DayIndex(ts.Timestamps[start])
	}
	return feats, days, nil
}
