// Package runstore persists completed SOH trajectory runs.
package runstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/batlife/core/model"
	"github.com/kilianp07/batlife/core/soh"
)

// ErrNotFound is returned by Get when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// RunRecord captures one prediction and its trajectory.
type RunRecord struct {
	ID                  string    `json:"id"`
	Timestamp           time.Time `json:"timestamp"`
	Strategy            string    `json:"strategy"`
	NominalKWh          float64   `json:"nominal_kwh"`
	TrainingCapacityKWh float64   `json:"training_capacity_kwh"`
	Days                []int     `json:"days"`
	SOH                 []float64 `json:"soh"`
	Losses              []float64 `json:"losses"`
	Source              string    `json:"source,omitempty"`
}

// NewRecord returns a record with a fresh id and the current time.
func NewRecord(strategy model.Strategy) RunRecord {
	return RunRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Strategy:  strategy.String(),
	}
}

// FinalSOH returns the last SOH of the trajectory, or 1 for an empty run.
func (r RunRecord) FinalSOH() float64 {
	if len(r.SOH) == 0 {
		return 1
	}
	return r.SOH[len(r.SOH)-1]
}

// Steps rebuilds the simulation steps from the stored slices.
func (r RunRecord) Steps() []soh.Step {
	out := make([]soh.Step, len(r.SOH))
	for i := range r.SOH {
		out[i].SOH = r.SOH[i]
		if i < len(r.Days) {
			out[i].Day = r.Days[i]
		}
		if i < len(r.Losses) {
			out[i].Loss = r.Losses[i]
		}
	}
	return out
}

// RunQuery filters records. Zero values disable a filter. Limit keeps the
// most recent records.
type RunQuery struct {
	Start    time.Time
	End      time.Time
	Strategy string
	Limit    int
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Get(ctx context.Context, id string) (RunRecord, error)
	Close() error
}

func (q RunQuery) match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Strategy != "" && r.Strategy != q.Strategy {
		return false
	}
	return true
}

// finish orders records by time and applies the limit.
func (q RunQuery) finish(res []RunRecord) []RunRecord {
	sort.SliceStable(res, func(i, j int) bool { return res[i].Timestamp.Before(res[j].Timestamp) })
	if q.Limit > 0 && len(res) > q.Limit {
		res = res[len(res)-q.Limit:]
	}
	return res
}
