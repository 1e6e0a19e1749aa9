package estimator

import (
	"errors"
	"fmt"

	"github.com/kilianp07/batlife/core/model"
)

// leaf marks a node without children.
const leaf = -1

// Tree is a binary regression tree stored as parallel node arrays. Node 0 is
// the root. An internal node sends x to Left when x[Feature] <= Threshold and
// to Right otherwise; a leaf has Left == Right == -1 and predicts Value.
// Children always have a larger index than their parent.
type Tree struct {
	Feature   []int     `json:"feature" yaml:"feature"`
	Threshold []float64 `json:"threshold" yaml:"threshold"`
	Left      []int     `json:"left" yaml:"left"`
	Right     []int     `json:"right" yaml:"right"`
	Value     []float64 `json:"value" yaml:"value"`
}

// ErrInvalidTree reports a structurally broken tree.
var ErrInvalidTree = errors.New("invalid tree")

// Validate checks array lengths, child ordering and feature indices.
func (t Tree) Validate() error {
	n := len(t.Value)
	if n == 0 {
		return fmt.Errorf("%w: no nodes", ErrInvalidTree)
	}
	if len(t.Feature) != n || len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n {
		return fmt.Errorf("%w: node arrays differ in length", ErrInvalidTree)
	}
	for i := 0; i < n; i++ {
		l, r := t.Left[i], t.Right[i]
		if l == leaf && r == leaf {
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("%w: node %d has children %d/%d", ErrInvalidTree, i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= model.FeatureCount {
			return fmt.Errorf("%w: node %d splits on feature %d", ErrInvalidTree, i, f)
		}
	}
	return nil
}

func (t Tree) predict(x []float64) float64 {
	i := 0
	for t.Left[i] != leaf {
		if x[t.Feature[i]] <= t.Threshold[i] {
			i = t.Left[i]
		} else {
			i = t.Right[i]
		}
	}
	return t.Value[i]
}

// Forest averages the predictions of its trees, like a random forest regressor.
type Forest struct {
	Trees []Tree `json:"trees" yaml:"trees"`

	used [model.FeatureCount]bool
}

// NewForest validates the trees and returns the ensemble.
func NewForest(trees []Tree) (*Forest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrInvalidTree)
	}
	f := &Forest{Trees: trees}
	for k, t := range trees {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("tree %d: %w", k, err)
		}
		for i := range t.Value {
			if t.Left[i] != leaf {
				f.used[t.Feature[i]] = true
			}
		}
	}
	return f, nil
}

// EstimateLoss returns the mean leaf value reached in every tree.
func (f *Forest) EstimateLoss(x []float64) (float64, error) {
	if err := checkDim(x); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}

// UsesFeature reports whether any split tests feature i.
func (f *Forest) UsesFeature(i int) bool {
	if i < 0 || i >= model.FeatureCount {
		return false
	}
	return f.used[i]
}
