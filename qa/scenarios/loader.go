// Package scenarios runs end-to-end SOH estimation scenarios described in
// YAML files: a profile, a model bundle and the expected trajectory.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/batlife/core/bundle"
	"github.com/kilianp07/batlife/core/factory"
	"github.com/kilianp07/batlife/core/model"
	"github.com/kilianp07/batlife/simulator"
)

// ProfileDef describes the input power profile. Kind "constant" repeats
// PowerW; kind "synthetic" uses the profile generator.
type ProfileDef struct {
	Kind        string  `yaml:"kind"`
	Days        int     `yaml:"days"`
	StartMinute int64   `yaml:"start_minute"`
	Remainder   int     `yaml:"remainder,omitempty"`
	PowerW      float64 `yaml:"power_w,omitempty"`
	BaseLoadW   float64 `yaml:"base_load_w,omitempty"`
	PeakLoadW   float64 `yaml:"peak_load_w,omitempty"`
	PVPeakW     float64 `yaml:"pv_peak_w,omitempty"`
	NoiseW      float64 `yaml:"noise_w,omitempty"`
	Seed        int64   `yaml:"seed,omitempty"`
}

// ToSeries builds the profile.
func (p ProfileDef) ToSeries() (model.TimeSeries, error) {
	switch p.Kind {
	case "", "constant":
		n := p.Days*model.MinutesPerDay + p.Remainder
		ts := model.TimeSeries{Timestamps: make([]int64, n), Powers: make([]float64, n)}
		for i := 0; i < n; i++ {
			ts.Timestamps[i] = p.StartMinute + int64(i)
			ts.Powers[i] = p.PowerW
		}
		return ts, nil
	case "synthetic":
		if p.StartMinute%model.MinutesPerDay != 0 {
			return model.TimeSeries{}, fmt.Errorf("synthetic profiles start at midnight")
		}
		return simulator.GenerateProfile(simulator.ProfileConfig{
			StartDay:  int(p.StartMinute / model.MinutesPerDay),
			Days:      p.Days,
			BaseLoadW: p.BaseLoadW,
			PeakLoadW: p.PeakLoadW,
			PVPeakW:   p.PVPeakW,
			NoiseW:    p.NoiseW,
			Seed:      p.Seed,
		})
	default:
		return model.TimeSeries{}, fmt.Errorf("unknown profile kind %q", p.Kind)
	}
}

// Expected lists the checks applied to the outcome. Empty fields are not
// checked.
type Expected struct {
	Features  [][2]float64 `yaml:"features,omitempty"`
	Days      []int        `yaml:"days,omitempty"`
	SOH       []float64    `yaml:"soh,omitempty"`
	Count     *int         `yaml:"count,omitempty"`
	Tolerance float64      `yaml:"tolerance,omitempty"`
	// Decreasing requires every step to lose capacity.
	Decreasing bool `yaml:"decreasing,omitempty"`
	// Error is the failure reason reported by app.FailureReason.
	Error string `yaml:"error,omitempty"`
}

type Scenario struct {
	Name          string               `yaml:"name"`
	Description   string               `yaml:"description,omitempty"`
	Profile       ProfileDef           `yaml:"profile"`
	Strategy      string               `yaml:"strategy"`
	NominalKWh    float64              `yaml:"nominal_kwh"`
	TrainingKWh   float64              `yaml:"training_kwh"`
	Normalization bundle.Normalization `yaml:"normalization"`
	Estimator     factory.ModuleConfig `yaml:"estimator"`
	Expected      Expected             `yaml:"expected"`
}

// Bundle returns the model bundle described by the scenario.
func (s Scenario) Bundle() bundle.File {
	return bundle.File{
		Version:             bundle.SchemaVersion,
		TrainingCapacityKWh: s.TrainingKWh,
		Normalization:       s.Normalization,
		Estimator:           s.Estimator,
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	return &sc, nil
}
