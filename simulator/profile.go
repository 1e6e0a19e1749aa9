// Package simulator generates synthetic household power profiles: a load
// curve with morning and evening peaks minus a PV production bell whose
// height and width follow the season.
package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/kilianp07/batlife/core/model"
)

var profileRng = rand.New(rand.NewSource(time.Now().UnixNano()))

// ProfileConfig holds parameters for profile generation. Powers are in watts.
type ProfileConfig struct {
	StartDay  int     // day of year of the first sample
	Days      int     // number of complete days to generate
	BaseLoadW float64 // constant household consumption
	PeakLoadW float64 // height of the evening consumption peak
	PVPeakW   float64 // PV output at solar noon on the summer solstice
	NoiseW    float64 // standard deviation of gaussian noise, 0 for none
	Seed      int64   // 0 uses the package generator
}

// DefaultProfileConfig returns a one-year profile for a typical household
// with a 5 kWp PV plant.
func DefaultProfileConfig() ProfileConfig {
	return ProfileConfig{
		Days:      365,
		BaseLoadW: 250,
		PeakLoadW: 1200,
		PVPeakW:   4000,
		NoiseW:    80,
	}
}

// Validate checks that the configuration describes a profile.
func (c ProfileConfig) Validate() error {
	if c.Days <= 0 {
		return fmt.Errorf("days must be positive")
	}
	if c.StartDay < 0 {
		return fmt.Errorf("start day must not be negative")
	}
	if c.BaseLoadW < 0 || c.PeakLoadW < 0 || c.PVPeakW < 0 || c.NoiseW < 0 {
		return fmt.Errorf("powers must not be negative")
	}
	return nil
}

// GenerateProfile returns Days*1440 contiguous samples starting at minute
// StartDay*1440. Each value is household load minus PV generation.
func GenerateProfile(cfg ProfileConfig) (model.TimeSeries, error) {
	if err := cfg.Validate(); err != nil {
		return model.TimeSeries{}, err
	}
	rng := profileRng
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	n := cfg.Days * model.MinutesPerDay
	ts := model.TimeSeries{Timestamps: make([]int64, n), Powers: make([]float64, n)}
	start := int64(cfg.StartDay) * model.MinutesPerDay
	for i := 0; i < n; i++ {
		minute := start + int64(i)
		doy := int(minute / model.MinutesPerDay)
		hour := float64(minute%model.MinutesPerDay) / 60
		p := load(cfg, hour) - pv(cfg, doy, hour)
		if cfg.NoiseW > 0 {
			p += rng.NormFloat64() * cfg.NoiseW
		}
		ts.Timestamps[i] = minute
		ts.Powers[i] = p
	}
	return ts, nil
}

func load(cfg ProfileConfig, hour float64) float64 {
	evening := math.Exp(-math.Pow(hour-19, 2) / (2 * 1.5 * 1.5))
	morning := 0.5 * math.Exp(-math.Pow(hour-7.5, 2)/2)
	return cfg.BaseLoadW + cfg.PeakLoadW*(evening+morning)
}

// pv follows a half sine between sunrise and sunset. Day length swings
// between 8 and 16 hours and the peak between 20% and 100% of PVPeakW,
// both maximal at the summer solstice (day 172).
func pv(cfg ProfileConfig, doy int, hour float64) float64 {
	season := math.Cos(2 * math.Pi * float64(doy%365-172) / 365)
	dayLength := 12 + 4*season
	sunrise := 12 - dayLength/2
	if hour <= sunrise || hour >= sunrise+dayLength {
		return 0
	}
	height := cfg.PVPeakW * (0.6 + 0.4*season)
	return height * math.Sin(math.Pi*(hour-sunrise)/dayLength)
}
