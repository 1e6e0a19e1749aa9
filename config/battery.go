package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/batlife/core/model"
)

// BatteryConfig describes the battery whose trajectory is estimated.
type BatteryConfig struct {
	NominalKWh float64 `json:"nominal_kwh"`
	// Strategy is "greedy", "feedindamp" or the numeric code.
	Strategy string `json:"strategy"`
}

func (c *BatteryConfig) SetDefaults() {
	if c.NominalKWh == 0 {
		c.NominalKWh = 5
	}
	if c.Strategy == "" {
		c.Strategy = model.StrategyGreedy.String()
	}
}

func (c BatteryConfig) Validate() error {
	if c.NominalKWh <= 0 {
		return fmt.Errorf("nominal_kwh must be positive, got %v", c.NominalKWh)
	}
	_, err := model.ParseStrategy(c.Strategy)
	return err
}

// ParsedStrategy returns the configured strategy.
func (c BatteryConfig) ParsedStrategy() (model.Strategy, error) {
	return model.ParseStrategy(c.Strategy)
}

// ModelConfig points at the model bundle. An empty path selects the
// built-in starter bundle.
type ModelConfig struct {
	BundlePath string `json:"bundle_path"`
}

// InputConfig controls profile ingestion.
type InputConfig struct {
	// Strict rejects profiles with gaps or repeated minutes.
	Strict *bool `json:"strict"`
	// Year anchors day 0 to January 1st when timestamps are exported.
	Year int `json:"year"`
}

func (c *InputConfig) SetDefaults() {
	if c.Strict == nil {
		strict := true
		c.Strict = &strict
	}
	if c.Year == 0 {
		c.Year = time.Now().Year()
	}
}

func (c InputConfig) Validate() error {
	if c.Year < 1970 || c.Year > 9999 {
		return fmt.Errorf("year out of range: %d", c.Year)
	}
	return nil
}

// IsStrict reports whether contiguity is enforced.
func (c InputConfig) IsStrict() bool {
	return c.Strict == nil || *c.Strict
}

// Epoch returns midnight UTC on January 1st of Year.
func (c InputConfig) Epoch() time.Time {
	return time.Date(c.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// OutputConfig selects the trajectory export format.
type OutputConfig struct {
	Format string `json:"format"`
}

func (c *OutputConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = "csv"
	}
}

func (c OutputConfig) Validate() error {
	if c.Format != "csv" && c.Format != "json" {
		return fmt.Errorf("unknown output format %s", c.Format)
	}
	return nil
}
