package config

import "fmt"

// SentryConfig enables error reporting for failed runs. An empty DSN
// disables it.
type SentryConfig struct {
	DSN         string  `json:"dsn"`
	Environment string  `json:"environment"`
	Release     string  `json:"release"`
	SampleRate  float64 `json:"sample_rate"`
}

func (c *SentryConfig) SetDefaults() {
	if c.DSN == "" {
		return
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
}

func (c SentryConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be within [0,1], got %g", c.SampleRate)
	}
	return nil
}
