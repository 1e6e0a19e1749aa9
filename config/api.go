package config

import "fmt"

// APIConfig configures the HTTP server started by serve.
type APIConfig struct {
	Address string `json:"address"`
	// Token enables bearer authentication when set.
	Token string `json:"token"`
}

func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

func (c APIConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}
