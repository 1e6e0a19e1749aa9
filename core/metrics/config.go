package metrics

import "github.com/kilianp07/batlife/core/factory"

// Config defines settings for metrics sinks. Address, when set, serves
// /metrics on its own listener instead of the API router.
type Config struct {
	Sinks   []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	Address string                 `json:"address" yaml:"address"`
}
