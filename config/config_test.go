package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/batlife/core/model"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `battery:
  nominal_kwh: 10
  strategy: feedindamp
model:
  bundle_path: model.yaml
input:
  strict: false
  year: 2023
output:
  format: json
store:
  backend: sqlite
  path: runs.db
metrics:
  address: ":9100"
  sinks:
    - type: "nop"
mqtt:
  broker: "tcp://localhost:1883"
  topic: "home/soh"
  qos: 1
  retain: true
api:
  address: ":9000"
  token: secret
logging:
  level: DEBUG
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Battery.NominalKWh)
	s, err := cfg.Battery.ParsedStrategy()
	require.NoError(t, err)
	assert.Equal(t, model.StrategyFeedInDamp, s)
	assert.Equal(t, "model.yaml", cfg.Model.BundlePath)
	assert.False(t, cfg.Input.IsStrict())
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Input.Epoch())
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "sqlite", cfg.Store.Options().Backend)
	assert.Equal(t, "runs.db", cfg.Store.Path)
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "nop", cfg.Metrics.Sinks[0].Type)
	assert.Equal(t, ":9100", cfg.Metrics.Address)
	assert.Equal(t, "home/soh", cfg.MQTT.Topic)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.True(t, cfg.MQTT.Retain)
	assert.NotEmpty(t, cfg.MQTT.ClientID)
	assert.Equal(t, ":9000", cfg.API.Address)
	assert.Equal(t, "secret", cfg.API.Token)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoggingConfig_ValidateIgnoresCase(t *testing.T) {
	assert.NoError(t, LoggingConfig{Level: "INFO"}.Validate())
	assert.Error(t, LoggingConfig{Level: "LOUD"}.Validate())
}

func TestLoad_UppercaseLevelFromEnv(t *testing.T) {
	t.Setenv("BATLIFE_LOGGING__LEVEL", "WARN")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_JSONWithDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{"battery": {"nominal_kwh": 7.5}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7.5, cfg.Battery.NominalKWh)
	assert.Equal(t, "greedy", cfg.Battery.Strategy)
	assert.True(t, cfg.Input.IsStrict())
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "jsonl", cfg.Store.Backend)
	assert.Equal(t, "batlife-runs.jsonl", cfg.Store.Path)
	assert.Equal(t, ":8080", cfg.API.Address)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.MQTT.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BATLIFE_BATTERY__NOMINAL_KWH", "12")
	t.Setenv("BATLIFE_STORE__BACKEND", "memory")
	t.Setenv("BATLIFE_LOGGING__LEVEL", "warn")
	path := writeFile(t, "config.yaml", "battery:\n  nominal_kwh: 5\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12.0, cfg.Battery.NominalKWh)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Battery.NominalKWh)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]struct {
		name string
		data string
	}{
		"format":   {"config.toml", ""},
		"strategy": {"c.yaml", "battery:\n  strategy: lazy\n"},
		"capacity": {"c.yaml", "battery:\n  nominal_kwh: -1\n"},
		"output":   {"c.yaml", "output:\n  format: xml\n"},
		"store":    {"c.yaml", "store:\n  backend: redis\n"},
		"level":    {"c.yaml", "logging:\n  level: loud\n"},
		"qos":      {"c.yaml", "mqtt:\n  broker: tcp://x:1883\n  qos: 3\n"},
		"sentry":   {"c.yaml", "sentry:\n  dsn: https://k@sentry.example.com/1\n  sample_rate: 2\n"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.name, tc.data))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5.0, cfg.Battery.NominalKWh)
}

func TestSentryDefaults(t *testing.T) {
	path := writeFile(t, "c.yaml", "sentry:\n  dsn: https://k@sentry.example.com/1\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Sentry.SampleRate)
	assert.Equal(t, "production", cfg.Sentry.Environment)

	off := Default()
	assert.Zero(t, off.Sentry.SampleRate)
}
