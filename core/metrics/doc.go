// Package metrics defines the sinks that observe completed SOH runs. Sinks
// like the Prometheus and InfluxDB implementations in infra/metrics are
// registered by name and built from configuration; several configured sinks
// are combined into a MultiSink.
package metrics
