// Package infra holds the adapters around the SOH core: CSV profile
// ingestion, zerolog logging, Prometheus and InfluxDB metrics sinks, MQTT
// trajectory publishing and Sentry error reporting. Adapters implement
// interfaces declared under core/ and never the other way round.
package infra
