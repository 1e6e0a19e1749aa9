// Package prediction is the caller-facing entry point of the SOH pipeline:
// it chains feature extraction and the day-by-day simulation behind a small
// Engine interface so that services and handlers can swap in a mock.
package prediction
