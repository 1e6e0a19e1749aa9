// Package features reduces a per-minute power profile into one row of summary
// statistics per day. The extractor is pure: it performs no I/O and keeps no
// state between calls.
package features
