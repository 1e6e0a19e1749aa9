package monitoring

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/batlife/config"
	coremon "github.com/kilianp07/batlife/core/monitoring"
)

// NewSentryReporter returns a Reporter backed by a dedicated Sentry hub, or
// a NopReporter when no DSN is configured.
func NewSentryReporter(cfg config.SentryConfig) (coremon.Reporter, error) {
	if cfg.DSN == "" {
		return coremon.NopReporter{}, nil
	}
	return newSentryReporter(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		SampleRate:  cfg.SampleRate,
	})
}

func newSentryReporter(opts sentry.ClientOptions) (*SentryReporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("sentry client: %w", err)
	}
	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// SentryReporter reports through its own hub so several services can run in
// one process.
type SentryReporter struct {
	hub *sentry.Hub
}

func (s *SentryReporter) CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		s.hub.CaptureException(err)
	})
}

func (s *SentryReporter) Recover() {
	if r := recover(); r != nil {
		s.hub.Recover(r)
		s.hub.Flush(2 * time.Second)
		panic(r)
	}
}

func (s *SentryReporter) Flush(timeout time.Duration) bool { return s.hub.Flush(timeout) }
