package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/batlife/core/estimator"
	coremetrics "github.com/kilianp07/batlife/core/metrics"
	"github.com/kilianp07/batlife/core/model"
	"github.com/kilianp07/batlife/core/monitoring"
	"github.com/kilianp07/batlife/core/prediction"
	"github.com/kilianp07/batlife/core/runstore"
	"github.com/kilianp07/batlife/core/soh"
	"github.com/kilianp07/batlife/infra/logger"
)

// Publisher forwards completed runs to an external system.
type Publisher interface {
	PublishRun(ctx context.Context, rec runstore.RunRecord) error
}

// Request is one prediction request.
type Request struct {
	Series     model.TimeSeries
	Strategy   model.Strategy
	NominalKWh float64
	Source     string
}

// Options configures a Service. Only Engine is required.
type Options struct {
	Engine              prediction.Engine
	Store               runstore.Store
	Sink                coremetrics.MetricsSink
	Publisher           Publisher
	Reporter            monitoring.Reporter
	Strict              bool
	Epoch               time.Time
	TrainingCapacityKWh float64
	Logger              logger.Logger
}

// Service runs predictions and records their outcome.
type Service struct {
	engine      prediction.Engine
	store       runstore.Store
	sink        coremetrics.MetricsSink
	publisher   Publisher
	reporter    monitoring.Reporter
	strict      bool
	epoch       time.Time
	trainingKWh float64
	log         logger.Logger
	closers     []func() error
}

// New creates a Service. A nil store keeps runs in memory and a nil sink
// discards metrics.
func New(opts Options) (*Service, error) {
	if opts.Engine == nil {
		return nil, errors.New("prediction engine is required")
	}
	if opts.Store == nil {
		opts.Store = runstore.NewMemoryStore()
	}
	if opts.Sink == nil {
		opts.Sink = coremetrics.NopSink{}
	}
	if opts.Reporter == nil {
		opts.Reporter = monitoring.NopReporter{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("service")
	}
	return &Service{
		engine:      opts.Engine,
		store:       opts.Store,
		sink:        opts.Sink,
		publisher:   opts.Publisher,
		reporter:    opts.Reporter,
		strict:      opts.Strict,
		epoch:       opts.Epoch,
		trainingKWh: opts.TrainingCapacityKWh,
		log:         opts.Logger,
	}, nil
}

// Predict validates the profile, computes the trajectory and persists it.
// Metrics and publishing failures are logged only; storage failures are
// returned.
func (s *Service) Predict(ctx context.Context, req Request) (runstore.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return runstore.RunRecord{}, err
	}
	start := time.Now()
	if s.strict {
		if err := req.Series.CheckContiguous(); err != nil {
			return runstore.RunRecord{}, s.fail(req, err)
		}
	}
	tr, err := s.engine.Predict(req.Series, req.Strategy, req.NominalKWh)
	if err != nil {
		return runstore.RunRecord{}, s.fail(req, err)
	}

	rec := runstore.NewRecord(req.Strategy)
	rec.NominalKWh = req.NominalKWh
	rec.TrainingCapacityKWh = s.trainingKWh
	rec.Source = req.Source
	rec.Days = tr.Days()
	rec.SOH = tr.SOH()
	rec.Losses = losses(tr.Steps)
	log := s.log.With(map[string]any{"run_id": rec.ID, "strategy": rec.Strategy})
	log.Infow("trajectory computed", map[string]any{
		"days":      len(rec.SOH),
		"final_soh": rec.FinalSOH(),
	})

	if err := s.store.Append(ctx, rec); err != nil {
		err = fmt.Errorf("store run: %w", err)
		s.reporter.CaptureError(err, map[string]string{"run_id": rec.ID, "stage": "store"})
		return runstore.RunRecord{}, err
	}

	ev := coremetrics.RunEvent{
		RunID:      rec.ID,
		Strategy:   rec.Strategy,
		NominalKWh: rec.NominalKWh,
		Days:       rec.Days,
		SOH:        rec.SOH,
		Losses:     rec.Losses,
		Epoch:      s.epoch,
		Duration:   time.Since(start),
	}
	if err := s.sink.RecordRun(ev); err != nil {
		log.Errorw("record metrics", map[string]any{"error": err.Error()})
	}
	if s.publisher != nil {
		if err := s.publisher.PublishRun(ctx, rec); err != nil {
			log.Errorw("publish run", map[string]any{"error": err.Error()})
		}
	}
	return rec, nil
}

// Runs returns stored runs matching q.
func (s *Service) Runs(ctx context.Context, q runstore.RunQuery) ([]runstore.RunRecord, error) {
	return s.store.Query(ctx, q)
}

// Run returns a stored run by id.
func (s *Service) Run(ctx context.Context, id string) (runstore.RunRecord, error) {
	return s.store.Get(ctx, id)
}

// OnClose registers a release function called by Close.
func (s *Service) OnClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Reporter returns the error reporter used for unexpected failures.
func (s *Service) Reporter() monitoring.Reporter { return s.reporter }

// Close releases the store and every registered resource, then flushes
// pending error reports.
func (s *Service) Close() error {
	defer s.reporter.Flush(2 * time.Second)
	errs := []error{s.store.Close()}
	for _, fn := range s.closers {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}

func (s *Service) fail(req Request, err error) error {
	reason := FailureReason(err)
	s.log.Warnw("prediction rejected", map[string]any{
		"reason":   reason,
		"strategy": req.Strategy.String(),
		"source":   req.Source,
		"error":    err.Error(),
	})
	if reason == "estimator" || reason == "internal" {
		s.reporter.CaptureError(err, map[string]string{"reason": reason, "strategy": req.Strategy.String()})
	}
	if rec, ok := s.sink.(coremetrics.FailureRecorder); ok {
		if rerr := rec.RecordFailure(coremetrics.FailureEvent{
			Strategy: req.Strategy.String(),
			Reason:   reason,
			Time:     time.Now(),
		}); rerr != nil {
			s.log.Errorf("record failure: %v", rerr)
		}
	}
	return err
}

// FailureReason classifies a prediction error for metrics and HTTP status
// mapping.
func FailureReason(err error) string {
	var ee *soh.EstimatorError
	switch {
	case errors.Is(err, model.ErrNonContiguous):
		return "non_contiguous"
	case errors.Is(err, model.ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, model.ErrDegenerateParameter):
		return "degenerate_parameter"
	case errors.Is(err, model.ErrInvalidStrategy):
		return "invalid_strategy"
	case errors.Is(err, estimator.ErrNonFinite), errors.As(err, &ee):
		return "estimator"
	default:
		return "internal"
	}
}

func losses(steps []soh.Step) []float64 {
	out := make([]float64, len(steps))
	for i, st := range steps {
		out[i] = st.Loss
	}
	return out
}
