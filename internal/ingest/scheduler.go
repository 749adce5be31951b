package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler drives ingestion rounds at a fixed interval and serves the
// manual trigger from the HTTP surface.
type Scheduler struct {
	ingestor       *Ingestor
	interval       time.Duration
	triggerTimeout time.Duration
	clock          clockwork.Clock
	logger         *slog.Logger
	ready          atomic.Bool
}

// NewScheduler creates a Scheduler. triggerTimeout bounds manual
// fire-and-forget ingestions, which run detached from any request context.
func NewScheduler(ingestor *Ingestor, interval, triggerTimeout time.Duration, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		ingestor:       ingestor,
		interval:       interval,
		triggerTimeout: triggerTimeout,
		clock:          clock,
		logger:         logger,
	}
}

// CheckReadiness returns nil once the first ingestion round has completed.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("first ingestion round has not completed yet")
	}
	return nil
}

// Run executes an immediate round, then one round per interval until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)
	s.ingestor.metrics.SchedulerRunning.Set(1)
	defer s.ingestor.metrics.SchedulerRunning.Set(0)

	s.runRound(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			s.runRound(ctx)
		}
	}
}

func (s *Scheduler) runRound(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.ingestor.IngestAll(ctx)
	s.ready.Store(true)
}

// TriggerIngest starts a single-site ingestion in the background. The HTTP
// handler returns immediately; the run is bounded by the trigger timeout
// rather than the request context.
func (s *Scheduler) TriggerIngest(siteID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.triggerTimeout)
		defer cancel()
		s.ingestor.IngestSite(ctx, siteID)
	}()
}
