package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Propagator is the slice of the opt-in service the scheduler needs:
// realizing every stored weekly preference into ledger rows.
type Propagator interface {
	PropagateAll(ctx context.Context) error
}

// Scheduler periodically re-runs weekly preference propagation so that
// windows which were closed at set-time are picked up once they open.
type Scheduler struct {
	prop     Propagator
	log      *zap.Logger
	interval time.Duration
}

// New creates a Scheduler sweeping at the given interval.
func New(prop Propagator, log *zap.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scheduler{prop: prop, log: log, interval: interval}
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick performs one propagation sweep.
func (s *Scheduler) tick(ctx context.Context) {
	if err := s.prop.PropagateAll(ctx); err != nil {
		s.log.Error("propagation sweep failed", zap.Error(err))
	}
}
