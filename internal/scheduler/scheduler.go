// Package scheduler triggers reconciliation passes on a fixed cadence.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/zebtan/courier-backoffice/internal/core/domain"
	"github.com/zebtan/courier-backoffice/internal/core/ports"
)

const defaultInterval = time.Minute

// Scheduler invokes the reconciler on a fixed interval. Passes never
// overlap: a tick that fires while the previous pass is still running is
// skipped, not queued.
type Scheduler struct {
	engine   ports.Reconciler
	interval time.Duration
	log      zerolog.Logger
	running  atomic.Bool
}

func New(engine ports.Reconciler, interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{engine: engine, interval: interval, log: log}
}

// Run blocks, executing one pass immediately and then one per interval,
// until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunNow(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("scheduled reconciliation pass failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunNow executes a pass if none is in flight, otherwise returns
// domain.ErrPassRunning. Used both by the ticker loop and the admin
// run-now trigger.
func (s *Scheduler) RunNow(ctx context.Context) (ports.PassSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Debug().Msg("pass still running, trigger skipped")
		return ports.PassSummary{}, domain.ErrPassRunning
	}
	defer s.running.Store(false)

	return s.engine.RunPass(ctx)
}
