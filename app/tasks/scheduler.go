package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler invokes the batch runner at a fixed interval, and once at
// startup. The batch itself is sequential; one slow feed delays the rest of
// its run but per-fetch timeouts bound the damage.
type Scheduler struct {
	runner   *Runner
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewScheduler(runner *Runner, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:   runner,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runBatch()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.runBatch()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// runBatch runs one refresh-all pass. Per-feed failures are already inside
// the BatchResult; only a failed feed-list load surfaces here, and even that
// never stops the scheduler.
func (s *Scheduler) runBatch() {
	if _, err := s.runner.RefreshAll(s.ctx); err != nil {
		if s.ctx.Err() != nil {
			return
		}
		slog.Error("Scheduled batch refresh failed", "error", err)
	}
}
