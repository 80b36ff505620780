package server

import (
	"context"
	"time"

	"dossier/internal/logging"
)

// Scheduler runs the sweep on a fixed interval. It shares the sweep
// guard with the HTTP trigger, so an interval tick that lands while a
// manual sweep is running is skipped rather than queued.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	guard    *SweepGuard
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduler creates a scheduler. A nil guard gets a private one.
func NewScheduler(sweeper Sweeper, interval time.Duration, guard *SweepGuard) *Scheduler {
	if guard == nil {
		guard = &SweepGuard{}
	}
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		guard:    guard,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker goroutine.
func (s *Scheduler) Start() {
	logging.Sweep("scheduler started: interval=%s", s.interval)
	go s.run()
}

// Stop halts the ticker and waits for the loop to exit. A sweep already
// in flight finishes on its own clock.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
	logging.Sweep("scheduler stopped")
}

func (s *Scheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Scheduler) sweepOnce() {
	if !s.guard.TryAcquire() {
		logging.Sweep("scheduled sweep skipped: previous sweep still running")
		return
	}
	defer s.guard.Release()

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	summary, err := s.sweeper.RunSweep(ctx)
	if err != nil {
		logging.SweepError("scheduled sweep failed: %v", err)
		return
	}
	logging.Sweep("scheduled sweep done: processed=%d failed=%d total=%d",
		summary.Processed, summary.Failed, summary.Total)
}
