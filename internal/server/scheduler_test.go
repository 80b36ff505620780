package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"dossier/internal/surveil"
)

type countingSweeper struct {
	runs atomic.Int64
}

func (c *countingSweeper) RunSweep(ctx context.Context) (surveil.Summary, error) {
	c.runs.Add(1)
	return surveil.Summary{}, nil
}

func TestSchedulerRunsOnInterval(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	sweeper := &countingSweeper{}
	sched := NewScheduler(sweeper, 20*time.Millisecond, nil)
	sched.Start()

	waitFor(t, "two scheduled sweeps", func() bool { return sweeper.runs.Load() >= 2 })
	sched.Stop()
}

func TestSchedulerStopHaltsTicks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	sweeper := &countingSweeper{}
	sched := NewScheduler(sweeper, 10*time.Millisecond, nil)
	sched.Start()
	waitFor(t, "first scheduled sweep", func() bool { return sweeper.runs.Load() >= 1 })
	sched.Stop()

	after := sweeper.runs.Load()
	time.Sleep(50 * time.Millisecond)
	if got := sweeper.runs.Load(); got != after {
		t.Errorf("sweeps continued after Stop: %d -> %d", after, got)
	}
}

func TestSchedulerSharesGuard(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	guard := &SweepGuard{}
	if !guard.TryAcquire() {
		t.Fatal("fresh guard should acquire")
	}

	sweeper := &countingSweeper{}
	sched := NewScheduler(sweeper, 10*time.Millisecond, guard)
	sched.Start()
	time.Sleep(60 * time.Millisecond)
	sched.Stop()

	if got := sweeper.runs.Load(); got != 0 {
		t.Errorf("%d sweeps ran while the guard was held elsewhere", got)
	}
	guard.Release()
}
