package surveil

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"dossier/internal/idea"
	"dossier/internal/logging"
)

// Summary is the aggregate outcome of one sweep.
type Summary struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// RunSweep surveils every stasis and active idea with a bounded worker
// pool. A failed idea never stops the sweep: the worker logs it, counts
// it, and moves to the next one. Failed ideas get no retry within the
// sweep; they are simply picked up again by the next one.
func (e *Engine) RunSweep(ctx context.Context) (Summary, error) {
	timer := logging.StartTimer(logging.CategorySweep, "RunSweep")
	defer timer.StopWithInfo()

	ideas, err := e.ideas.IdeasByStatus(ctx, idea.SweepStatuses()...)
	if err != nil {
		return Summary{}, err
	}
	total := len(ideas)
	logging.Sweep("sweep started: %d ideas, %d workers", total, e.workers)
	if total == 0 {
		return Summary{}, nil
	}

	// The buffered channel is the shared queue; a receive is an atomic
	// pop, so each idea is claimed by exactly one worker.
	queue := make(chan *idea.Idea, total)
	for _, it := range ideas {
		queue <- it
	}
	close(queue)

	workers := e.workers
	if workers > total {
		workers = total
	}

	var processed, failed atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		eg.Go(func() error {
			for it := range queue {
				if err := egCtx.Err(); err != nil {
					return err
				}
				if err := e.Surveil(egCtx, it); err != nil {
					failed.Add(1)
					logging.SweepError("idea %s failed: %v", it.ID, err)
					continue
				}
				processed.Add(1)
			}
			return nil
		})
	}
	err = eg.Wait()

	summary := Summary{
		Processed: int(processed.Load()),
		Failed:    int(failed.Load()),
		Total:     total,
	}
	logging.Sweep("sweep finished: processed=%d failed=%d total=%d",
		summary.Processed, summary.Failed, summary.Total)
	return summary, err
}
