package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"bssurvey/internal/consolidate"
	"bssurvey/internal/executor"
	"bssurvey/internal/items"
)

type workerOutcome struct {
	worker  int
	outcome executor.Outcome
}

// runPerWorker partitions the list once and keeps worker/shard ownership
// stable across attempts: a worker's failures come back to the same worker.
func (s *Scheduler) runPerWorker(ctx context.Context, list []items.Item, tr *tracker) {
	buckets := Partition(list, s.opts.Concurrency)

	for attempt := 1; attempt <= s.maxAttempts(); attempt++ {
		total := 0
		for _, bucket := range buckets {
			total += len(bucket)
		}
		if total == 0 || ctx.Err() != nil {
			return
		}
		s.logger.Info("dispatching attempt",
			"attempt", attempt,
			"max_attempts", s.maxAttempts(),
			"pending", total,
			"strategy", StrategyPerWorker,
		)

		byProject := make(map[string]items.Item, total)
		for _, bucket := range buckets {
			for _, item := range bucket {
				byProject[item.Project] = item
				if err := tr.transition(item.Project, StateAttempting); err != nil {
					s.logger.Error("state machine violation", "error", err)
				}
			}
		}

		outcomes := make(chan workerOutcome, total)
		var group errgroup.Group
		for idx, bucket := range buckets {
			if len(bucket) == 0 {
				continue
			}
			idx, bucket := idx, bucket
			group.Go(func() error {
				s.workerLoop(ctx, idx, bucket, outcomes)
				return nil
			})
		}
		go func() {
			_ = group.Wait()
			close(outcomes)
		}()

		bar := s.newProgress(total, attempt)
		next := make([][]items.Item, len(buckets))
		for wo := range outcomes {
			if s.settle(wo.outcome, attempt, tr) {
				next[wo.worker] = append(next[wo.worker], byProject[wo.outcome.Project])
			}
			bar.add(1)
		}
		bar.finish()
		buckets = next
	}
}

// workerLoop processes one worker's bucket sequentially, accumulating
// successful rows into the worker's own shard. Per-item temp outputs are
// removed on every path.
func (s *Scheduler) workerLoop(ctx context.Context, worker int, bucket []items.Item, outcomes chan<- workerOutcome) {
	shard := s.WorkerShardPath(worker)
	for _, item := range bucket {
		if ctx.Err() != nil {
			return
		}
		tmpOut := filepath.Join(s.opts.TmpDir, fmt.Sprintf("tmp_out_%s.csv", item.Token))
		out := s.exec.Execute(ctx, item, tmpOut)
		if out.Success {
			if err := consolidate.AppendRows(tmpOut, shard); err != nil {
				out = executor.Failure(item.Project, "%s: accumulate worker shard: %v", executor.PrefixUnexpected, err)
			}
		}
		_ = os.Remove(tmpOut)
		outcomes <- workerOutcome{worker: worker, outcome: out}
	}
}
