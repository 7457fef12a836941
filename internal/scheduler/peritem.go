package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bssurvey/internal/executor"
	"bssurvey/internal/items"
)

// runPerItem processes the whole pending set each attempt, shrinking it to
// the failed subset between attempts.
func (s *Scheduler) runPerItem(ctx context.Context, list []items.Item, tr *tracker) {
	pending := list
	for attempt := 1; attempt <= s.maxAttempts() && len(pending) > 0; attempt++ {
		if ctx.Err() != nil {
			return
		}
		s.logger.Info("dispatching attempt",
			"attempt", attempt,
			"max_attempts", s.maxAttempts(),
			"pending", len(pending),
			"strategy", StrategyPerItem,
		)

		for _, item := range pending {
			if err := tr.transition(item.Project, StateAttempting); err != nil {
				s.logger.Error("state machine violation", "error", err)
			}
		}

		outcomes := make(chan executor.Outcome, len(pending))
		var group errgroup.Group
		group.SetLimit(s.opts.Concurrency)
		for _, item := range pending {
			item := item
			group.Go(func() error {
				// Stop dispatching once the run is interrupted; completed
				// outcomes already in the channel still get collected.
				if ctx.Err() != nil {
					return nil
				}
				outcomes <- s.exec.Execute(ctx, item, s.ItemShardPath(item))
				return nil
			})
		}
		go func() {
			_ = group.Wait()
			close(outcomes)
		}()

		bar := s.newProgress(len(pending), attempt)
		byProject := indexByProject(pending)
		var failures []items.Item
		for out := range outcomes {
			if s.settle(out, attempt, tr) {
				failures = append(failures, byProject[out.Project])
			}
			bar.add(1)
		}
		bar.finish()
		pending = failures
	}
}

func indexByProject(list []items.Item) map[string]items.Item {
	out := make(map[string]items.Item, len(list))
	for _, item := range list {
		out[item.Project] = item
	}
	return out
}
