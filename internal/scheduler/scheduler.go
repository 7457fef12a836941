package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"bssurvey/internal/executor"
	"bssurvey/internal/items"
)

// Strategy selects how output shards are organized across workers.
type Strategy string

const (
	// StrategyPerItem gives every item its own output shard.
	StrategyPerItem Strategy = "per-item"
	// StrategyPerWorker gives every worker one shard it appends to
	// sequentially across attempts.
	StrategyPerWorker Strategy = "per-worker"
)

// DefaultShardPrefix names output shards when no prefix is configured.
const DefaultShardPrefix = "litter_results"

// Options configures a scheduler run.
type Options struct {
	Concurrency  int
	RetryBudget  int
	Strategy     Strategy
	OutputDir    string
	TmpDir       string
	ShardPrefix  string
	ShowProgress bool
}

// Collector receives every completed outcome, in completion order, from the
// scheduler goroutine only. Implementations own the durable state files and
// need no internal ordering of their own.
type Collector interface {
	Collect(outcome executor.Outcome, attempt int)
}

// CollectorFunc adapts a function to the Collector interface.
type CollectorFunc func(outcome executor.Outcome, attempt int)

// Collect implements Collector.
func (f CollectorFunc) Collect(outcome executor.Outcome, attempt int) { f(outcome, attempt) }

// Result summarizes terminal item states after a run.
type Result struct {
	// Succeeded holds identities that completed on some attempt.
	Succeeded map[string]struct{}
	// Failed holds identities that exhausted the retry budget.
	Failed map[string]struct{}
	// Remaining holds identities left non-terminal by an interrupt.
	Remaining map[string]struct{}
	// Attempts counts executor invocations per identity.
	Attempts map[string]int
	// Interrupted reports whether the run stopped on context cancellation.
	Interrupted bool
}

// Scheduler drives bounded-concurrency execution with retries.
type Scheduler struct {
	exec      executor.Executor
	collector Collector
	logger    *slog.Logger
	opts      Options
}

// New constructs a scheduler. A nil collector or logger is replaced with a
// no-op so tests can omit them.
func New(exec executor.Executor, collector Collector, logger *slog.Logger, opts Options) *Scheduler {
	if collector == nil {
		collector = CollectorFunc(func(executor.Outcome, int) {})
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.RetryBudget < 0 {
		opts.RetryBudget = 0
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyPerItem
	}
	if opts.ShardPrefix == "" {
		opts.ShardPrefix = DefaultShardPrefix
	}
	return &Scheduler{exec: exec, collector: collector, logger: logger, opts: opts}
}

// Run processes the work list and returns the terminal state of every
// unique identity. Duplicate identities collapse to their first occurrence
// so an item is never attempted concurrently with itself and success is
// recorded once.
func (s *Scheduler) Run(ctx context.Context, list []items.Item) Result {
	unique := dedupe(list)
	projects := make([]string, 0, len(unique))
	for _, item := range unique {
		projects = append(projects, item.Project)
	}
	tr := newTracker(projects)

	switch s.opts.Strategy {
	case StrategyPerWorker:
		s.runPerWorker(ctx, unique, tr)
	default:
		s.runPerItem(ctx, unique, tr)
	}

	remaining := make(map[string]struct{})
	for project, state := range tr.states {
		if !state.Terminal() {
			remaining[project] = struct{}{}
		}
	}
	return Result{
		Succeeded:   tr.inState(StateSucceeded),
		Failed:      tr.inState(StateExhausted),
		Remaining:   remaining,
		Attempts:    tr.attempts,
		Interrupted: ctx.Err() != nil,
	}
}

// ItemShardPath returns the dedicated output shard for one item.
func (s *Scheduler) ItemShardPath(item items.Item) string {
	return filepath.Join(s.opts.OutputDir, fmt.Sprintf("%s_%s.csv", s.opts.ShardPrefix, item.Token))
}

// WorkerShardPath returns the persistent shard owned by one worker index.
func (s *Scheduler) WorkerShardPath(worker int) string {
	return filepath.Join(s.opts.OutputDir, fmt.Sprintf("%s_worker_%02d.csv", s.opts.ShardPrefix, worker))
}

// ShardGlob returns the consolidation pattern matching the shards a
// strategy produces.
func ShardGlob(prefix string, strategy Strategy) string {
	if prefix == "" {
		prefix = DefaultShardPrefix
	}
	if strategy == StrategyPerWorker {
		return prefix + "_worker_*.csv"
	}
	return prefix + "_*.csv"
}

// maxAttempts is the total invocation bound per item.
func (s *Scheduler) maxAttempts() int { return s.opts.RetryBudget + 1 }

// settle applies the outcome of one attempt to the state machine and hands
// it to the collector. It returns true when the item should be retried.
func (s *Scheduler) settle(out executor.Outcome, attempt int, tr *tracker) bool {
	retry := false
	if out.Success {
		if err := tr.transition(out.Project, StateSucceeded); err != nil {
			s.logger.Error("state machine violation", "error", err)
		}
		s.logger.Info("project ok", "project", out.Project, "attempt", attempt)
	} else {
		next := StateRetrying
		if attempt >= s.maxAttempts() {
			next = StateExhausted
		} else {
			retry = true
		}
		if err := tr.transition(out.Project, next); err != nil {
			s.logger.Error("state machine violation", "error", err)
		}
		s.logger.Warn("project failed",
			"project", out.Project,
			"attempt", attempt,
			"retrying", retry,
			"message", out.Message,
		)
	}
	s.collector.Collect(out, attempt)
	return retry
}

func dedupe(list []items.Item) []items.Item {
	seen := make(map[string]struct{}, len(list))
	out := make([]items.Item, 0, len(list))
	for _, item := range list {
		if _, ok := seen[item.Project]; ok {
			continue
		}
		seen[item.Project] = struct{}{}
		out = append(out, item)
	}
	return out
}
