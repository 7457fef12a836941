package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"bssurvey/internal/config"
	"bssurvey/internal/consolidate"
	"bssurvey/internal/executor"
	"bssurvey/internal/executor/litterbox"
	"bssurvey/internal/executor/scratchapi"
	"bssurvey/internal/history"
	"bssurvey/internal/items"
	"bssurvey/internal/logging"
	"bssurvey/internal/report"
	"bssurvey/internal/scheduler"
	"bssurvey/internal/state"
)

// Mode selects how prior run state filters the work list.
type Mode string

const (
	// ModeClean discards prior state and processes the full list.
	ModeClean Mode = "clean"
	// ModeResume skips items already recorded as done.
	ModeResume Mode = "resume"
	// ModeResumeSkipFailed skips items recorded as done or failed.
	ModeResumeSkipFailed Mode = "resume-skip-failed"
	// ModeFailedOnly processes only items recorded as failed.
	ModeFailedOnly Mode = "failed-only"
)

// ParseMode validates a mode name from the command line.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModeClean, ModeResume, ModeResumeSkipFailed, ModeFailedOnly:
		return Mode(value), nil
	case "":
		return ModeResume, nil
	default:
		return "", fmt.Errorf("unknown resume mode %q (want clean, resume, resume-skip-failed, or failed-only)", value)
	}
}

// Options carries per-invocation settings on top of the config file.
type Options struct {
	CSVPath      string
	Mode         Mode
	DryRun       bool
	ShowProgress bool
	// Pretty selects the table renderer for the final summary.
	Pretty bool
	// Stdout receives the final summary. Defaults to os.Stdout.
	Stdout io.Writer
}

// Runner executes one batch run against a validated config.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	runID  string

	// exec overrides the config-selected executor in tests.
	exec executor.Executor
}

// New constructs a runner. A nil logger is replaced with a no-op.
func New(cfg *config.Config, logger *slog.Logger, runID string) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger, runID: runID}
}

// Run drives a full batch and returns the process exit code.
func (r *Runner) Run(ctx context.Context, opts Options) (int, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Mode == "" {
		opts.Mode = ModeResume
	}
	if err := r.cfg.EnsureDirectories(); err != nil {
		return report.ExitFailures, err
	}

	list, err := items.LoadCSV(opts.CSVPath)
	if err != nil {
		return report.ExitFailures, err
	}
	if len(list) == 0 {
		r.logger.Warn("input contained no project rows", "csv", opts.CSVPath)
		return report.ExitNoItems, fmt.Errorf("%s: %w", opts.CSVPath, items.ErrNoItems)
	}

	store, err := state.Open(r.cfg.Paths.StateDir)
	if err != nil {
		return report.ExitFailures, err
	}
	defer store.Close()

	pending, err := r.filterByMode(store, list, opts.Mode)
	if err != nil {
		return report.ExitFailures, err
	}
	r.logger.Info("work list prepared",
		"mode", string(opts.Mode),
		"total", len(list),
		"pending", len(pending),
		"skipped", len(list)-len(pending))
	if len(pending) == 0 {
		r.logger.Info("nothing to do, all items already settled")
		summary := report.Build(store.Snapshot())
		report.Render(opts.Stdout, summary, r.reportPaths(store), opts.Pretty)
		return summary.ExitCode(), nil
	}

	exec, err := r.buildExecutor(opts.DryRun)
	if err != nil {
		return report.ExitFailures, err
	}

	var collector scheduler.Collector
	if !opts.DryRun {
		collector = &stateCollector{store: store, logger: r.logger}
	}

	sched := scheduler.New(exec, collector, r.logger, scheduler.Options{
		Concurrency:  r.cfg.EffectiveWorkers(),
		RetryBudget:  r.cfg.Run.Retries,
		Strategy:     scheduler.Strategy(r.cfg.Run.Strategy),
		OutputDir:    r.cfg.Paths.OutputDir,
		TmpDir:       r.cfg.Paths.TmpDir,
		ShardPrefix:  r.cfg.Run.ShardPrefix,
		ShowProgress: opts.ShowProgress,
	})

	startedAt := time.Now()
	result := sched.Run(ctx, pending)
	finishedAt := time.Now()

	if result.Interrupted {
		r.logger.Warn("run interrupted",
			"remaining", len(result.Remaining),
			"succeeded", len(result.Succeeded),
			"failed", len(result.Failed))
	}

	if opts.DryRun {
		r.logger.Info("dry run complete",
			"items", len(pending),
			"workers", r.cfg.EffectiveWorkers(),
			"strategy", r.cfg.Run.Strategy)
		return report.ExitOK, nil
	}

	if r.cfg.Run.Consolidate && !result.Interrupted {
		r.consolidateShards()
	}

	r.recordHistory(ctx, opts.Mode, len(pending), result, startedAt, finishedAt)

	summary := report.Build(store.Snapshot())
	report.Render(opts.Stdout, summary, r.reportPaths(store), opts.Pretty)

	code := summary.ExitCode()
	if result.Interrupted && len(result.Remaining) > 0 && code == report.ExitOK {
		code = report.ExitFailures
	}
	return code, nil
}

// Consolidate merges result shards outside of a run, for the standalone
// subcommand.
func (r *Runner) Consolidate() (string, error) {
	pattern := scheduler.ShardGlob(r.cfg.Run.ShardPrefix, scheduler.Strategy(r.cfg.Run.Strategy))
	return consolidate.Merge(r.cfg.Paths.OutputDir, pattern, consolidate.DefaultDestName)
}

func (r *Runner) filterByMode(store *state.Store, list []items.Item, mode Mode) ([]items.Item, error) {
	switch mode {
	case ModeClean:
		if err := store.ResetForCleanRun(); err != nil {
			return nil, fmt.Errorf("reset state for clean run: %w", err)
		}
		return list, nil
	case ModeResume:
		return keep(list, func(it items.Item) bool {
			return !store.IsDone(it.Project)
		}), nil
	case ModeResumeSkipFailed:
		return keep(list, func(it items.Item) bool {
			return !store.IsDone(it.Project) && !store.IsFailed(it.Project)
		}), nil
	case ModeFailedOnly:
		failed := keep(list, func(it items.Item) bool {
			return store.IsFailed(it.Project) && !store.IsDone(it.Project)
		})
		sort.Slice(failed, func(i, j int) bool { return failed[i].Project < failed[j].Project })
		return failed, nil
	default:
		return nil, fmt.Errorf("unknown resume mode %q", mode)
	}
}

func (r *Runner) buildExecutor(dryRun bool) (executor.Executor, error) {
	if r.exec != nil {
		return r.exec, nil
	}
	switch r.cfg.Run.Executor {
	case config.ExecutorLitterbox:
		return litterbox.NewClient(
			r.cfg.Litterbox.JarPath,
			r.cfg.Paths.ResultsDir,
			r.cfg.Paths.TmpDir,
			r.cfg.Timeout(),
			litterbox.WithJavaBinary(r.cfg.Litterbox.JavaBin),
			litterbox.WithDryRun(dryRun),
		), nil
	case config.ExecutorMetadata:
		return scratchapi.NewClient(
			r.cfg.MetadataTimeout(),
			scratchapi.WithBaseURL(r.cfg.Metadata.BaseURL),
			scratchapi.WithMaxAttempts(r.cfg.Metadata.MaxAttempts),
			scratchapi.WithBackoffBase(r.cfg.MetadataBackoffBase()),
			scratchapi.WithRateLimit(r.cfg.Metadata.RequestsPerSecond),
			scratchapi.WithDryRun(dryRun),
		), nil
	default:
		return nil, fmt.Errorf("unknown executor %q", r.cfg.Run.Executor)
	}
}

func (r *Runner) consolidateShards() {
	dest, err := r.Consolidate()
	switch {
	case err == nil:
		r.logger.Info("consolidated result shards", "dest", dest)
	case errors.Is(err, consolidate.ErrNoShards):
		r.logger.Warn("no result shards to consolidate")
	default:
		r.logger.Error("consolidate result shards", "error", err)
	}
}

func (r *Runner) recordHistory(ctx context.Context, mode Mode, total int, result scheduler.Result, startedAt, finishedAt time.Time) {
	if !r.cfg.History.Enabled {
		return
	}
	ledger, err := history.Open(r.cfg.Paths.StateDir)
	if err != nil {
		r.logger.Warn("open history ledger", "error", err)
		return
	}
	defer ledger.Close()

	run := history.Run{
		ID:          r.runID,
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		Mode:        string(mode),
		Strategy:    r.cfg.Run.Strategy,
		ItemsTotal:  total,
		DoneCount:   len(result.Succeeded),
		FailedCount: len(result.Failed),
		Interrupted: result.Interrupted,
	}
	// Ledger writes should survive the cancellation that stopped the run.
	if err := ledger.Record(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Warn("record run in history ledger", "error", err)
	}
}

func (r *Runner) reportPaths(store *state.Store) report.Paths {
	return report.Paths{
		Done:          store.DonePath(),
		Failed:        store.FailedPath(),
		LastProcessed: store.LastProcessedPath(),
	}
}

func keep(list []items.Item, pred func(items.Item) bool) []items.Item {
	out := make([]items.Item, 0, len(list))
	for _, it := range list {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// stateCollector appends terminal and per-attempt outcomes to the durable
// state files. It runs on the scheduler goroutine, so writes are already
// serialized.
type stateCollector struct {
	store  *state.Store
	logger *slog.Logger
}

func (c *stateCollector) Collect(outcome executor.Outcome, attempt int) {
	if outcome.Success {
		if err := c.store.MarkDone(outcome.Project); err != nil {
			c.logger.Warn("record done state", "project", outcome.Project, "error", err)
		}
		if err := c.store.MarkLastProcessed(outcome.Project); err != nil {
			c.logger.Warn("record last processed", "project", outcome.Project, "error", err)
		}
		return
	}
	if err := c.store.MarkFailed(outcome.Project); err != nil {
		c.logger.Warn("record failed state", "project", outcome.Project, "error", err)
	}
}
