package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bssurvey/internal/logging"
	"bssurvey/internal/report"
	"bssurvey/internal/runner"
	"bssurvey/internal/state"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		resumeFlag      string
		dryRun          bool
		workers         int
		retries         int
		strategyFlag    string
		executorFlag    string
		consolidateFlag bool
		timeoutSeconds  int
		noProgress      bool
	)

	cmd := &cobra.Command{
		Use:   "run <projects.csv>",
		Short: "Process every project in the CSV work list",
		Long: `Run drives the configured executor over every project listed in the
CSV file, bounded by the worker pool and retry budget. Durable state files
make interrupted runs resumable; see --resume for the available modes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// Flag overrides sit on top of the config file values.
			if cmd.Flags().Changed("workers") {
				cfg.Run.Workers = workers
			}
			if cmd.Flags().Changed("retries") {
				cfg.Run.Retries = retries
			}
			if cmd.Flags().Changed("strategy") {
				cfg.Run.Strategy = strategyFlag
			}
			if cmd.Flags().Changed("executor") {
				cfg.Run.Executor = executorFlag
			}
			if cmd.Flags().Changed("consolidate") {
				cfg.Run.Consolidate = consolidateFlag
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Litterbox.TimeoutSeconds = timeoutSeconds
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			mode, err := runner.ParseMode(resumeFlag)
			if err != nil {
				return err
			}

			runID := fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
			logger, logPath, err := logging.NewFromConfig(cfg, runID)
			if err != nil {
				return err
			}
			if logPath != "" {
				logger.Info("run starting", "log_file", logPath, "csv", args[0])
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			code, err := runner.New(cfg, logger, runID).Run(runCtx, runner.Options{
				CSVPath:      args[0],
				Mode:         mode,
				DryRun:       dryRun,
				ShowProgress: !noProgress && stdoutIsTerminal(),
				Pretty:       stdoutIsTerminal(),
				Stdout:       cmd.OutOrStdout(),
			})
			if err != nil {
				if errors.Is(err, state.ErrLocked) {
					return fmt.Errorf("%w; is another bssurvey run using %s?", err, cfg.Paths.StateDir)
				}
				if code == report.ExitOK {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			if code != report.ExitOK {
				return exitStatusError{code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&resumeFlag, "resume", "resume", "Resume mode: clean, resume, resume-skip-failed, or failed-only")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the run without invoking the executor or touching state")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (overrides config)")
	cmd.Flags().IntVar(&retries, "retries", 0, "Retry budget per item (overrides config)")
	cmd.Flags().StringVar(&strategyFlag, "strategy", "", "Shard strategy: per-item or per-worker (overrides config)")
	cmd.Flags().StringVar(&executorFlag, "executor", "", "Executor: litterbox or metadata (overrides config)")
	cmd.Flags().BoolVar(&consolidateFlag, "consolidate", false, "Merge result shards after the run (overrides config)")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Per-item timeout in seconds (overrides config)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the terminal progress bar")

	return cmd
}
