package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bssurvey/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs from the local ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ledger, err := history.Open(cfg.Paths.StateDir)
			if err != nil {
				return fmt.Errorf("open history ledger: %w", err)
			}
			defer ledger.Close()

			runs, err := ledger.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history ledger: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No recorded runs")
				return nil
			}

			headers := []string{"Started", "Duration", "Mode", "Strategy", "Items", "Done", "Failed", "Status"}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				status := "completed"
				if run.Interrupted {
					status = "interrupted"
				}
				rows = append(rows, []string{
					run.StartedAt.Local().Format(time.DateTime),
					run.Duration().Round(time.Second).String(),
					run.Mode,
					run.Strategy,
					strconv.Itoa(run.ItemsTotal),
					strconv.Itoa(run.DoneCount),
					strconv.Itoa(run.FailedCount),
					status,
				})
			}
			aligns := []columnAlignment{
				alignLeft, alignRight, alignLeft, alignLeft,
				alignRight, alignRight, alignRight, alignLeft,
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
