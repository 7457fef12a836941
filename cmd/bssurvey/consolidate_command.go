package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bssurvey/internal/consolidate"
	"bssurvey/internal/runner"
)

func newConsolidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "consolidate",
		Short: "Merge result shards into a single CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			dest, err := runner.New(cfg, nil, "").Consolidate()
			if errors.Is(err, consolidate.ErrNoShards) {
				fmt.Fprintf(cmd.OutOrStdout(), "No result shards found in %s\n", cfg.Paths.OutputDir)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Consolidated results written to %s\n", dest)
			return nil
		},
	}
}
