package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audiogram/internal/history"
	"audiogram/internal/logging"
	"audiogram/internal/workflow"
)

func runRender(cmd *cobra.Command, ctx *commandContext, dryRun bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cfg)
	if err != nil {
		return err
	}

	var opts []workflow.ManagerOption
	if !dryRun {
		store, err := history.Open(cfg.Paths.HistoryPath)
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.String("path", cfg.Paths.HistoryPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run is not recorded in 'audiogram history'"),
			)
		} else {
			defer store.Close()
			opts = append(opts, workflow.WithHistory(store))
		}
	}

	manager := ctx.manager(cfg, logger, opts...)
	summary, runErr := manager.Run(cmd.Context(), workflow.RunOptions{DryRun: dryRun})

	out := cmd.OutOrStdout()
	if summary != nil && len(summary.Episodes) > 0 {
		printSummary(out, summary, shouldColorize(out))
	}
	if runErr != nil {
		return runErr
	}
	if summary.Failed() {
		counts := summary.Counts()
		return fmt.Errorf("%d of %d soundbites failed or were skipped (%d of %d renders failed)",
			counts.SoundbitesFailed+counts.SoundbitesSkipped, counts.Soundbites,
			counts.RendersFailed, counts.Renders)
	}
	return nil
}
