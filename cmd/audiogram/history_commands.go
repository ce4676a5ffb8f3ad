package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"audiogram/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the render history",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.Paths.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var (
		runID   string
		episode int
		failed  bool
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded renders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			filter := history.Filter{RunID: runID, Episode: episode, Limit: limit}
			if failed {
				filter.Statuses = []history.Status{history.StatusFailed, history.StatusSkipped}
			}
			records, err := store.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No renders recorded")
				return nil
			}
			spec := tableSpec{
				Headers: []string{"When", "Run", "Ep", "SB", "Format", "Status", "Range", "Output"},
				Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			}
			for _, rec := range records {
				detail := filepath.Base(rec.Path)
				if rec.Path == "" || rec.Error != "" {
					detail = truncate(rec.Error, 60)
				}
				format := rec.Format
				if format == "" {
					format = "-"
				}
				spec.Rows = append(spec.Rows, []string{
					rec.CreatedAt.Local().Format("2006-01-02 15:04"),
					shortRunID(rec.RunID),
					fmt.Sprint(rec.Episode),
					fmt.Sprint(rec.Soundbite),
					format,
					string(rec.Status),
					fmt.Sprintf("%.1f-%.1f", rec.Start, rec.End),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(spec))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Only show renders from this run ID")
	cmd.Flags().IntVar(&episode, "episode", 0, "Only show renders of this episode number")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only show failed or skipped renders")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum rows (0 for all)")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded render",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history records\n", removed)
			return nil
		},
	}
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
