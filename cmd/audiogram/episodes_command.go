package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List feed episodes with their soundbites",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			f, err := ctx.manager(cfg, logger).LoadFeed(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(f.Episodes) == 0 {
				fmt.Fprintln(out, "Feed has no episodes")
				return nil
			}

			spec := tableSpec{
				Title:   f.Podcast.Title,
				Headers: []string{"#", "Title", "Duration", "Soundbites", "Transcript", "Audio"},
				Aligns:  []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			}
			shown := 0
			for _, ep := range slices.Backward(f.Episodes) {
				if limit > 0 && shown >= limit {
					break
				}
				shown++
				duration := "-"
				if ep.Duration > 0 {
					duration = formatClock(ep.Duration)
				}
				spec.Rows = append(spec.Rows, []string{
					fmt.Sprint(ep.Number),
					truncate(ep.Title, 60),
					duration,
					fmt.Sprint(len(ep.Soundbites)),
					yesNo(ep.HasTranscript()),
					yesNo(ep.AudioURL != ""),
				})
			}
			fmt.Fprintln(out, renderTable(spec))
			if shown < len(f.Episodes) {
				fmt.Fprintf(out, "Showing %d of %d episodes (newest first)\n", shown, len(f.Episodes))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum episodes to list (0 for all)")
	return cmd
}

// formatClock renders seconds as H:MM:SS.
func formatClock(seconds float64) string {
	total := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
}
