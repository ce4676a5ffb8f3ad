package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audiogram/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var skipFeed bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, FFmpeg, encoders, and the feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{SkipFeed: skipFeed})

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if cfg.Feed.URL == "" && !skipFeed {
				fmt.Fprintln(out, renderStatusLine("Feed", statusSkip, "no feed URL configured", colorize))
			}

			if failures := preflight.Failures(results); len(failures) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failures), len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipFeed, "skip-feed", false, "Do not fetch the feed")
	return cmd
}
