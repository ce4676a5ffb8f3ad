package main

import (
	"github.com/spf13/cobra"

	"audiogram/internal/config"
	"audiogram/internal/workflow"
)

type rootFlags struct {
	config            string
	feedURL           string
	episode           string
	soundbites        string
	outputDir         string
	logLevel          string
	dryRun            bool
	headerTitleSource string
	showSubtitles     bool
	noSubtitles       bool
	useEpisodeCover   bool
	noUseEpisodeCover bool
	concurrency       int
}

func newRootCommand(opts ...workflow.ManagerOption) *cobra.Command {
	flags := &rootFlags{}
	ctx := newCommandContext(&flags.config, opts...)

	rootCmd := &cobra.Command{
		Use:   "audiogram",
		Short: "Render podcast soundbites as shareable audiogram videos",
		Long: `audiogram reads a podcast RSS feed, picks the soundbites declared with
podcast:soundbite (or configured manually), and renders each one as an
animated waveform video in every enabled format, with captions, SRT
subtitles, and an MP3 clip alongside.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.overrides = collectOverrides(cmd, flags)
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, ctx, flags.dryRun)
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&flags.config, "config", "c", "", "Configuration file path (TOML, or YAML for .yml/.yaml)")
	persistent.StringVar(&flags.feedURL, "feed-url", "", "Podcast RSS feed URL (overrides feed.url and "+config.FeedURLEnv+")")
	persistent.StringVar(&flags.outputDir, "output-dir", "", "Directory for rendered videos and sidecar files")
	persistent.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	local := rootCmd.Flags()
	local.StringVarP(&flags.episode, "episode", "e", "", `Episodes to render: a number, a comma list, "all"/"a", or "last"`)
	local.StringVarP(&flags.soundbites, "soundbites", "s", "", `Soundbites to render per episode: a number, a comma list, or "all"/"a"`)
	local.BoolVar(&flags.dryRun, "dry-run", false, "Print soundbite timings and text without rendering")
	local.StringVar(&flags.headerTitleSource, "header-title-source", "", "Header title: auto, podcast, episode, soundbite, none")
	local.BoolVar(&flags.showSubtitles, "show-subtitles", false, "Overlay transcript subtitles")
	local.BoolVar(&flags.noSubtitles, "no-subtitles", false, "Do not overlay transcript subtitles")
	local.BoolVar(&flags.useEpisodeCover, "use-episode-cover", false, "Prefer the episode artwork over the podcast artwork")
	local.BoolVar(&flags.noUseEpisodeCover, "no-use-episode-cover", false, "Always use the podcast artwork")
	local.IntVar(&flags.concurrency, "concurrency", 0, "Soundbites rendered in parallel")
	rootCmd.MarkFlagsMutuallyExclusive("show-subtitles", "no-subtitles")
	rootCmd.MarkFlagsMutuallyExclusive("use-episode-cover", "no-use-episode-cover")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newEpisodesCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))

	return rootCmd
}

// collectOverrides turns the root flags the user actually set into config
// overrides so unset flags never mask file values. Subcommand flags that
// share a name (history list --episode) are not consulted.
func collectOverrides(cmd *cobra.Command, flags *rootFlags) config.Overrides {
	var o config.Overrides
	root := cmd.Root()
	set := func(name string) bool {
		f := root.PersistentFlags().Lookup(name)
		if f == nil {
			f = root.Flags().Lookup(name)
		}
		return f != nil && f.Changed
	}
	if set("feed-url") {
		o.FeedURL = &flags.feedURL
	}
	if set("output-dir") {
		o.OutputDir = &flags.outputDir
	}
	if set("log-level") {
		o.LogLevel = &flags.logLevel
	}
	if set("episode") {
		o.Episodes = &flags.episode
	}
	if set("soundbites") {
		o.Soundbites = &flags.soundbites
	}
	if set("header-title-source") {
		o.HeaderTitleSource = &flags.headerTitleSource
	}
	switch {
	case set("show-subtitles"):
		o.ShowSubtitles = &flags.showSubtitles
	case set("no-subtitles"):
		show := !flags.noSubtitles
		o.ShowSubtitles = &show
	}
	switch {
	case set("use-episode-cover"):
		o.UseEpisodeCover = &flags.useEpisodeCover
	case set("no-use-episode-cover"):
		use := !flags.noUseEpisodeCover
		o.UseEpisodeCover = &use
	}
	if set("concurrency") {
		o.Concurrency = &flags.concurrency
	}
	return o
}
