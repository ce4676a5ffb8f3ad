package config

// Overrides are per-run values from the command line. Nil fields keep the
// configured value.
type Overrides struct {
	FeedURL           *string
	Episodes          *string
	Soundbites        *string
	OutputDir         *string
	LogLevel          *string
	HeaderTitleSource *string
	ShowSubtitles     *bool
	UseEpisodeCover   *bool
	// Concurrency bounds parallel soundbites.
	Concurrency *int
}

// Apply overlays o onto c, then normalizes and validates the result again.
func (c *Config) Apply(o Overrides) error {
	setString(&c.Feed.URL, o.FeedURL)
	setString(&c.Selection.Episodes, o.Episodes)
	setString(&c.Selection.Soundbites, o.Soundbites)
	setString(&c.Paths.OutputDir, o.OutputDir)
	setString(&c.Logging.Level, o.LogLevel)
	setString(&c.Render.HeaderTitleSource, o.HeaderTitleSource)
	if o.ShowSubtitles != nil {
		c.Render.ShowSubtitles = *o.ShowSubtitles
	}
	if o.UseEpisodeCover != nil {
		c.Render.UseEpisodeCover = *o.UseEpisodeCover
	}
	if o.Concurrency != nil {
		c.Concurrency.Soundbites = *o.Concurrency
	}
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}
