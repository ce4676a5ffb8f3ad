package workflow

import (
	"time"

	"audiogram/internal/pipeline"
	"audiogram/internal/podcast"
)

// RunOptions select what a run renders. Empty selectors fall back to the
// configured selection.
type RunOptions struct {
	Episodes   string
	Soundbites string
	DryRun     bool
}

// Summary is the outcome of a run.
type Summary struct {
	RunID    string
	FeedURL  string
	Podcast  podcast.Podcast
	DryRun   bool
	Episodes []pipeline.EpisodeResult
	Started  time.Time
	Elapsed  time.Duration
}

// Counts tallies soundbites and renders across a run.
type Counts struct {
	Episodes          int
	EpisodesFailed    int
	Soundbites        int
	SoundbitesOK      int
	SoundbitesFailed  int
	SoundbitesSkipped int
	Renders           int
	RendersOK         int
	RendersFailed     int
}

// Counts tallies the summary.
func (s *Summary) Counts() Counts {
	var c Counts
	for _, ep := range s.Episodes {
		c.Episodes++
		if ep.Err != nil {
			c.EpisodesFailed++
		}
		for _, sb := range ep.Soundbites {
			c.Soundbites++
			switch sb.Status {
			case pipeline.StatusSucceeded:
				c.SoundbitesOK++
			case pipeline.StatusSkipped:
				c.SoundbitesSkipped++
			default:
				c.SoundbitesFailed++
			}
			for _, r := range sb.Renders {
				c.Renders++
				if r.Status == pipeline.StatusSucceeded {
					c.RendersOK++
				} else {
					c.RendersFailed++
				}
			}
		}
	}
	return c
}

// Failed reports whether anything in the run did not succeed.
func (s *Summary) Failed() bool {
	for _, ep := range s.Episodes {
		if ep.Failed() {
			return true
		}
	}
	return false
}
