// Package podcast holds the feed-derived entities the rendering pipeline
// consumes. Values are populated once by the feed reader and treated as
// read-only afterwards.
package podcast

import "strings"

// DefaultSoundbiteTitle replaces blank soundbite titles.
const DefaultSoundbiteTitle = "No description"

// Podcast is the channel-level metadata of a feed.
type Podcast struct {
	Title    string
	Link     string
	ImageURL string
	Keywords []string
}

// Episode is a single feed item. Number counts from the oldest episode (1).
type Episode struct {
	Number         int
	GUID           string
	Title          string
	Link           string
	Description    string
	Duration       float64 // seconds, 0 when the feed does not declare one
	AudioURL       string
	TranscriptURL  string
	TranscriptType string
	ImageURL       string
	Keywords       []string
	Soundbites     []Soundbite
}

// Soundbite is an excerpt declared by the feed or configured manually.
// Exactly one of End or Duration is expected; Start may be NaN when the
// declaration could not be parsed.
type Soundbite struct {
	Number   int
	Start    float64
	End      *float64
	Duration *float64
	Title    string
	Manual   bool
}

// DisplayTitle returns the soundbite title or the placeholder when blank.
func (s Soundbite) DisplayTitle() string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	return DefaultSoundbiteTitle
}

// HasTranscript reports whether the feed linked a transcript for the episode.
func (e Episode) HasTranscript() bool {
	return strings.TrimSpace(e.TranscriptURL) != ""
}

// Seconds returns a pointer to v for optional time fields.
func Seconds(v float64) *float64 {
	return &v
}
