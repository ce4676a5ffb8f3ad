package output

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultHashtag is used when no keyword source yields a tag.
const DefaultHashtag = "podcast"

// CaptionData is the social post text for one soundbite.
type CaptionData struct {
	EpisodeNumber  int
	EpisodeTitle   string
	EpisodeLink    string
	SoundbiteTitle string
	Transcript     string
	Hashtags       []string
}

// Labels are the configurable fixed strings of a caption.
type Labels struct {
	EpisodePrefix    string
	ListenFullPrefix string
}

// DefaultLabels returns the English caption labels.
func DefaultLabels() Labels {
	return Labels{EpisodePrefix: "Episode", ListenFullPrefix: "Listen to the full episode"}
}

// NormalizeHashtags merges keyword sources into hashtags without the leading
// '#'. Each tag is trimmed, stripped of one leading '#' and all whitespace,
// and lower-cased. Duplicates keep their first position.
func NormalizeHashtags(sources ...[]string) []string {
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{})
	var out []string
	for _, source := range sources {
		for _, raw := range source {
			tag := strings.TrimSpace(raw)
			tag = strings.TrimPrefix(tag, "#")
			tag = strings.Map(func(r rune) rune {
				if unicode.IsSpace(r) {
					return -1
				}
				return r
			}, tag)
			tag = lower.String(tag)
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// Text renders the caption:
//
//	{prefix} {n}: {episode title}
//
//	{soundbite title}
//
//	{transcript}
//
//	{listen prefix}: {link}
//
//	{hashtags}
func (c CaptionData) Text(labels Labels) string {
	defaults := DefaultLabels()
	if strings.TrimSpace(labels.EpisodePrefix) == "" {
		labels.EpisodePrefix = defaults.EpisodePrefix
	}
	if strings.TrimSpace(labels.ListenFullPrefix) == "" {
		labels.ListenFullPrefix = defaults.ListenFullPrefix
	}
	tags := "#" + DefaultHashtag
	if len(c.Hashtags) > 0 {
		tags = "#" + strings.Join(c.Hashtags, " #")
	}
	return fmt.Sprintf("%s %d: %s\n\n%s\n\n%s\n\n%s: %s\n\n%s\n",
		labels.EpisodePrefix, c.EpisodeNumber, c.EpisodeTitle,
		c.SoundbiteTitle,
		c.Transcript,
		labels.ListenFullPrefix, c.EpisodeLink,
		tags,
	)
}
