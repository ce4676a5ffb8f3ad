package feed

import (
	"strconv"
	"strings"

	"audiogram/internal/config"
	"audiogram/internal/podcast"
)

// Manual holds configured soundbites keyed by episode GUID or by episode
// number in decimal.
type Manual map[string][]podcast.Soundbite

// ManualFromConfig converts the manual_soundbites configuration section.
func ManualFromConfig(entries map[string][]config.ManualSoundbite) Manual {
	if len(entries) == 0 {
		return nil
	}
	out := make(Manual, len(entries))
	for key, list := range entries {
		key = strings.TrimSpace(key)
		for _, entry := range list {
			sb := podcast.Soundbite{
				Start:  entry.Start,
				Title:  strings.TrimSpace(entry.Title),
				Manual: true,
			}
			if entry.Duration != nil {
				sb.Duration = podcast.Seconds(*entry.Duration)
			}
			if entry.End != nil {
				sb.End = podcast.Seconds(*entry.End)
			}
			if sb.Title == "" {
				sb.Title = podcast.DefaultSoundbiteTitle
			}
			out[key] = append(out[key], sb)
		}
	}
	return out
}

// For returns copies of the soundbites configured for an episode. A GUID
// match wins over a number match.
func (m Manual) For(guid string, number int) []podcast.Soundbite {
	if len(m) == 0 {
		return nil
	}
	list, ok := m[strings.TrimSpace(guid)]
	if !ok || guid == "" {
		list = m[strconv.Itoa(number)]
	}
	if len(list) == 0 {
		return nil
	}
	out := make([]podcast.Soundbite, len(list))
	copy(out, list)
	return out
}
