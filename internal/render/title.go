package render

import (
	"fmt"
	"strings"
)

// TitleSource selects which title the footer band shows.
type TitleSource string

const (
	TitleAuto      TitleSource = "auto"
	TitlePodcast   TitleSource = "podcast"
	TitleEpisode   TitleSource = "episode"
	TitleSoundbite TitleSource = "soundbite"
	TitleNone      TitleSource = "none"
)

// ParseTitleSource validates a configured title source. Blank means auto.
func ParseTitleSource(value string) (TitleSource, error) {
	switch src := TitleSource(strings.ToLower(strings.TrimSpace(value))); src {
	case "":
		return TitleAuto, nil
	case TitleAuto, TitlePodcast, TitleEpisode, TitleSoundbite, TitleNone:
		return src, nil
	default:
		return "", fmt.Errorf("unknown header title source %q", value)
	}
}

// Titles carries the candidate titles for one soundbite.
type Titles struct {
	Podcast   string
	Episode   string
	Soundbite string
}

// ResolveTitle applies the title source policy. auto prefers the episode
// title and falls back to the podcast title; soundbite falls back to the
// episode then podcast title when the soundbite is untitled.
func ResolveTitle(src TitleSource, t Titles) string {
	podcast := strings.TrimSpace(t.Podcast)
	episode := strings.TrimSpace(t.Episode)
	soundbite := strings.TrimSpace(t.Soundbite)
	switch src {
	case TitleNone:
		return ""
	case TitlePodcast:
		return podcast
	case TitleEpisode:
		return episode
	case TitleSoundbite:
		if soundbite != "" {
			return soundbite
		}
		if episode != "" {
			return episode
		}
		return podcast
	default:
		if episode != "" {
			return episode
		}
		return podcast
	}
}
