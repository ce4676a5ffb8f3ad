package output

import (
	"fmt"

	"audiogram/internal/textutil"
)

// VideoName returns ep{episode}_sb{soundbite}[_nosubs]_{format}.mp4. The
// _nosubs marker is present exactly when subtitles are off for the render.
func VideoName(episode, soundbite int, format string, showSubtitles bool) string {
	suffix := ""
	if !showSubtitles {
		suffix = "_nosubs"
	}
	return fmt.Sprintf("ep%d_sb%d%s_%s.mp4", episode, soundbite, suffix, textutil.SanitizeToken(format))
}

// CaptionName returns the caption text file name for a soundbite.
func CaptionName(episode, soundbite int) string {
	return fmt.Sprintf("ep%d_sb%d_caption.txt", episode, soundbite)
}

// SRTName returns the subtitle file name for a soundbite.
func SRTName(episode, soundbite int) string {
	return fmt.Sprintf("ep%d_sb%d.srt", episode, soundbite)
}

// AudioName returns the exported MP3 file name for a soundbite.
func AudioName(episode, soundbite int) string {
	return fmt.Sprintf("ep%d_sb%d.mp3", episode, soundbite)
}
