package render

import (
	"strings"

	"golang.org/x/image/font"
)

const ellipsis = "…"

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// lineHeight is ascent plus descent, constant for a face regardless of the
// glyphs in a given line.
func lineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

// wrapText greedily packs words into lines no wider than maxWidth. A single
// word wider than maxWidth gets a line of its own. When more than maxLines
// lines are needed, the result is truncated and the last line ellipsized.
func wrapText(face font.Face, text string, maxWidth, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || maxLines <= 0 {
		return nil
	}
	var lines []string
	current := ""
	truncated := false
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current == "" || textWidth(face, candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
		if len(lines) == maxLines {
			truncated = true
			current = ""
			break
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if truncated {
		lines[len(lines)-1] = strings.TrimRight(lines[len(lines)-1], " ") + " " + ellipsis
	}
	lines[len(lines)-1] = ellipsize(face, lines[len(lines)-1], maxWidth)
	return lines
}

// ellipsize shortens line rune by rune until it fits maxWidth.
func ellipsize(face font.Face, line string, maxWidth int) string {
	if textWidth(face, line) <= maxWidth {
		return line
	}
	runes := []rune(strings.TrimSuffix(line, ellipsis))
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + ellipsis
		if textWidth(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}
