package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"audiogram/internal/services"
)

// Format names a transcript encoding.
type Format string

const (
	FormatSRT     Format = "srt"
	FormatVTT     Format = "vtt"
	FormatJSON    Format = "json"
	FormatUnknown Format = ""
)

var (
	timingPattern = regexp.MustCompile(`^\s*((?:\d+:)?\d{1,2}:\d{2}[.,]\d{1,3})\s*-->\s*((?:\d+:)?\d{1,2}:\d{2}[.,]\d{1,3})`)
	tagPattern    = regexp.MustCompile(`</?[^>]+>`)
)

// DetectFormat picks a parser from the feed's declared MIME type, falling
// back to sniffing the payload.
func DetectFormat(mimeType string, data []byte) Format {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	switch mimeType {
	case "application/x-subrip", "application/srt", "text/srt", "text/x-srt":
		return FormatSRT
	case "text/vtt":
		return FormatVTT
	case "application/json":
		return FormatJSON
	}
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	switch {
	case bytes.HasPrefix(trimmed, []byte("WEBVTT")):
		return FormatVTT
	case bytes.HasPrefix(trimmed, []byte("{")):
		return FormatJSON
	case timingPattern.Match(firstTimingLine(trimmed)):
		return FormatSRT
	}
	return FormatUnknown
}

func firstTimingLine(data []byte) []byte {
	for _, line := range bytes.SplitN(data, []byte("\n"), 4) {
		if bytes.Contains(line, []byte("-->")) {
			return line
		}
	}
	return nil
}

// Parse decodes a transcript payload. Untimed formats such as plain text or
// HTML are reported as ErrMalformedTranscript.
func Parse(data []byte, mimeType string) ([]Cue, error) {
	switch DetectFormat(mimeType, data) {
	case FormatSRT:
		return ParseSRT(bytes.NewReader(data))
	case FormatVTT:
		return ParseVTT(bytes.NewReader(data))
	case FormatJSON:
		return ParseJSON(data)
	default:
		return nil, services.Wrap(services.ErrMalformedTranscript, "transcript", "parse", fmt.Sprintf("untimed transcript type %q", mimeType), nil)
	}
}

// ParseSRT reads SubRip cues. Multi-line cue text is joined with spaces and
// inline markup tags are removed.
func ParseSRT(r io.Reader) ([]Cue, error) {
	return parseBlocks(r, "srt")
}

// ParseVTT reads WebVTT cues, skipping the header, NOTE, STYLE and REGION
// blocks, and cue settings after the timing line.
func ParseVTT(r io.Reader) ([]Cue, error) {
	return parseBlocks(r, "vtt")
}

func parseBlocks(r io.Reader, kind string) ([]Cue, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		cues    []Cue
		current *Cue
		text    []string
		skip    bool
		lineNo  int
	)
	flush := func() {
		if current != nil && len(text) > 0 {
			current.Text = cleanText(strings.Join(text, " "))
			cues = append(cues, *current)
		}
		current = nil
		text = nil
		skip = false
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if skip {
			continue
		}
		if current == nil {
			if kind == "vtt" && isVTTMetaBlock(trimmed) {
				skip = true
				continue
			}
			m := timingPattern.FindStringSubmatch(trimmed)
			if m == nil {
				// cue index or VTT cue identifier
				continue
			}
			start, err := parseTimestamp(m[1])
			if err != nil {
				return nil, timingError(kind, lineNo, err)
			}
			end, err := parseTimestamp(m[2])
			if err != nil {
				return nil, timingError(kind, lineNo, err)
			}
			current = &Cue{Start: start, End: end}
			continue
		}
		text = append(text, trimmed)
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrMalformedTranscript, "transcript", kind, "read", err)
	}
	flush()
	return cues, nil
}

func isVTTMetaBlock(line string) bool {
	return strings.HasPrefix(line, "WEBVTT") ||
		strings.HasPrefix(line, "NOTE") ||
		strings.HasPrefix(line, "STYLE") ||
		strings.HasPrefix(line, "REGION")
}

func timingError(kind string, line int, err error) error {
	return services.Wrap(services.ErrMalformedTranscript, "transcript", kind, fmt.Sprintf("line %d", line), err)
}

// parseTimestamp accepts HH:MM:SS,mmm, HH:MM:SS.mmm and MM:SS.mmm.
func parseTimestamp(value string) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	var total float64
	for _, part := range parts[:len(parts)-1] {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", value, err)
		}
		total = total*60 + float64(n)
	}
	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return total*60 + secs, nil
}

func cleanText(text string) string {
	return strings.Join(strings.Fields(tagPattern.ReplaceAllString(text, "")), " ")
}

type jsonTranscript struct {
	Version  string        `json:"version"`
	Segments []jsonSegment `json:"segments"`
}

type jsonSegment struct {
	Speaker   string  `json:"speaker"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Body      string  `json:"body"`
}

// ParseJSON reads the Podcasting 2.0 JSON transcript format.
func ParseJSON(data []byte) ([]Cue, error) {
	var doc jsonTranscript
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrMalformedTranscript, "transcript", "json", "decode", err)
	}
	cues := make([]Cue, 0, len(doc.Segments))
	for _, seg := range doc.Segments {
		text := cleanText(seg.Body)
		if text == "" {
			continue
		}
		cues = append(cues, Cue{Start: seg.StartTime, End: seg.EndTime, Text: text})
	}
	return cues, nil
}
