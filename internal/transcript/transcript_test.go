package transcript

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"audiogram/internal/services"
	"audiogram/internal/timerange"
)

func mustTranscript(t *testing.T, cues ...Cue) *Transcript {
	t.Helper()
	tr, err := New(cues)
	require.NoError(t, err)
	return tr
}

func TestAlignClipsAndDropsCues(t *testing.T) {
	tr := mustTranscript(t,
		Cue{Start: 5, End: 15, Text: "A"},
		Cue{Start: 20, End: 35, Text: "B"},
		Cue{Start: 50, End: 60, Text: "C"},
	)
	got := slices.Collect(Align(tr, timerange.Range{Start: 10, End: 40}, "title"))
	assert.Equal(t, []AlignedCue{
		{Start: 0, End: 5, Text: "A"},
		{Start: 10, End: 25, Text: "B"},
	}, got)
}

func TestAlignFallsBackWhenNothingIntersects(t *testing.T) {
	tr := mustTranscript(t, Cue{Start: 50, End: 60, Text: "C"}, Cue{Start: 60, End: 70, Text: "D"})
	r := timerange.Range{Start: 10, End: 40}
	for _, source := range []*Transcript{nil, mustTranscript(t), tr} {
		got := slices.Collect(Align(source, r, "Soundbite title"))
		assert.Equal(t, []AlignedCue{{Start: 0, End: 30, Text: "Soundbite title"}}, got)
	}
}

func TestAlignIsRestartable(t *testing.T) {
	tr := mustTranscript(t,
		Cue{Start: 0, End: 2, Text: "one"},
		Cue{Start: 2, End: 4, Text: "two"},
	)
	seq := Align(tr, timerange.Range{Start: 1, End: 3}, "x")
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
	assert.Equal(t, "one two", FullText(seq))
}

func TestAlignTouchingBoundaryIsExcluded(t *testing.T) {
	tr := mustTranscript(t, Cue{Start: 0, End: 10, Text: "before"}, Cue{Start: 10, End: 12, Text: "inside"})
	got := slices.Collect(Align(tr, timerange.Range{Start: 10, End: 20}, "x"))
	assert.Equal(t, []AlignedCue{{Start: 0, End: 2, Text: "inside"}}, got)
}

func TestNewRejectsMalformedCues(t *testing.T) {
	cases := map[string][]Cue{
		"overlap":      {{Start: 0, End: 5}, {Start: 4, End: 6}},
		"out of order": {{Start: 5, End: 6}, {Start: 1, End: 2}},
		"inverted":     {{Start: 5, End: 4}},
	}
	for name, cues := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(cues)
			assert.ErrorIs(t, err, services.ErrMalformedTranscript)
		})
	}
}

const sampleSRT = `1
00:00:05,000 --> 00:00:15,000
Hello <i>there</i>,
world.

2
00:00:20,500 --> 00:00:35,000
Second cue
`

func TestParseSRT(t *testing.T) {
	cues, err := Parse([]byte(sampleSRT), "application/x-subrip")
	require.NoError(t, err)
	assert.Equal(t, []Cue{
		{Start: 5, End: 15, Text: "Hello there, world."},
		{Start: 20.5, End: 35, Text: "Second cue"},
	}, cues)
}

func TestParseVTT(t *testing.T) {
	data := "WEBVTT\n\nNOTE generated\nby a tool\n\nintro\n00:01.000 --> 00:03.250 align:start\n<v Host>Welcome back\n\n00:00:04.000 --> 00:00:06.000\nNext\n"
	assert.Equal(t, FormatVTT, DetectFormat("", []byte(data)))
	cues, err := Parse([]byte(data), "text/vtt")
	require.NoError(t, err)
	assert.Equal(t, []Cue{
		{Start: 1, End: 3.25, Text: "Welcome back"},
		{Start: 4, End: 6, Text: "Next"},
	}, cues)
}

func TestParseJSON(t *testing.T) {
	data := `{"version":"1.0.0","segments":[{"speaker":"A","startTime":0.5,"endTime":1.5,"body":"Hi"},{"startTime":1.5,"endTime":2,"body":"  "}]}`
	cues, err := Parse([]byte(data), "")
	require.NoError(t, err)
	assert.Equal(t, []Cue{{Start: 0.5, End: 1.5, Text: "Hi"}}, cues)
}

func TestParseUntimedTranscript(t *testing.T) {
	_, err := Parse([]byte("just some words"), "text/plain")
	assert.ErrorIs(t, err, services.ErrMalformedTranscript)
}

func TestDetectFormatSniffsSRT(t *testing.T) {
	assert.Equal(t, FormatSRT, DetectFormat("", []byte(sampleSRT)))
	assert.Equal(t, FormatSRT, DetectFormat("application/srt; charset=utf-8", nil))
}

func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:        "00:00:00,000",
		1.5:      "00:00:01,500",
		59.9996:  "00:01:00,000",
		3661.042: "01:01:01,042",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatTimestamp(in), "input %v", in)
	}
}

func TestWriteSRT(t *testing.T) {
	var buf bytes.Buffer
	cues := slices.Values([]AlignedCue{{Start: 0, End: 1.25, Text: " one "}, {Start: 1.25, End: 2, Text: "two"}})
	require.NoError(t, WriteSRT(&buf, cues))
	want := "1\n00:00:00,000 --> 00:00:01,250\none\n\n2\n00:00:01,250 --> 00:00:02,000\ntwo\n\n"
	assert.Equal(t, want, buf.String())

	parsed, err := ParseSRT(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Len(t, parsed, 2)
}

func TestStripPunctuation(t *testing.T) {
	assert.Equal(t, "Hello world it s great", StripPunctuation("Hello, world! it's great…"))
	assert.Equal(t, "", StripPunctuation(" ... "))
}

func TestDetectLanguage(t *testing.T) {
	tr := mustTranscript(t,
		Cue{Start: 0, End: 5, Text: "Welcome back to the show. Today we are talking about how small teams ship software."},
		Cue{Start: 5, End: 9, Text: "Our guest has been building developer tools for the last ten years and has a lot of stories to share with the audience."},
	)
	assert.Equal(t, "en", DetectLanguage(tr).String())
	assert.Equal(t, language.Und, DetectLanguage(nil))
}
