package transcript

import (
	"fmt"
	"iter"
	"strings"

	"audiogram/internal/services"
	"audiogram/internal/timerange"
)

// Cue is a caption interval on the episode timeline, in seconds.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// Transcript is an ordered, non-overlapping cue list.
type Transcript struct {
	cues []Cue
}

// New validates cues. Cues must be sorted by start, have End >= Start, and
// must not overlap; touching boundaries are allowed.
func New(cues []Cue) (*Transcript, error) {
	out := make([]Cue, 0, len(cues))
	for i, cue := range cues {
		if cue.End < cue.Start {
			return nil, malformed(fmt.Sprintf("cue %d ends at %.3fs before it starts at %.3fs", i+1, cue.End, cue.Start))
		}
		if i > 0 {
			prev := cues[i-1]
			if cue.Start < prev.Start {
				return nil, malformed(fmt.Sprintf("cue %d starts at %.3fs before cue %d at %.3fs", i+1, cue.Start, i, prev.Start))
			}
			if cue.Start < prev.End {
				return nil, malformed(fmt.Sprintf("cue %d overlaps cue %d (%.3fs < %.3fs)", i+1, i, cue.Start, prev.End))
			}
		}
		cue.Text = strings.TrimSpace(cue.Text)
		out = append(out, cue)
	}
	return &Transcript{cues: out}, nil
}

func malformed(message string) error {
	return services.Wrap(services.ErrMalformedTranscript, "transcript", "validate", message, nil)
}

// Len returns the number of cues.
func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.cues)
}

// Cues iterates the transcript in order.
func (t *Transcript) Cues() iter.Seq[Cue] {
	return func(yield func(Cue) bool) {
		if t == nil {
			return
		}
		for _, cue := range t.cues {
			if !yield(cue) {
				return
			}
		}
	}
}

// AlignedCue is a cue on a soundbite's local [0, duration) axis.
type AlignedCue struct {
	Start float64
	End   float64
	Text  string
}

// Contains reports whether local time ts falls inside the cue.
func (c AlignedCue) Contains(ts float64) bool {
	return ts >= c.Start && ts < c.End
}

// Align clips the transcript to r and shifts it to local time. The returned
// sequence is restartable. When t is nil or no cue intersects r, a single cue
// spanning the whole window carries fallback.
func Align(t *Transcript, r timerange.Range, fallback string) iter.Seq[AlignedCue] {
	return func(yield func(AlignedCue) bool) {
		emitted := false
		if t != nil {
			for _, cue := range t.cues {
				if cue.Start >= r.End {
					break
				}
				start := max(cue.Start, r.Start)
				end := min(cue.End, r.End)
				if end <= start {
					continue
				}
				emitted = true
				if !yield(AlignedCue{Start: start - r.Start, End: end - r.Start, Text: cue.Text}) {
					return
				}
			}
		}
		if !emitted {
			yield(AlignedCue{Start: 0, End: r.Duration(), Text: fallback})
		}
	}
}

// FullText joins the cue texts with single spaces.
func FullText(cues iter.Seq[AlignedCue]) string {
	var parts []string
	for cue := range cues {
		if text := strings.TrimSpace(cue.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
