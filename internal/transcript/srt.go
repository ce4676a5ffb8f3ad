package transcript

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"math"
	"strings"
)

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm).
// Rounding to the millisecond carries into the seconds field.
func FormatTimestamp(seconds float64) string {
	ms := int64(math.Round(math.Abs(seconds) * 1000))
	hours := ms / 3_600_000
	ms -= hours * 3_600_000
	minutes := ms / 60_000
	ms -= minutes * 60_000
	secs := ms / 1000
	ms -= secs * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, ms)
}

// WriteSRT writes cues as a SubRip document numbered from 1.
func WriteSRT(w io.Writer, cues iter.Seq[AlignedCue]) error {
	bw := bufio.NewWriter(w)
	index := 0
	for cue := range cues {
		index++
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", index, FormatTimestamp(cue.Start), FormatTimestamp(cue.End), strings.TrimSpace(cue.Text)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
