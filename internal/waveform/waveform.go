// Package waveform turns an audio excerpt into per-frame bar heights for the
// animated visualizer.
package waveform

import (
	"fmt"
	"iter"
	"math"

	"audiogram/internal/media/audio"
	"audiogram/internal/services"
)

// Method selects how a bar's samples are reduced to one magnitude.
type Method string

const (
	Peak Method = "peak"
	RMS  Method = "rms"
)

// Normalization selects the reference level bar heights are scaled against.
type Normalization string

const (
	// Global scales every frame by the loudest bar of the whole excerpt.
	Global Normalization = "global"
	// Rolling scales each frame by the loudest bar within RollingWindow.
	Rolling Normalization = "rolling"
)

// Options configures waveform generation.
type Options struct {
	FPS           float64
	Bars          int
	Method        Method
	Normalization Normalization
	// RollingWindow is the width in seconds of the rolling normalization window.
	RollingWindow float64
	// Mirror makes the bar layout symmetric around the center.
	Mirror bool
}

// Frame is the bar layout for one video tick. Heights are in [0, 1] and must
// be treated as read-only.
type Frame struct {
	Index   int
	Time    float64
	Heights []float64
}

// Waveform is a precomputed frames x bars magnitude matrix.
type Waveform struct {
	fps    float64
	frames int
	bars   int
	data   []float64
}

// FrameCount returns round(duration * fps), never less than one frame.
func FrameCount(duration, fps float64) int {
	n := int(math.Round(duration * fps))
	if n < 1 {
		return 1
	}
	return n
}

// New computes bar heights for track. The track is split into FrameCount
// equal windows and each window into one sub-slice per distinct bar.
func New(track *audio.Track, opts Options) (*Waveform, error) {
	if err := track.Validate(); err != nil {
		return nil, err
	}
	if opts.FPS <= 0 {
		return nil, services.Wrap(services.ErrValidation, "waveform", "options", fmt.Sprintf("fps must be positive (got %v)", opts.FPS), nil)
	}
	if opts.Bars <= 0 {
		return nil, services.Wrap(services.ErrValidation, "waveform", "options", fmt.Sprintf("bars must be positive (got %d)", opts.Bars), nil)
	}

	n := FrameCount(track.Duration(), opts.FPS)
	distinct := opts.Bars
	if opts.Mirror {
		distinct = (opts.Bars + 1) / 2
	}

	w := &Waveform{fps: opts.FPS, frames: n, bars: opts.Bars, data: make([]float64, n*opts.Bars)}
	values := make([]float64, distinct)
	total := track.Frames()
	for i := range n {
		lo := i * total / n
		hi := (i + 1) * total / n
		for b := range distinct {
			values[b] = 0
			if hi <= lo {
				continue
			}
			sub0 := lo + b*(hi-lo)/distinct
			sub1 := lo + (b+1)*(hi-lo)/distinct
			if sub1 <= sub0 {
				sub1 = min(sub0+1, hi)
			}
			values[b] = magnitude(track, sub0, sub1, opts.Method)
		}
		row := w.data[i*opts.Bars : (i+1)*opts.Bars]
		if opts.Mirror {
			for b, v := range values {
				row[b] = v
				row[opts.Bars-1-b] = v
			}
		} else {
			copy(row, values)
		}
	}

	switch opts.Normalization {
	case Rolling:
		window := int(math.Round(opts.RollingWindow * opts.FPS))
		w.normalizeRolling(max(window, 1))
	default:
		w.normalizeGlobal()
	}
	return w, nil
}

func magnitude(track *audio.Track, from, to int, method Method) float64 {
	samples := track.Samples[from*track.Channels : to*track.Channels]
	if len(samples) == 0 {
		return 0
	}
	if method == RMS {
		var sum float64
		for _, s := range samples {
			sum += float64(s) * float64(s)
		}
		return math.Sqrt(sum / float64(len(samples)))
	}
	var peak float64
	for _, s := range samples {
		peak = max(peak, math.Abs(float64(s)))
	}
	return peak
}

func (w *Waveform) normalizeGlobal() {
	var ref float64
	for _, v := range w.data {
		ref = max(ref, v)
	}
	if ref == 0 {
		return
	}
	for i := range w.data {
		w.data[i] /= ref
	}
}

// normalizeRolling scales each frame by the maximum over the frames within
// window/2 on either side.
func (w *Waveform) normalizeRolling(window int) {
	frameMax := make([]float64, w.frames)
	for i := range w.frames {
		for _, v := range w.row(i) {
			frameMax[i] = max(frameMax[i], v)
		}
	}
	half := window / 2
	ref := make([]float64, w.frames)
	// monotonic deque of frame indices with decreasing frameMax
	deque := make([]int, 0, window+1)
	next := 0
	for i := range w.frames {
		for ; next < w.frames && next <= i+half; next++ {
			for len(deque) > 0 && frameMax[deque[len(deque)-1]] <= frameMax[next] {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, next)
		}
		for deque[0] < i-half {
			deque = deque[1:]
		}
		ref[i] = frameMax[deque[0]]
	}
	for i := range w.frames {
		if ref[i] == 0 {
			continue
		}
		row := w.row(i)
		for b := range row {
			row[b] /= ref[i]
		}
	}
}

func (w *Waveform) row(i int) []float64 {
	return w.data[i*w.bars : (i+1)*w.bars]
}

// Len returns the number of frames.
func (w *Waveform) Len() int { return w.frames }

// Bars returns the number of bars per frame.
func (w *Waveform) Bars() int { return w.bars }

// FPS returns the frame rate the waveform was sampled at.
func (w *Waveform) FPS() float64 { return w.fps }

// At returns the heights for frame i, clamped to the valid range.
func (w *Waveform) At(i int) []float64 {
	i = min(max(i, 0), w.frames-1)
	return w.row(i)
}

// Frames iterates every frame in order. The sequence is restartable.
func (w *Waveform) Frames() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for i := range w.frames {
			if !yield(Frame{Index: i, Time: float64(i) / w.fps, Heights: w.row(i)}) {
				return
			}
		}
	}
}
