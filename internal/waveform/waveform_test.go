package waveform

import (
	"math"
	"slices"
	"testing"

	"audiogram/internal/media/audio"
)

func silentTrack(seconds float64, rate, channels int) *audio.Track {
	return &audio.Track{
		Samples:    make([]float32, int(seconds*float64(rate))*channels),
		SampleRate: rate,
		Channels:   channels,
	}
}

func TestSilentAudioYieldsZeroFrames(t *testing.T) {
	track := silentTrack(2.5, 8000, 2)
	w, err := New(track, Options{FPS: 24, Bars: 10, Method: Peak, Normalization: Global})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.Len() != 60 {
		t.Fatalf("expected round(2.5*24)=60 frames, got %d", w.Len())
	}
	count := 0
	for frame := range w.Frames() {
		count++
		if len(frame.Heights) != 10 {
			t.Fatalf("frame %d has %d bars", frame.Index, len(frame.Heights))
		}
		for _, h := range frame.Heights {
			if h != 0 {
				t.Fatalf("frame %d has non-zero height %v", frame.Index, h)
			}
		}
	}
	if count != 60 {
		t.Fatalf("iterated %d frames", count)
	}
}

func TestGlobalNormalizationPeaksAtOne(t *testing.T) {
	rate := 1000
	track := &audio.Track{Samples: make([]float32, rate), SampleRate: rate, Channels: 1}
	for i := range track.Samples {
		track.Samples[i] = float32(0.25 * math.Sin(float64(i)))
	}
	track.Samples[rate/2] = -0.5

	w, err := New(track, Options{FPS: 10, Bars: 4, Method: Peak, Normalization: Global})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var top float64
	for frame := range w.Frames() {
		for _, h := range frame.Heights {
			if h < 0 || h > 1 {
				t.Fatalf("height %v out of range", h)
			}
			top = max(top, h)
		}
	}
	if top != 1 {
		t.Fatalf("expected global max normalized to 1, got %v", top)
	}
	if w.At(4)[2] > 0.51 || w.At(5)[0] != 1 {
		t.Fatalf("unexpected peak placement: frame4=%v frame5=%v", w.At(4), w.At(5))
	}
}

func TestMirrorIsSymmetric(t *testing.T) {
	rate := 4800
	track := &audio.Track{Samples: make([]float32, rate), SampleRate: rate, Channels: 1}
	for i := range track.Samples {
		track.Samples[i] = float32(i%97) / 97
	}
	for _, bars := range []int{6, 7} {
		w, err := New(track, Options{FPS: 24, Bars: bars, Method: RMS, Mirror: true})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for frame := range w.Frames() {
			h := frame.Heights
			for i := range h {
				if h[i] != h[len(h)-1-i] {
					t.Fatalf("bars=%d frame %d not symmetric: %v", bars, frame.Index, h)
				}
			}
		}
	}
}

func TestRollingNormalizationLiftsQuietSections(t *testing.T) {
	rate := 1000
	track := &audio.Track{Samples: make([]float32, 4*rate), SampleRate: rate, Channels: 1}
	for i := range track.Samples {
		amp := float32(1)
		if i >= 2*rate {
			amp = 0.1
		}
		track.Samples[i] = amp
	}
	global, err := New(track, Options{FPS: 10, Bars: 2, Normalization: Global})
	if err != nil {
		t.Fatalf("New global: %v", err)
	}
	rolling, err := New(track, Options{FPS: 10, Bars: 2, Normalization: Rolling, RollingWindow: 1})
	if err != nil {
		t.Fatalf("New rolling: %v", err)
	}
	if got := global.At(35)[0]; math.Abs(got-0.1) > 1e-6 {
		t.Fatalf("expected quiet section at 0.1 with global normalization, got %v", got)
	}
	if got := rolling.At(35)[0]; got != 1 {
		t.Fatalf("expected quiet section lifted to 1 with rolling normalization, got %v", got)
	}
}

func TestFramesIsRestartable(t *testing.T) {
	track := silentTrack(1, 8000, 1)
	track.Samples[100] = 1
	w, err := New(track, Options{FPS: 24, Bars: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	collect := func() [][]float64 {
		var out [][]float64
		for frame := range w.Frames() {
			out = append(out, slices.Clone(frame.Heights))
		}
		return out
	}
	first, second := collect(), collect()
	if len(first) != len(second) {
		t.Fatal("frame counts differ between iterations")
	}
	for i := range first {
		if !slices.Equal(first[i], second[i]) {
			t.Fatalf("frame %d differs between iterations", i)
		}
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	track := silentTrack(1, 8000, 1)
	if _, err := New(track, Options{FPS: 0, Bars: 4}); err == nil {
		t.Fatal("expected error for zero fps")
	}
	if _, err := New(track, Options{FPS: 24, Bars: 0}); err == nil {
		t.Fatal("expected error for zero bars")
	}
	if _, err := New(nil, Options{FPS: 24, Bars: 4}); err == nil {
		t.Fatal("expected error for nil track")
	}
}

func TestFrameCount(t *testing.T) {
	cases := []struct {
		duration, fps float64
		want          int
	}{
		{20, 24, 480},
		{1.02, 24, 24},
		{0.01, 24, 1},
	}
	for _, tc := range cases {
		if got := FrameCount(tc.duration, tc.fps); got != tc.want {
			t.Fatalf("FrameCount(%v, %v) = %d, want %d", tc.duration, tc.fps, got, tc.want)
		}
	}
}
