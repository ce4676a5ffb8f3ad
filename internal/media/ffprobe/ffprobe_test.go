package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDurationFallsBackToStream(t *testing.T) {
	cases := []struct {
		name   string
		result Result
		want   float64
	}{
		{"container", Result{Format: Format{Duration: "123.45"}}, 123.45},
		{"stream", Result{Format: Format{Duration: "N/A"}, Streams: []Stream{{CodecType: KindAudio, Duration: "9.98"}}}, 9.98},
		{"other kind ignored", Result{Streams: []Stream{{CodecType: KindVideo, Duration: "10"}}}, math.NaN()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.result.Duration(KindAudio)
			if math.IsNaN(tc.want) {
				if !math.IsNaN(got) {
					t.Fatalf("expected NaN, got %v", got)
				}
				return
			}
			if got != tc.want {
				t.Fatalf("Duration = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStreamLookups(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", Duration: "10.0"},
			{CodecType: "audio", SampleRate: "44100", Channels: 2},
			{CodecType: "Audio"},
		},
	}
	if result.Count(KindVideo) != 1 || result.Count(KindAudio) != 2 {
		t.Fatalf("unexpected counts: video=%d audio=%d", result.Count(KindVideo), result.Count(KindAudio))
	}
	audio, ok := result.First(KindAudio)
	if !ok || audio.SampleRateHz() != 44100 || audio.Channels != 2 {
		t.Fatalf("unexpected audio stream: %+v", audio)
	}
	if _, ok := (Result{}).First(KindAudio); ok {
		t.Fatal("expected no audio stream in empty result")
	}
	if (Stream{SampleRate: "n/a"}).SampleRateHz() != 0 {
		t.Fatal("expected unparsable sample rate to yield 0")
	}
}

func TestInspectDecodesReport(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	body := `#!/bin/sh
printf '{"streams":[{"index":0,"codec_type":"audio","codec_name":"mp3","sample_rate":"44100","channels":2}],"format":{"duration":"1800.250000","format_name":"mp3"}}'
`
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	result, err := Inspect(context.Background(), script, "episode.mp3")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.Duration(KindAudio) != 1800.25 || result.Format.FormatName != "mp3" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestInspectReportsStderr(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	body := "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	_, err := Inspect(context.Background(), script, "broken.mp3")
	if err == nil || !strings.Contains(err.Error(), "Invalid data") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
	if _, err := Inspect(context.Background(), script, " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
