package main

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audiogram/internal/encoding"
	"audiogram/internal/media/audio"
	"audiogram/internal/workflow"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:podcast="https://podcastindex.org/namespace/1.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
<channel>
  <title>CLI Cast</title>
  <item>
    <title>Pilot</title>
    <guid>ep-1</guid>
    <enclosure url="%[1]s/audio/1.mp3" type="audio/mpeg" length="1"/>
    <itunes:duration>20</itunes:duration>
    <podcast:soundbite startTime="1" duration="2">Cold open</podcast:soundbite>
  </item>
  <item>
    <title>Sequel</title>
    <guid>ep-2</guid>
    <enclosure url="%[1]s/audio/2.mp3" type="audio/mpeg" length="1"/>
    <itunes:duration>90</itunes:duration>
    <podcast:soundbite startTime="61.5" duration="2">Big reveal</podcast:soundbite>
    <podcast:soundbite startTime="85" duration="30">Runs long</podcast:soundbite>
    <podcast:soundbite startTime="95" duration="10">Past the end</podcast:soundbite>
  </item>
</channel>
</rss>`

type cliEnv struct {
	baseDir    string
	configPath string
	outputDir  string
	feedURL    string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AUDIOGRAM_FEED_URL", "")

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/feed.xml":
			fmt.Fprintf(w, testFeed, server.URL)
		case strings.HasPrefix(r.URL.Path, "/audio/"):
			_, _ = w.Write([]byte("not really audio"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	base := t.TempDir()
	env := &cliEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "audiogram.toml"),
		outputDir:  filepath.Join(base, "output"),
		feedURL:    server.URL + "/feed.xml",
	}
	content := fmt.Sprintf(`[feed]
url = %q

[paths]
output_dir = %q
log_dir = %q
cache_dir = %q

[render]
fps = 4
verify_duration = false

[encoder]
sample_rate = 8000

[formats.vertical]
width = 72
height = 128

[formats.square]
enabled = false

[formats.horizontal]
enabled = false

[logging]
level = "error"
`, env.feedURL, env.outputDir, filepath.Join(base, "logs"), filepath.Join(base, "cache"))
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string, opts ...workflow.ManagerOption) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts...)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", want, output)
	}
}

type toneDecoder struct{}

func (toneDecoder) Open(context.Context, string) (audio.Source, error) {
	const rate = 8000
	samples := make([]float32, 90*rate)
	for i := range samples {
		samples[i] = float32(0.4 * math.Sin(2*math.Pi*220*float64(i)/rate))
	}
	return &audio.Track{Samples: samples, SampleRate: rate, Channels: 1}, nil
}

type touchEncoder struct{}

func (touchEncoder) Encode(_ context.Context, job encoding.Job) (encoding.Result, error) {
	frames := 0
	for range job.Frames {
		frames++
	}
	if err := os.WriteFile(job.OutputPath, []byte("mp4"), 0o644); err != nil {
		return encoding.Result{}, err
	}
	return encoding.Result{Path: job.OutputPath, Duration: job.ExpectedDuration, Frames: frames}, nil
}

func (touchEncoder) ExportAudio(_ context.Context, _ *audio.Track, path string) error {
	return os.WriteFile(path, []byte("mp3"), 0o644)
}

func renderOptions() []workflow.ManagerOption {
	return []workflow.ManagerOption{
		workflow.WithDecoder(toneDecoder{}),
		workflow.WithEncoder(touchEncoder{}),
		workflow.WithoutPreflight(),
	}
}

func TestDryRunPrintsTimings(t *testing.T) {
	env := setupCLIEnv(t)

	out, _, err := runCLI(t, []string{"--dry-run", "--soundbites", "1,2"}, env.configPath)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	requireContains(t, out, "Episode 2: Sequel")
	requireContains(t, out, "61.500s (00:01:01.500)")
	requireContains(t, out, "90.000s (00:01:30.000)")
	requireContains(t, out, "exceeds")
	requireContains(t, out, "Dry run")

	entries, _ := os.ReadDir(env.outputDir)
	if len(entries) != 0 {
		t.Fatalf("dry run wrote %d output entries", len(entries))
	}
}

func TestRenderWritesVideosAndHistory(t *testing.T) {
	env := setupCLIEnv(t)

	out, _, err := runCLI(t, []string{"--episode", "1"}, env.configPath, renderOptions()...)
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	requireContains(t, out, "Episode 1: Pilot")
	requireContains(t, out, "1/1 soundbites, 1/1 videos")
	if _, err := os.Stat(filepath.Join(env.outputDir, "ep1_sb1_vertical.mp4")); err != nil {
		t.Fatalf("expected rendered video: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "ep1_sb1_vertical.mp4")
	requireContains(t, out, "succeeded")

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 1 history records")

	out, _, err = runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list after clear: %v", err)
	}
	requireContains(t, out, "No renders recorded")
}

func TestRenderReportsFailedSoundbites(t *testing.T) {
	env := setupCLIEnv(t)

	out, _, err := runCLI(t, []string{"--episode", "2", "--no-subtitles"}, env.configPath, renderOptions()...)
	if err == nil {
		t.Fatal("expected error when a soundbite starts past the end")
	}
	requireContains(t, err.Error(), "1 of 3 soundbites")
	requireContains(t, out, "ep2_sb1_nosubs_vertical.mp4")
	requireContains(t, out, "ep2_sb2_nosubs_vertical.mp4")
	requireContains(t, out, "[ERROR]")
}

func TestRenderRejectsBadSelection(t *testing.T) {
	env := setupCLIEnv(t)

	_, _, err := runCLI(t, []string{"--episode", "7", "--dry-run"}, env.configPath)
	if err == nil {
		t.Fatal("expected selection error")
	}
}

func TestEpisodesListsNewestFirst(t *testing.T) {
	env := setupCLIEnv(t)

	out, _, err := runCLI(t, []string{"episodes"}, env.configPath)
	if err != nil {
		t.Fatalf("episodes: %v", err)
	}
	requireContains(t, out, "CLI Cast")
	if strings.Index(out, "Sequel") > strings.Index(out, "Pilot") {
		t.Fatalf("expected newest episode first:\n%s", out)
	}
	requireContains(t, out, "0:01:30")

	out, _, err = runCLI(t, []string{"episodes", "--limit", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("episodes --limit: %v", err)
	}
	if strings.Contains(out, "Pilot") {
		t.Fatalf("expected limit to hide the oldest episode:\n%s", out)
	}
	requireContains(t, out, "Showing 1 of 2 episodes")
}

func TestFeedURLFlagOverridesConfig(t *testing.T) {
	env := setupCLIEnv(t)

	_, _, err := runCLI(t, []string{"--feed-url", "http://127.0.0.1:1/missing.xml", "episodes"}, env.configPath)
	if err == nil {
		t.Fatal("expected fetch error for overridden feed url")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("AUDIOGRAM_FEED_URL", "")
	target := filepath.Join(t.TempDir(), "conf", "audiogram.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireContains(t, out, "AUDIOGRAM_FEED_URL")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}

	out, _, err = runCLI(t, []string{"config", "validate", "--output-dir", t.TempDir()}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+target)
	requireContains(t, out, "Feed URL not set")
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	env := setupCLIEnv(t)

	if _, _, err := runCLI(t, []string{"config", "validate", "--log-level", "trace"}, env.configPath); err == nil {
		t.Fatal("expected invalid log level to fail validation")
	}
}

func TestCheckReportsMissingBinaries(t *testing.T) {
	env := setupCLIEnv(t)
	t.Setenv("PATH", t.TempDir())

	out, _, err := runCLI(t, []string{"check", "--skip-feed"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail without ffmpeg")
	}
	requireContains(t, out, "Preflight")
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "[ERROR]")
}

func TestFormatSeconds(t *testing.T) {
	cases := map[float64]string{
		0:       "0.000s (00:00:00.000)",
		61.5:    "61.500s (00:01:01.500)",
		3725.25: "3725.250s (01:02:05.250)",
	}
	for in, want := range cases {
		if got := formatSeconds(in); got != want {
			t.Fatalf("formatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
	if got := formatSeconds(math.NaN()); got != "-" {
		t.Fatalf("expected dash for NaN, got %q", got)
	}
}
