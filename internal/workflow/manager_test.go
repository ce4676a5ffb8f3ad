package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"audiogram/internal/assets"
	"audiogram/internal/config"
	"audiogram/internal/encoding"
	"audiogram/internal/history"
	"audiogram/internal/media/audio"
	"audiogram/internal/output"
	"audiogram/internal/pipeline"
	"audiogram/internal/services"
	"audiogram/internal/testsupport"
	"audiogram/internal/workflow"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:podcast="https://podcastindex.org/namespace/1.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
<channel>
  <title>Workflow Cast</title>
  <image><url>%[1]s/cover.png</url></image>
  <itunes:keywords>tech</itunes:keywords>
  <item>
    <title>Second Episode</title>
    <guid>ep-2</guid>
    <link>https://example.com/2</link>
    <itunes:image href="%[1]s/missing.png"/>
    <enclosure url="%[1]s/audio/2.mp3" type="audio/mpeg" length="1"/>
    <itunes:duration>20</itunes:duration>
    <podcast:transcript url="%[1]s/2.srt" type="application/x-subrip"/>
    <podcast:soundbite startTime="1" duration="2">Opening</podcast:soundbite>
    <podcast:soundbite startTime="10" duration="1.5">Closing</podcast:soundbite>
  </item>
  <item>
    <title>First Episode</title>
    <guid>ep-1</guid>
    <enclosure url="%[1]s/audio/1.mp3" type="audio/mpeg" length="1"/>
    <itunes:duration>20</itunes:duration>
    <podcast:soundbite startTime="5" duration="2">Only</podcast:soundbite>
  </item>
</channel>
</rss>`

const srt = `1
00:00:01,000 --> 00:00:02,500
Welcome to the show

2
00:00:10,000 --> 00:00:11,000
Goodbye
`

type fixture struct {
	server   *httptest.Server
	cfg      *config.Config
	audioHit atomic.Int32
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()
	fx := &fixture{}
	cover := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range cover.Pix {
		cover.Pix[i] = 0x80
	}
	var coverPNG bytes.Buffer
	if err := png.Encode(&coverPNG, cover); err != nil {
		t.Fatalf("encode cover: %v", err)
	}

	fx.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/feed.xml":
			w.Header().Set("Content-Type", "application/rss+xml")
			fmt.Fprintf(w, feedTemplate, fx.server.URL)
		case r.URL.Path == "/cover.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(coverPNG.Bytes())
		case r.URL.Path == "/2.srt":
			_, _ = w.Write([]byte(srt))
		case strings.HasPrefix(r.URL.Path, "/audio/"):
			fx.audioHit.Add(1)
			_, _ = w.Write([]byte("ID3 not really audio"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(fx.server.Close)

	opts = append([]testsupport.ConfigOption{testsupport.WithFeedURL(fx.server.URL + "/feed.xml"), testsupport.WithStubbedBinaries()}, opts...)
	fx.cfg = testsupport.NewConfig(t, opts...)
	return fx
}

type sineDecoder struct {
	mu     sync.Mutex
	opened []string
	fail   string
}

func (d *sineDecoder) Open(_ context.Context, path string) (audio.Source, error) {
	d.mu.Lock()
	d.opened = append(d.opened, path)
	d.mu.Unlock()
	if d.fail != "" && strings.HasSuffix(path, d.fail) {
		return nil, services.Wrap(services.ErrAudioDecode, "decode", "probe", "no audio stream in "+path, nil)
	}
	const rate = 8000
	samples := make([]float32, 20*rate)
	for i := range samples {
		samples[i] = float32(0.3 * math.Sin(2*math.Pi*330*float64(i)/rate))
	}
	return &audio.Track{Samples: samples, SampleRate: rate, Channels: 1}, nil
}

type fileEncoder struct {
	mu    sync.Mutex
	paths []string
}

func (e *fileEncoder) Encode(_ context.Context, job encoding.Job) (encoding.Result, error) {
	frames := 0
	for range job.Frames {
		frames++
	}
	if err := os.WriteFile(job.OutputPath, []byte("mp4"), 0o644); err != nil {
		return encoding.Result{}, err
	}
	e.mu.Lock()
	e.paths = append(e.paths, job.OutputPath)
	e.mu.Unlock()
	return encoding.Result{Path: job.OutputPath, Duration: job.ExpectedDuration, Frames: frames}, nil
}

func (e *fileEncoder) ExportAudio(_ context.Context, _ *audio.Track, path string) error {
	return os.WriteFile(path, []byte("mp3"), 0o644)
}

func openHistory(t *testing.T, cfg *config.Config) *history.Store {
	t.Helper()
	store, err := history.Open(cfg.Paths.HistoryPath)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunRendersLatestEpisode(t *testing.T) {
	fx := newFixture(t)
	store := openHistory(t, fx.cfg)
	decoder := &sineDecoder{}
	encoder := &fileEncoder{}
	manager := workflow.NewManager(fx.cfg, nil, workflow.WithDecoder(decoder), workflow.WithEncoder(encoder), workflow.WithHistory(store))

	summary, err := manager.Run(context.Background(), workflow.RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID == "" || summary.Podcast.Title != "Workflow Cast" {
		t.Fatalf("unexpected summary header %+v", summary)
	}
	counts := summary.Counts()
	want := workflow.Counts{Episodes: 1, Soundbites: 2, SoundbitesOK: 2, Renders: 6, RendersOK: 6}
	if counts != want {
		t.Fatalf("unexpected counts %+v, want %+v", counts, want)
	}
	if summary.Failed() {
		t.Fatal("expected a clean run")
	}

	ep := summary.Episodes[0]
	if ep.Episode != 2 || ep.Title != "Second Episode" {
		t.Fatalf("expected latest episode, got %d %q", ep.Episode, ep.Title)
	}
	if got := ep.Soundbites[0].Caption.Transcript; got != "Welcome to the show" {
		t.Fatalf("expected transcript caption, got %q", got)
	}
	if len(decoder.opened) != 1 || filepath.Dir(decoder.opened[0]) != fx.cfg.Paths.CacheDir {
		t.Fatalf("expected audio opened from cache, got %v", decoder.opened)
	}
	for _, name := range []string{"ep2_sb1_vertical.mp4", "ep2_sb2_horizontal.mp4", "ep2_sb1_caption.txt", "ep2_sb2.srt", "ep2_sb1.mp3"} {
		if _, err := os.Stat(filepath.Join(fx.cfg.Paths.OutputDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	records, err := store.List(context.Background(), history.Filter{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("expected 6 history records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Status != history.StatusSucceeded || rec.Episode != 2 || rec.Format == "" || !rec.Subtitles {
			t.Fatalf("unexpected record %+v", rec)
		}
	}
}

func TestRunFallsBackToPodcastCoverQuietly(t *testing.T) {
	fx := newFixture(t, testsupport.WithFormats("square"))
	fx.cfg.Render.UseEpisodeCover = true
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	manager := workflow.NewManager(fx.cfg, logger, workflow.WithDecoder(&sineDecoder{}), workflow.WithEncoder(&fileEncoder{}))

	summary, err := manager.Run(context.Background(), workflow.RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed() {
		t.Fatal("expected a clean run")
	}
	out := logs.String()
	if !strings.Contains(out, "using fallback cover") {
		t.Fatalf("expected fallback cover log, got:\n%s", out)
	}
	if strings.Contains(out, "cover_unavailable") || strings.Contains(out, "videos render without artwork") {
		t.Fatalf("fallback succeeded but logs report missing artwork:\n%s", out)
	}
}

func TestRunDryRunSkipsAudio(t *testing.T) {
	fx := newFixture(t)
	store := openHistory(t, fx.cfg)
	decoder := &sineDecoder{}
	encoder := &fileEncoder{}
	manager := workflow.NewManager(fx.cfg, nil, workflow.WithDecoder(decoder), workflow.WithEncoder(encoder), workflow.WithHistory(store))

	summary, err := manager.Run(context.Background(), workflow.RunOptions{Episodes: "all", DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fx.audioHit.Load() != 0 || len(decoder.opened) != 0 || len(encoder.paths) != 0 {
		t.Fatal("dry run must not touch audio or the encoder")
	}
	if len(summary.Episodes) != 2 {
		t.Fatalf("expected both episodes, got %d", len(summary.Episodes))
	}
	record := summary.Episodes[1].Soundbites[1].DryRun
	if record == nil || record.Start != 10 || record.End != 11.5 || record.Text != "Goodbye" {
		t.Fatalf("unexpected dry-run record %+v", record)
	}
	if records, _ := store.List(context.Background(), history.Filter{}); len(records) != 0 {
		t.Fatalf("dry run wrote %d history records", len(records))
	}
}

func TestRunContinuesAfterAudioFailure(t *testing.T) {
	fx := newFixture(t, testsupport.WithFormats("square"))
	store := openHistory(t, fx.cfg)
	decoder := &sineDecoder{fail: assets.CacheKey(fx.server.URL + "/audio/1.mp3")}
	manager := workflow.NewManager(fx.cfg, nil, workflow.WithDecoder(decoder), workflow.WithEncoder(&fileEncoder{}), workflow.WithHistory(store))

	summary, err := manager.Run(context.Background(), workflow.RunOptions{Episodes: "1,2"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	first, second := summary.Episodes[0], summary.Episodes[1]
	if !errors.Is(first.Err, services.ErrAudioDecode) {
		t.Fatalf("expected decode failure for episode 1, got %v", first.Err)
	}
	if len(first.Soundbites) != 1 || first.Soundbites[0].Status != pipeline.StatusSkipped {
		t.Fatalf("expected skipped soundbite, got %+v", first.Soundbites)
	}
	if second.Err != nil || second.Failed() {
		t.Fatalf("expected episode 2 to render, got %+v", second)
	}
	if !summary.Failed() {
		t.Fatal("expected summary to report the failure")
	}

	skipped, err := store.List(context.Background(), history.Filter{Statuses: []history.Status{history.StatusSkipped}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(skipped) != 1 || skipped[0].Episode != 1 || !strings.Contains(skipped[0].Error, "audio decode") {
		t.Fatalf("unexpected skipped records %+v", skipped)
	}
}

func TestRunSelectsSoundbites(t *testing.T) {
	fx := newFixture(t, testsupport.WithFormats("vertical"))
	manager := workflow.NewManager(fx.cfg, nil, workflow.WithDecoder(&sineDecoder{}), workflow.WithEncoder(&fileEncoder{}))

	summary, err := manager.Run(context.Background(), workflow.RunOptions{Episodes: "2", Soundbites: "2"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sbs := summary.Episodes[0].Soundbites
	if len(sbs) != 1 || sbs[0].Number != 2 || sbs[0].Status != pipeline.StatusSucceeded {
		t.Fatalf("expected only soundbite 2, got %+v", sbs)
	}
}

func TestRunRejectsInvalidSelection(t *testing.T) {
	fx := newFixture(t)
	manager := workflow.NewManager(fx.cfg, nil, workflow.WithDecoder(&sineDecoder{}), workflow.WithEncoder(&fileEncoder{}))
	if _, err := manager.Run(context.Background(), workflow.RunOptions{Episodes: "7"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunRequiresFeedURL(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFeedURL(""))
	manager := workflow.NewManager(cfg, nil, workflow.WithDecoder(&sineDecoder{}), workflow.WithEncoder(&fileEncoder{}))
	_, err := manager.Run(context.Background(), workflow.RunOptions{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunRefusesLockedOutputDirectory(t *testing.T) {
	fx := newFixture(t)
	unlock, err := output.NewWriter(fx.cfg.Paths.OutputDir, output.DefaultLabels(), nil).Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock()

	manager := workflow.NewManager(fx.cfg, nil, workflow.WithDecoder(&sineDecoder{}), workflow.WithEncoder(&fileEncoder{}))
	if _, err := manager.Run(context.Background(), workflow.RunOptions{}); !errors.Is(err, output.ErrLocked) {
		t.Fatalf("expected lock error, got %v", err)
	}
}

func TestRunFailsPreflightWithoutBinaries(t *testing.T) {
	fx := newFixture(t)
	fx.cfg.Encoder.FFmpeg = "/nonexistent/ffmpeg"
	manager := workflow.NewManager(fx.cfg, nil, workflow.WithDecoder(&sineDecoder{}), workflow.WithEncoder(&fileEncoder{}))
	_, err := manager.Run(context.Background(), workflow.RunOptions{})
	if !errors.Is(err, services.ErrConfiguration) || !strings.Contains(err.Error(), "FFmpeg") {
		t.Fatalf("expected preflight failure, got %v", err)
	}
	if fx.audioHit.Load() != 0 {
		t.Fatal("preflight failure must stop before downloads")
	}
}
