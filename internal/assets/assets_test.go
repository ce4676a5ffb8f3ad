package assets_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"audiogram/internal/assets"
	"audiogram/internal/services"
)

func TestFetchCachesAndDeduplicates(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.Header.Get("User-Agent"); got != "audiogram/test" {
			t.Errorf("unexpected user agent %q", got)
		}
		<-release
		_, _ = w.Write([]byte("ID3 audio bytes"))
	}))
	defer srv.Close()

	cache := t.TempDir()
	fetcher := assets.New(assets.Options{CacheDir: cache, UserAgent: "audiogram/test"}, nil)
	url := srv.URL + "/episodes/12.mp3?token=abc"

	var wg sync.WaitGroup
	paths := make([]string, 4)
	errs := make([]error, 4)
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			paths[i], errs[i] = fetcher.Fetch(context.Background(), url)
		}()
	}
	close(release)
	wg.Wait()

	for i := range 4 {
		if errs[i] != nil {
			t.Fatalf("Fetch %d: %v", i, errs[i])
		}
		if paths[i] != paths[0] {
			t.Fatalf("expected identical paths, got %q and %q", paths[i], paths[0])
		}
	}
	if filepath.Dir(paths[0]) != cache || !strings.HasSuffix(paths[0], ".mp3") {
		t.Fatalf("unexpected cache path %q", paths[0])
	}

	// A later call is served from the cache.
	if _, err := fetcher.Fetch(context.Background(), url); err != nil {
		t.Fatalf("cached Fetch: %v", err)
	}
	if hits.Load() > 4 || hits.Load() < 1 {
		t.Fatalf("unexpected hit count %d", hits.Load())
	}
	before := hits.Load()
	if _, err := fetcher.Fetch(context.Background(), url); err != nil {
		t.Fatalf("cached Fetch: %v", err)
	}
	if hits.Load() != before {
		t.Fatalf("expected cache hit, server saw %d requests (was %d)", hits.Load(), before)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil || string(data) != "ID3 audio bytes" {
		t.Fatalf("unexpected cached content %q: %v", data, err)
	}
}

func TestFetchClassifiesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		default:
			http.Error(w, "boom", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	fetcher := assets.New(assets.Options{CacheDir: t.TempDir()}, nil)
	if _, err := fetcher.Fetch(context.Background(), srv.URL+"/missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := fetcher.Get(context.Background(), srv.URL+"/flaky"); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestFetchLocalPath(t *testing.T) {
	local := filepath.Join(t.TempDir(), "episode.wav")
	if err := os.WriteFile(local, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	fetcher := assets.New(assets.Options{}, nil)
	got, err := fetcher.Fetch(context.Background(), "file://"+local)
	if err != nil || got != local {
		t.Fatalf("Fetch local: %q %v", got, err)
	}
	if _, err := fetcher.Fetch(context.Background(), local+".missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing local file, got %v", err)
	}
}

func TestGetReturnsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-subrip")
		_, _ = w.Write([]byte("1\n00:00:00,000 --> 00:00:01,000\nHi\n"))
	}))
	defer srv.Close()

	res, err := assets.New(assets.Options{}, nil).Get(context.Background(), srv.URL+"/t.srt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.ContentType != "application/x-subrip" || !bytes.Contains(res.Data, []byte("Hi")) {
		t.Fatalf("unexpected resource: %+v", res)
	}
}

func TestCacheKeyStable(t *testing.T) {
	a := assets.CacheKey("https://cdn.example.com/a/ep.MP3")
	b := assets.CacheKey("https://cdn.example.com/a/ep.MP3")
	c := assets.CacheKey("https://cdn.example.com/b/ep.mp3")
	if a != b || a == c {
		t.Fatalf("unexpected keys %q %q %q", a, b, c)
	}
	if !strings.HasSuffix(a, ".mp3") {
		t.Fatalf("expected lower-cased extension, got %q", a)
	}
	if strings.Contains(assets.CacheKey("https://example.com/feed"), ".") {
		t.Fatal("expected no extension for extensionless URL")
	}
}

func TestChooseCover(t *testing.T) {
	cases := []struct {
		name          string
		preferEpisode bool
		episode       string
		podcast       string
		want          assets.CoverSource
	}{
		{"podcast by default", false, "ep.jpg", "pod.jpg", assets.CoverPodcast},
		{"episode preferred", true, "ep.jpg", "pod.jpg", assets.CoverEpisode},
		{"episode missing falls back", true, "", "pod.jpg", assets.CoverPodcast},
		{"podcast missing uses episode", false, "ep.jpg", "", assets.CoverEpisode},
		{"nothing", true, "", "", assets.CoverNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := assets.ChooseCover(tc.preferEpisode, tc.episode, tc.podcast); got.Source != tc.want {
				t.Fatalf("got %+v, want %s", got, tc.want)
			}
		})
	}
}

func TestLoadCoverDecodesPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "cover.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	fetcher := assets.New(assets.Options{}, nil)
	cover, err := fetcher.LoadCover(context.Background(), assets.ChooseCover(false, "", path))
	if err != nil {
		t.Fatalf("LoadCover: %v", err)
	}
	if cover.Image == nil || cover.Image.Bounds().Dx() != 4 || cover.Image.Bounds().Dy() != 3 {
		t.Fatalf("unexpected image: %+v", cover)
	}

	none, err := fetcher.LoadCover(context.Background(), assets.CoverArt{Source: assets.CoverNone})
	if err != nil || none.Image != nil {
		t.Fatalf("expected no image for CoverNone: %+v %v", none, err)
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if _, _, err := assets.DecodeImage(strings.NewReader("not an image")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
