package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"audiogram/internal/config"
)

func TestLoadDefaultConfigUsesEnvFeedURLAndExpandsPaths(t *testing.T) {
	t.Setenv(config.FeedURLEnv, "https://example.com/feed.xml")
	t.Setenv("XDG_CACHE_HOME", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "audiogram", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Paths.HistoryPath != filepath.Join(wantLogs, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.Paths.HistoryPath)
	}
	if cfg.Feed.URL != "https://example.com/feed.xml" {
		t.Fatalf("expected feed url from env, got %q", cfg.Feed.URL)
	}
	if cfg.Render.FPS != 24 {
		t.Fatalf("unexpected fps: %v", cfg.Render.FPS)
	}
	if !cfg.Render.ShowSubtitles {
		t.Fatal("expected subtitles enabled by default")
	}
	if cfg.Render.UseEpisodeCover {
		t.Fatal("expected podcast cover by default")
	}
	if cfg.Render.HeaderTitleSource != "auto" {
		t.Fatalf("unexpected header title source: %q", cfg.Render.HeaderTitleSource)
	}
	if got := cfg.EnabledFormats(); strings.Join(got, ",") != "vertical,square,horizontal" {
		t.Fatalf("unexpected enabled formats: %v", got)
	}
	if cfg.Formats["vertical"].Width != 1080 || cfg.Formats["vertical"].Height != 1920 {
		t.Fatalf("unexpected vertical format: %+v", cfg.Formats["vertical"])
	}
	if cfg.Colors.Primary[0] != 242 || cfg.Colors.Background[2] != 197 {
		t.Fatalf("unexpected colors: %+v", cfg.Colors)
	}
	if err := cfg.RequireFeedURL(); err != nil {
		t.Fatalf("RequireFeedURL: %v", err)
	}
}

func TestLoadCustomTOMLPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "audiogram.toml")

	type payload struct {
		Feed struct {
			URL string `toml:"url"`
		} `toml:"feed"`
		Render struct {
			ShowSubtitles     bool   `toml:"show_subtitles"`
			HeaderTitleSource string `toml:"header_title_source"`
		} `toml:"render"`
		Formats map[string]map[string]any `toml:"formats"`
	}
	custom := payload{}
	custom.Feed.URL = "https://example.com/rss"
	custom.Render.ShowSubtitles = false
	custom.Render.HeaderTitleSource = " Podcast "
	custom.Formats = map[string]map[string]any{
		"square":     {"enabled": false},
		"Horizontal": {"width": 1280, "height": 720},
	}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q %v", resolved, exists)
	}
	if cfg.Render.ShowSubtitles {
		t.Fatal("expected subtitles disabled from file")
	}
	if cfg.Render.HeaderTitleSource != "podcast" {
		t.Fatalf("expected normalized header title source, got %q", cfg.Render.HeaderTitleSource)
	}
	if !cfg.Formats["vertical"].IsEnabled() {
		t.Fatal("expected vertical to keep its default when the file omits it")
	}
	if cfg.Formats["square"].IsEnabled() {
		t.Fatal("expected square disabled")
	}
	if square := cfg.Formats["square"]; square.Width != 1080 || square.Height != 1080 {
		t.Fatalf("expected square dimensions from defaults, got %+v", square)
	}
	horizontal := cfg.Formats["horizontal"]
	if horizontal.Width != 1280 || horizontal.Height != 720 || !horizontal.IsEnabled() {
		t.Fatalf("unexpected horizontal format: %+v", horizontal)
	}
	if got := cfg.EnabledFormats(); strings.Join(got, ",") != "vertical,horizontal" {
		t.Fatalf("unexpected enabled formats: %v", got)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yml")
	content := `
feed:
  url: https://example.com/yaml-feed
render:
  use_episode_cover: true
  header_title_source: soundbite
captions:
  hashtags: ["#AI", " devops "]
manual_soundbites:
  "3":
    - start: 12.5
      duration: 20
      title: Manual pick
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected yaml config to exist")
	}
	if cfg.Feed.URL != "https://example.com/yaml-feed" {
		t.Fatalf("unexpected feed url: %q", cfg.Feed.URL)
	}
	if !cfg.Render.UseEpisodeCover || cfg.Render.HeaderTitleSource != "soundbite" {
		t.Fatalf("unexpected render section: %+v", cfg.Render)
	}
	if !cfg.Render.ShowSubtitles {
		t.Fatal("expected unspecified show_subtitles to keep its default")
	}
	if len(cfg.Captions.Hashtags) != 2 || cfg.Captions.Hashtags[1] != "devops" {
		t.Fatalf("unexpected hashtags: %v", cfg.Captions.Hashtags)
	}
	manual := cfg.ManualSoundbites["3"]
	if len(manual) != 1 || manual[0].Start != 12.5 || manual[0].Duration == nil || *manual[0].Duration != 20 {
		t.Fatalf("unexpected manual soundbites: %+v", manual)
	}
}

func TestLoadFlatYAMLLayout(t *testing.T) {
	t.Setenv(config.FeedURLEnv, "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yml")
	content := `
feed_url: https://example.com/feed.xml
output_dir: ` + filepath.Join(tempDir, "renders") + `
episode: 5
soundbites: all
show_subtitles: false
use_episode_cover: true
header_title_source: podcast
caption_labels:
  episode_prefix: Episodio
colors:
  primary: [10, 20, 30]
formats:
  square:
    enabled: false
manual_soundbites:
  guid-1:
    - start: '20'
      duration: '10'
      text: Manual Soundbite
  2:
    - start: 30
      end: 35.5
      text: By Number
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Feed.URL != "https://example.com/feed.xml" {
		t.Fatalf("unexpected feed url: %q", cfg.Feed.URL)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempDir, "renders") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Selection.Episodes != "5" || cfg.Selection.Soundbites != "all" {
		t.Fatalf("unexpected selection: %+v", cfg.Selection)
	}
	if cfg.Render.ShowSubtitles || !cfg.Render.UseEpisodeCover || cfg.Render.HeaderTitleSource != "podcast" {
		t.Fatalf("unexpected render section: %+v", cfg.Render)
	}
	if cfg.Captions.EpisodePrefix != "Episodio" || cfg.Captions.ListenFullPrefix != "Listen to the full episode" {
		t.Fatalf("unexpected caption labels: %+v", cfg.Captions)
	}
	if cfg.Colors.Primary[2] != 30 || cfg.Colors.Background[0] != 235 {
		t.Fatalf("unexpected colors: %+v", cfg.Colors)
	}
	if got := cfg.EnabledFormats(); strings.Join(got, ",") != "vertical,horizontal" {
		t.Fatalf("unexpected enabled formats: %v", got)
	}

	byGUID := cfg.ManualSoundbites["guid-1"]
	if len(byGUID) != 1 || byGUID[0].Start != 20 || byGUID[0].Duration == nil || *byGUID[0].Duration != 10 {
		t.Fatalf("unexpected guid soundbites: %+v", byGUID)
	}
	if byGUID[0].Title != "Manual Soundbite" {
		t.Fatalf("expected text to become the title, got %q", byGUID[0].Title)
	}
	byNumber := cfg.ManualSoundbites["2"]
	if len(byNumber) != 1 || byNumber[0].End == nil || *byNumber[0].End != 35.5 || byNumber[0].Title != "By Number" {
		t.Fatalf("unexpected numbered soundbites: %+v", byNumber)
	}
}

func TestLoadYAMLRejectsNonNumericStart(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "manual_soundbites:\n  \"1\":\n    - start: soon\n      duration: 5\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "not a number") {
		t.Fatalf("expected number error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"header source", func(c *config.Config) { c.Render.HeaderTitleSource = "title" }, "render.header_title_source"},
		{"waveform method", func(c *config.Config) { c.Waveform.Method = "loudness" }, "waveform.method"},
		{"color length", func(c *config.Config) { c.Colors.Primary = []int{1, 2} }, "colors.primary"},
		{"color range", func(c *config.Config) { c.Colors.Text = []int{0, 0, 300} }, "colors.text"},
		{"odd dimensions", func(c *config.Config) { c.Formats["square"] = config.Format{Width: 1081, Height: 1080} }, "formats.square"},
		{"manual soundbite", func(c *config.Config) {
			c.ManualSoundbites = map[string][]config.ManualSoundbite{"guid-1": {{Start: 1}}}
		}, "manual_soundbites.guid-1"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestValidateRequiresEnabledFormat(t *testing.T) {
	cfg := config.Default()
	off := false
	for name, format := range cfg.Formats {
		format.Enabled = &off
		cfg.Formats[name] = format
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when every format is disabled")
	}
}

func TestRequireFeedURLMentionsEnv(t *testing.T) {
	cfg := config.Default()
	err := cfg.RequireFeedURL()
	if err == nil {
		t.Fatal("expected error for empty feed url")
	}
	if !strings.Contains(err.Error(), config.FeedURLEnv) {
		t.Fatalf("expected env var hint, got %q", err.Error())
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	defaults := config.Default()
	if cfg.Encoder.Preset != defaults.Encoder.Preset || cfg.Waveform.BarWidth != defaults.Waveform.BarWidth {
		t.Fatalf("sample config drifted from defaults: %+v %+v", cfg.Encoder, cfg.Waveform)
	}
	if len(cfg.EnabledFormats()) != 3 {
		t.Fatalf("expected all formats enabled in sample, got %v", cfg.EnabledFormats())
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir, cfg.Paths.CacheDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	feedURL := " https://example.com/override.xml "
	header := "EPISODE"
	subtitles := false
	concurrency := 0
	outDir := filepath.Join(t.TempDir(), "renders")
	err := cfg.Apply(config.Overrides{
		FeedURL:           &feedURL,
		HeaderTitleSource: &header,
		ShowSubtitles:     &subtitles,
		Concurrency:       &concurrency,
		OutputDir:         &outDir,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Feed.URL != "https://example.com/override.xml" {
		t.Fatalf("unexpected feed url %q", cfg.Feed.URL)
	}
	if cfg.Render.HeaderTitleSource != "episode" || cfg.Render.ShowSubtitles {
		t.Fatalf("unexpected render overrides %+v", cfg.Render)
	}
	if cfg.Concurrency.Soundbites != 1 {
		t.Fatalf("expected non-positive concurrency to normalize to 1, got %d", cfg.Concurrency.Soundbites)
	}
	if cfg.Paths.OutputDir != outDir {
		t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
	}

	bad := "trace"
	if err := cfg.Apply(config.Overrides{LogLevel: &bad}); err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("expected logging.level error, got %v", err)
	}
}
