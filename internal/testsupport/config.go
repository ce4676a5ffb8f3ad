package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"audiogram/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Rendering defaults are shrunk so frame loops stay fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Feed.URL = "https://example.com/feed.xml"
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.HistoryPath = filepath.Join(base, "logs", "history.db")
	cfgVal.Render.FPS = 4
	cfgVal.Render.VerifyDuration = false
	cfgVal.Encoder.SampleRate = 8000
	cfgVal.Waveform.BarWidth = 4
	cfgVal.Waveform.BarSpacing = 2
	cfgVal.Formats = map[string]config.Format{
		"vertical":   {Width: 72, Height: 128},
		"square":     {Width: 96, Height: 96},
		"horizontal": {Width: 128, Height: 72},
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFeedURL overrides the feed URL on the test config.
func WithFeedURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Feed.URL = url
	}
}

// WithFormats keeps only the named formats enabled.
func WithFormats(names ...string) ConfigOption {
	return func(b *configBuilder) {
		keep := make(map[string]bool, len(names))
		for _, name := range names {
			keep[name] = true
		}
		for name, format := range b.cfg.Formats {
			enabled := keep[name]
			format.Enabled = &enabled
			b.cfg.Formats[name] = format
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WithFakeFFmpeg points the encoder at a script that drains stdin and writes
// a placeholder file at its final argument.
func WithFakeFFmpeg() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.FFmpeg = FakeFFmpeg(b.t, filepath.Join(b.baseDir, "bin"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
