package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"audiogram/internal/config"
	"audiogram/internal/deps"
	"audiogram/internal/feed"
	"audiogram/internal/services"
)

// CheckFeed fetches and parses the configured feed. It uses a single attempt
// bounded by the feed timeout.
func CheckFeed(ctx context.Context, cfg *config.Config) Result {
	const name = "Feed"

	timeout := time.Duration(cfg.Feed.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reader := feed.NewReader(feed.Options{UserAgent: cfg.Feed.UserAgent, Timeout: timeout}, nil)
	parsed, err := reader.Fetch(checkCtx, cfg.Feed.URL)
	if err != nil {
		return Result{Name: name, Detail: summarizeFeedError(err)}
	}
	withSoundbites := 0
	for _, ep := range parsed.Episodes {
		if len(ep.Soundbites) > 0 {
			withSoundbites++
		}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%q (%d episodes, %d with soundbites)", parsed.Podcast.Title, len(parsed.Episodes), withSoundbites),
	}
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable. With create set a missing directory is created first.
func CheckDirectoryAccess(name, path string, create bool) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil && os.IsNotExist(err) && create {
		if mkErr := os.MkdirAll(path, 0o755); mkErr != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, mkErr)}
		}
		info, err = os.Stat(path)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
}

// CheckEncoders confirms ffmpeg ships the configured video and audio codecs
// plus libmp3lame when MP3 export is enabled.
func CheckEncoders(ctx context.Context, cfg *config.Config) []Result {
	binary := deps.ResolveCommand(cfg.FFmpegBinary(), "ffmpeg")
	codecs := []string{cfg.Encoder.VideoCodec, cfg.Encoder.AudioCodec}
	if cfg.Render.ExportAudio {
		codecs = append(codecs, "libmp3lame")
	}

	version, err := deps.FFmpegVersion(ctx, binary)
	if err != nil {
		return []Result{{Name: "FFmpeg encoders", Detail: err.Error()}}
	}
	var results []Result
	for _, codec := range codecs {
		if codec == "" {
			continue
		}
		name := "Encoder " + codec
		ok, err := deps.HasEncoder(ctx, binary, codec)
		switch {
		case err != nil:
			results = append(results, Result{Name: name, Detail: err.Error()})
		case !ok:
			results = append(results, Result{Name: name, Detail: fmt.Sprintf("not available in ffmpeg %s", version)})
		default:
			results = append(results, Result{Name: name, Passed: true, Detail: "ffmpeg " + version})
		}
	}
	return results
}

func summarizeFeedError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out (feed unresponsive)"
	case errors.Is(err, services.ErrNotFound):
		return "feed not found (check the URL)"
	case errors.Is(err, services.ErrValidation):
		return "response is not a valid RSS or Atom feed"
	case errors.Is(err, services.ErrTransient):
		return "feed unreachable: " + err.Error()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out (feed unreachable)"
	}
	return err.Error()
}
