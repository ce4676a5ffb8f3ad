package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"audiogram/internal/logging"
	"audiogram/internal/services"
)

const (
	stage = "assets"

	// maxInlineBytes caps resources read fully into memory (transcripts).
	maxInlineBytes = 32 << 20
)

// Options configure a Fetcher.
type Options struct {
	CacheDir  string
	UserAgent string
	// Timeout bounds in-memory fetches. File downloads are bounded only by
	// the caller's context.
	Timeout time.Duration
	Client  *http.Client
}

// Fetcher downloads and caches remote files.
type Fetcher struct {
	client    *http.Client
	userAgent string
	cacheDir  string
	timeout   time.Duration
	logger    *slog.Logger
	group     singleflight.Group
}

// Resource is an in-memory download.
type Resource struct {
	URL         string
	ContentType string
	Data        []byte
}

// New constructs a Fetcher.
func New(opts Options, logger *slog.Logger) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	return &Fetcher{
		client:    client,
		userAgent: strings.TrimSpace(opts.UserAgent),
		cacheDir:  opts.CacheDir,
		timeout:   opts.Timeout,
		logger:    logging.NewComponentLogger(logger, "assets"),
	}
}

// Fetch downloads rawURL into the cache directory and returns the local
// path. Cached files are reused; local paths and file:// URLs are returned
// as-is after an existence check.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", services.Wrap(services.ErrValidation, stage, "fetch", "empty url", nil)
	}
	if local, ok := localPath(rawURL); ok {
		if _, err := os.Stat(local); err != nil {
			return "", services.Wrap(services.ErrNotFound, stage, "fetch", local, err)
		}
		return local, nil
	}
	if f.cacheDir == "" {
		return "", services.Wrap(services.ErrConfiguration, stage, "fetch", "cache directory not configured", nil)
	}

	target := filepath.Join(f.cacheDir, CacheKey(rawURL))
	result, err, shared := f.group.Do(target, func() (any, error) {
		if info, err := os.Stat(target); err == nil && info.Size() > 0 {
			return target, nil
		}
		return target, f.download(ctx, rawURL, target)
	})
	if err != nil {
		return "", err
	}
	if shared {
		logging.WithContext(ctx, f.logger).Debug("download shared with concurrent request", logging.String("url", rawURL))
	}
	return result.(string), nil
}

// Get reads rawURL fully into memory.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (Resource, error) {
	rawURL = strings.TrimSpace(rawURL)
	if local, ok := localPath(rawURL); ok {
		data, err := os.ReadFile(local)
		if err != nil {
			return Resource{}, services.Wrap(services.ErrNotFound, stage, "get", local, err)
		}
		return Resource{URL: rawURL, ContentType: mime.TypeByExtension(filepath.Ext(local)), Data: data}, nil
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	resp, err := f.do(ctx, rawURL)
	if err != nil {
		return Resource{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInlineBytes+1))
	if err != nil {
		return Resource{}, services.Wrap(services.ErrTransient, stage, "get", rawURL, err)
	}
	if len(data) > maxInlineBytes {
		return Resource{}, services.Wrap(services.ErrValidation, stage, "get", fmt.Sprintf("%s exceeds %d bytes", rawURL, maxInlineBytes), nil)
	}
	return Resource{URL: rawURL, ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, target string) error {
	started := time.Now()
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, stage, "download", "create cache directory", err)
	}
	resp, err := f.do(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stage, "download", "create temp file", err)
	}
	defer os.Remove(tmp.Name())

	written, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrTransient, stage, "download", rawURL, copyErr)
	}
	if closeErr != nil {
		return services.Wrap(services.ErrTransient, stage, "download", "close temp file", closeErr)
	}
	if written == 0 {
		return services.Wrap(services.ErrValidation, stage, "download", rawURL+" returned an empty body", nil)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return services.Wrap(services.ErrTransient, stage, "download", "move download into cache", err)
	}
	logging.WithContext(ctx, f.logger).Info("asset downloaded",
		logging.String("url", rawURL),
		logging.Int64("bytes", written),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (f *Fetcher) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stage, "request", rawURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrTransient, stage, "request", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		marker := services.ErrExternalTool
		switch {
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			marker = services.ErrNotFound
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			marker = services.ErrTransient
		}
		return nil, services.Wrap(marker, stage, "request", fmt.Sprintf("%s returned %s", rawURL, resp.Status), nil)
	}
	return resp, nil
}

// CacheKey maps a URL to a stable file name that keeps the URL's extension.
func CacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	name := hex.EncodeToString(sum[:12])
	ext := ""
	if parsed, err := url.Parse(rawURL); err == nil {
		ext = strings.ToLower(path.Ext(parsed.Path))
	}
	if len(ext) > 6 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return name + ext
}

func localPath(raw string) (string, bool) {
	if strings.HasPrefix(raw, "file://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return "", false
		}
		return parsed.Path, true
	}
	if strings.Contains(raw, "://") {
		return "", false
	}
	return raw, true
}
