package workflow

import (
	"context"
	"log/slog"
	"time"

	"audiogram/internal/assets"
	"audiogram/internal/config"
	"audiogram/internal/encoding"
	"audiogram/internal/feed"
	"audiogram/internal/history"
	"audiogram/internal/logging"
	"audiogram/internal/media/audio"
	"audiogram/internal/pipeline"
)

// FeedLoader fetches and parses a feed.
type FeedLoader interface {
	Fetch(ctx context.Context, url string) (*feed.Feed, error)
}

// Manager coordinates a run.
type Manager struct {
	cfg     *config.Config
	logger  *slog.Logger
	feeds   FeedLoader
	fetcher *assets.Fetcher
	decoder audio.Decoder
	encoder pipeline.Encoder
	history *history.Store

	skipPreflight bool
	now           func() time.Time
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithFeedLoader replaces the HTTP feed reader.
func WithFeedLoader(loader FeedLoader) ManagerOption {
	return func(m *Manager) { m.feeds = loader }
}

// WithDecoder replaces the ffmpeg audio decoder.
func WithDecoder(decoder audio.Decoder) ManagerOption {
	return func(m *Manager) { m.decoder = decoder }
}

// WithEncoder replaces the ffmpeg video encoder.
func WithEncoder(encoder pipeline.Encoder) ManagerOption {
	return func(m *Manager) { m.encoder = encoder }
}

// WithHistory records every render in store. The caller owns the store.
func WithHistory(store *history.Store) ManagerOption {
	return func(m *Manager) { m.history = store }
}

// WithoutPreflight skips the binary and directory checks.
func WithoutPreflight() ManagerOption {
	return func(m *Manager) { m.skipPreflight = true }
}

// NewManager constructs a workflow manager from configuration.
func NewManager(cfg *config.Config, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.feeds == nil {
		m.feeds = feed.NewReader(feedOptions(cfg), logger)
	}
	if m.fetcher == nil {
		m.fetcher = assets.New(assetOptions(cfg), logger)
	}
	if m.decoder == nil {
		m.decoder = audioDecoder(cfg)
	}
	if m.encoder == nil {
		m.encoder = encoding.New(encoderOptions(cfg), logger)
	}
	return m
}

// LoadFeed fetches the configured feed with manual soundbites merged in.
func (m *Manager) LoadFeed(ctx context.Context) (*feed.Feed, error) {
	if err := m.cfg.RequireFeedURL(); err != nil {
		return nil, configurationError("feed", err)
	}
	return m.feeds.Fetch(ctx, m.cfg.Feed.URL)
}
