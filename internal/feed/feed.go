package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	neturl "net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"audiogram/internal/logging"
	"audiogram/internal/podcast"
	"audiogram/internal/services"
)

const stage = "feed"

// Feed is a parsed podcast feed. Episodes are ordered oldest first.
type Feed struct {
	Podcast  podcast.Podcast
	Episodes []podcast.Episode
}

// Episode returns the episode with the given number.
func (f *Feed) Episode(number int) (podcast.Episode, bool) {
	if f == nil || number < 1 || number > len(f.Episodes) {
		return podcast.Episode{}, false
	}
	return f.Episodes[number-1], true
}

// Latest returns the newest episode number, or 0 for an empty feed.
func (f *Feed) Latest() int {
	if f == nil {
		return 0
	}
	return len(f.Episodes)
}

// Options configure a Reader.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Manual    Manual
}

// Reader fetches and parses feeds.
type Reader struct {
	parser *gofeed.Parser
	manual Manual
	logger *slog.Logger
}

// NewReader constructs a Reader.
func NewReader(opts Options, logger *slog.Logger) *Reader {
	parser := gofeed.NewParser()
	parser.UserAgent = strings.TrimSpace(opts.UserAgent)
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	parser.Client = &http.Client{Timeout: timeout}
	return &Reader{
		parser: parser,
		manual: opts.Manual,
		logger: logging.NewComponentLogger(logger, "feed"),
	}
}

// Fetch downloads and parses the feed at url.
func (r *Reader) Fetch(ctx context.Context, url string) (*Feed, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, services.Wrap(services.ErrConfiguration, stage, "fetch", "feed url is empty", nil)
	}
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("fetching feed", logging.String("url", url))

	raw, err := r.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			marker := services.ErrExternalTool
			if httpErr.StatusCode == http.StatusNotFound {
				marker = services.ErrNotFound
			}
			return nil, services.Wrap(marker, stage, "fetch", url, err)
		}
		var urlErr *neturl.Error
		if errors.As(err, &urlErr) {
			return nil, services.Wrap(services.ErrTransient, stage, "fetch", url, err)
		}
		return nil, services.Wrap(services.ErrValidation, stage, "parse", url, err)
	}
	feed := r.translate(raw)
	logger.Info("feed parsed",
		logging.String("podcast", feed.Podcast.Title),
		logging.Int("episodes", len(feed.Episodes)),
	)
	return feed, nil
}

// Parse reads a feed document from data.
func (r *Reader) Parse(data io.Reader) (*Feed, error) {
	raw, err := r.parser.Parse(data)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stage, "parse", "", err)
	}
	return r.translate(raw), nil
}

func (r *Reader) translate(raw *gofeed.Feed) *Feed {
	out := &Feed{Podcast: podcastInfo(raw)}
	total := len(raw.Items)
	out.Episodes = make([]podcast.Episode, 0, total)
	// Feeds list newest first; numbering counts from the oldest item.
	for idx, item := range slices.Backward(raw.Items) {
		number := total - idx
		episode := episodeInfo(item, number)
		manual := r.manual.For(episode.GUID, number)
		episode.Soundbites = append(manual, episode.Soundbites...)
		for i := range episode.Soundbites {
			episode.Soundbites[i].Number = i + 1
		}
		out.Episodes = append(out.Episodes, episode)
	}
	return out
}

func podcastInfo(raw *gofeed.Feed) podcast.Podcast {
	info := podcast.Podcast{
		Title: strings.TrimSpace(raw.Title),
		Link:  strings.TrimSpace(raw.Link),
	}
	if raw.Image != nil {
		info.ImageURL = strings.TrimSpace(raw.Image.URL)
	}
	if raw.ITunesExt != nil {
		if info.ImageURL == "" {
			info.ImageURL = strings.TrimSpace(raw.ITunesExt.Image)
		}
		info.Keywords = SplitKeywords(raw.ITunesExt.Keywords)
	}
	return info
}

func episodeInfo(item *gofeed.Item, number int) podcast.Episode {
	episode := podcast.Episode{
		Number:      number,
		GUID:        strings.TrimSpace(item.GUID),
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		Description: PlainText(item.Description),
	}
	if episode.GUID == "" {
		episode.GUID = episode.Link
	}
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.TrimSpace(enclosure.URL) != "" {
			episode.AudioURL = strings.TrimSpace(enclosure.URL)
			break
		}
	}
	if item.ITunesExt != nil {
		episode.Duration = ParseDuration(item.ITunesExt.Duration)
		episode.ImageURL = strings.TrimSpace(item.ITunesExt.Image)
		episode.Keywords = SplitKeywords(item.ITunesExt.Keywords)
	}
	if episode.ImageURL == "" {
		episode.ImageURL = firstAttr(item.Extensions, "media", "thumbnail", "url")
	}
	if episode.ImageURL == "" {
		episode.ImageURL = firstAttr(item.Extensions, "media", "content", "url")
	}
	episode.TranscriptURL, episode.TranscriptType = pickTranscript(item.Extensions)
	episode.Soundbites = soundbites(item.Extensions)
	return episode
}

func soundbites(exts ext.Extensions) []podcast.Soundbite {
	var out []podcast.Soundbite
	for _, entry := range extensionList(exts, "podcast", "soundbite") {
		sb := podcast.Soundbite{
			Start: parseSeconds(entry.Attrs["startTime"]),
			Title: strings.TrimSpace(entry.Value),
		}
		if raw, ok := entry.Attrs["duration"]; ok {
			sb.Duration = podcast.Seconds(parseSeconds(raw))
		}
		if sb.Title == "" {
			sb.Title = podcast.DefaultSoundbiteTitle
		}
		out = append(out, sb)
	}
	return out
}

// transcriptPreference orders the transcript types the aligner can parse.
var transcriptPreference = []string{
	"application/x-subrip",
	"application/srt",
	"text/srt",
	"text/vtt",
	"application/json",
}

func pickTranscript(exts ext.Extensions) (string, string) {
	entries := extensionList(exts, "podcast", "transcript")
	best, bestRank := -1, len(transcriptPreference)+1
	for i, entry := range entries {
		if strings.TrimSpace(entry.Attrs["url"]) == "" {
			continue
		}
		rank := slices.Index(transcriptPreference, strings.ToLower(strings.TrimSpace(entry.Attrs["type"])))
		if rank < 0 {
			rank = len(transcriptPreference)
		}
		if rank < bestRank {
			best, bestRank = i, rank
		}
	}
	if best < 0 {
		return "", ""
	}
	return strings.TrimSpace(entries[best].Attrs["url"]), strings.TrimSpace(entries[best].Attrs["type"])
}

func extensionList(exts ext.Extensions, prefix, name string) []ext.Extension {
	if exts == nil {
		return nil
	}
	return exts[prefix][name]
}

func firstAttr(exts ext.Extensions, prefix, name, attr string) string {
	for _, entry := range extensionList(exts, prefix, name) {
		if v := strings.TrimSpace(entry.Attrs[attr]); v != "" {
			return v
		}
	}
	return ""
}

// SplitKeywords splits a comma separated keyword list.
func SplitKeywords(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseDuration reads itunes:duration values: plain seconds, MM:SS, or
// HH:MM:SS. Unparseable values yield 0.
func ParseDuration(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0
	}
	total := 0.0
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		total = total*60 + v
	}
	return total
}

// parseSeconds returns NaN for missing or malformed values so the resolver
// rejects the soundbite instead of silently starting at zero.
func parseSeconds(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// String summarises a feed for log lines.
func (f *Feed) String() string {
	if f == nil {
		return "<nil feed>"
	}
	return fmt.Sprintf("%s (%d episodes)", f.Podcast.Title, len(f.Episodes))
}
