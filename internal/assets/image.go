package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"

	"audiogram/internal/logging"
	"audiogram/internal/services"
)

// CoverSource records where a cover image came from.
type CoverSource string

const (
	CoverNone    CoverSource = "none"
	CoverPodcast CoverSource = "podcast"
	CoverEpisode CoverSource = "episode"
)

// CoverArt is the cover chosen for an episode before composition starts.
type CoverArt struct {
	Source CoverSource
	URL    string
	Image  image.Image
}

// ChooseCover picks the episode artwork when preferEpisode is set and
// available, otherwise the podcast artwork.
func ChooseCover(preferEpisode bool, episodeURL, podcastURL string) CoverArt {
	if preferEpisode && episodeURL != "" {
		return CoverArt{Source: CoverEpisode, URL: episodeURL}
	}
	if podcastURL != "" {
		return CoverArt{Source: CoverPodcast, URL: podcastURL}
	}
	if episodeURL != "" {
		return CoverArt{Source: CoverEpisode, URL: episodeURL}
	}
	return CoverArt{Source: CoverNone}
}

// DecodeImage decodes PNG, JPEG, GIF, or WebP data.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", services.Wrap(services.ErrValidation, stage, "decode image", "", err)
	}
	return img, format, nil
}

// LoadCover downloads and decodes the chosen cover. A CoverNone choice is
// returned unchanged.
func (f *Fetcher) LoadCover(ctx context.Context, cover CoverArt) (CoverArt, error) {
	if cover.Source == CoverNone || cover.URL == "" {
		return cover, nil
	}
	res, err := f.Get(ctx, cover.URL)
	if err != nil {
		return cover, err
	}
	img, format, err := DecodeImage(bytes.NewReader(res.Data))
	if err != nil {
		return cover, fmt.Errorf("%s cover %s: %w", cover.Source, cover.URL, err)
	}
	f.logger.Debug("cover decoded",
		logging.String("source", string(cover.Source)),
		logging.String("image_format", format),
		logging.Int("width", img.Bounds().Dx()),
		logging.Int("height", img.Bounds().Dy()),
	)
	cover.Image = img
	return cover, nil
}
