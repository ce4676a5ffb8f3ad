// Package assets downloads the remote inputs of a run: episode audio, cover
// art, and transcripts.
//
// Files are cached under the configured cache directory keyed by URL, and
// concurrent requests for the same URL share one download. Cover art is
// chosen once per episode with ChooseCover and decoded with DecodeImage,
// which understands PNG, JPEG, GIF, and WebP.
package assets
