// Package render composes audiogram video frames.
//
// A Composer is built once per output format. It paints the static parts of
// the frame (background, cover art, header and footer bands) into a base
// image, then for every waveform tick copies the base, draws the bars and
// the active transcript cue, and yields the result. Layout regions scale
// with the format's dimensions, so one code path serves every aspect ratio.
package render
