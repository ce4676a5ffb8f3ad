// Package encoding muxes composed frames and an audio excerpt into an MP4.
//
// ffmpeg reads raw RGBA frames on stdin and the excerpt as f32le PCM from a
// temporary file. Output is written to a hidden partial file, optionally
// probed to confirm its duration, and renamed into place. Every failure is
// tagged services.ErrEncode so callers can fail only the affected format.
package encoding
