// Package audio decodes episode audio into interleaved float32 PCM and cuts
// sample-exact excerpts from it.
//
// A Track is an in-memory buffer. A Source is anything that can produce the
// Track for a time range: a Track itself, or a FileSource that asks ffmpeg to
// decode only the requested window so hour-long episodes never sit in memory.
package audio
