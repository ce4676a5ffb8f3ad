// Package ffprobe wraps ffprobe's JSON output.
//
// Inspect probes source audio for its sample layout before decoding and
// probes encoded videos to verify their duration. Result helpers parse the
// string-typed numeric fields ffprobe emits.
package ffprobe
