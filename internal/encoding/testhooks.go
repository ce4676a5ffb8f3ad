package encoding

import (
	"context"

	"audiogram/internal/media/ffprobe"
)

var encodeProbe = ffprobe.Inspect

// SetProbeForTests swaps the ffprobe invocation used for output verification.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	previous := encodeProbe
	if fn == nil {
		encodeProbe = ffprobe.Inspect
	} else {
		encodeProbe = fn
	}
	return func() {
		encodeProbe = previous
	}
}
