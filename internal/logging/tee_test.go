package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := TeeHandler(nil, inner, nil); h != inner {
		t.Fatal("expected the single non-nil handler to be returned unwrapped")
	}
}

func TestTeeHandlerRoutesByLevel(t *testing.T) {
	var consoleBuf, fileBuf bytes.Buffer
	console := slog.NewJSONHandler(&consoleBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	file := slog.NewJSONHandler(&fileBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	h := TeeHandler(console, file)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug enabled because the file handler accepts it")
	}
	slog.New(h).Debug("frame timing", slog.Int("frames", 240))

	if consoleBuf.Len() != 0 {
		t.Fatalf("console handler should not receive debug records: %s", consoleBuf.String())
	}
	if !bytes.Contains(fileBuf.Bytes(), []byte(`"frames":240`)) {
		t.Fatalf("expected debug record in file handler, got %s", fileBuf.String())
	}
}

func TestTeeHandlerPropagatesAttrsAndGroups(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := TeeHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))
	logger := slog.New(h).With(slog.String(FieldFormat, "square")).WithGroup("render")
	logger.Info("encoded", slog.Int("width", 1080))

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		if !bytes.Contains(buf.Bytes(), []byte(`"format":"square"`)) {
			t.Fatalf("handler %d missing attribute: %s", i, buf.String())
		}
		if !bytes.Contains(buf.Bytes(), []byte(`"render":{"width":1080}`)) {
			t.Fatalf("handler %d missing group: %s", i, buf.String())
		}
	}
}

func TestFormatValueQuotesOnlyWhenNeeded(t *testing.T) {
	cases := []struct {
		value slog.Value
		want  string
	}{
		{slog.StringValue("vertical"), "vertical"},
		{slog.StringValue("two words"), `"two words"`},
		{slog.StringValue(""), `""`},
		{slog.Float64Value(2.5), "2.5"},
		{slog.BoolValue(true), "true"},
	}
	for _, tc := range cases {
		if got := formatValue(tc.value, true); got != tc.want {
			t.Fatalf("formatValue(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
	if got := formatValue(slog.StringValue("two words"), false); got != "two words" {
		t.Fatalf("unquoted formatting = %q", got)
	}
}
