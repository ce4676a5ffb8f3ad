package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteScript writes an executable shell script named name into dir and
// returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return target
}

// FakeFFmpeg writes an ffmpeg stand-in that records its arguments to
// ffmpeg.args, drains stdin, and writes a placeholder to its last argument.
func FakeFFmpeg(t testing.TB, dir string) string {
	t.Helper()

	body := `argsfile="$(dirname "$0")/ffmpeg.args"
: > "$argsfile"
for arg in "$@"; do
  printf '%s\n' "$arg" >> "$argsfile"
  last="$arg"
done
cat > /dev/null
printf 'fake media' > "$last"
`
	return WriteScript(t, dir, "ffmpeg", body)
}

// FailingFFmpeg writes an ffmpeg stand-in that prints message to stderr and
// exits non-zero.
func FailingFFmpeg(t testing.TB, dir, message string) string {
	t.Helper()

	body := "cat > /dev/null\necho '" + message + "' >&2\nexit 1\n"
	return WriteScript(t, dir, "ffmpeg", body)
}
