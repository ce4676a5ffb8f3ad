package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// ResolveCommand returns the absolute path of command when it can be found,
// falling back to the bare name so callers still get a useful error later.
// An empty command resolves fallback instead.
func ResolveCommand(command, fallback string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		command = fallback
	}
	if strings.ContainsRune(command, filepath.Separator) {
		if info, err := os.Stat(command); err == nil && isExecutable(info) {
			if abs, err := filepath.Abs(command); err == nil {
				return abs
			}
		}
		return command
	}
	if resolved, err := exec.LookPath(command); err == nil {
		return resolved
	}
	return command
}

// FFmpegVersion runs "<binary> -version" and returns the reported version
// string, e.g. "6.1.1-3ubuntu5".
func FFmpegVersion(ctx context.Context, binary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, "-hide_banner", "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", binary, err)
	}
	return parseVersion(out)
}

func parseVersion(out []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if !scanner.Scan() {
		return "", fmt.Errorf("empty version output")
	}
	fields := strings.Fields(scanner.Text())
	for i, field := range fields {
		if field == "version" && i+1 < len(fields) {
			return fields[i+1], nil
		}
	}
	return "", fmt.Errorf("unrecognised version line %q", scanner.Text())
}

// HasEncoder reports whether ffmpeg lists codec among its encoders.
func HasEncoder(ctx context.Context, binary, codec string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, "-hide_banner", "-encoders").Output()
	if err != nil {
		return false, fmt.Errorf("%s -encoders: %w", binary, err)
	}
	return listsEncoder(out, codec), nil
}

// listsEncoder scans "ffmpeg -encoders" output. Codec lines look like
// " V....D libx264   libx264 H.264 ..." after a "------" separator.
func listsEncoder(out []byte, codec string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	body := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !body {
			body = strings.HasPrefix(line, "---")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == codec {
			return true
		}
	}
	return false
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
