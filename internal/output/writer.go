package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"audiogram/internal/logging"
	"audiogram/internal/services"
	"audiogram/internal/transcript"
)

// LockFileName is created in the output directory while a run writes to it.
const LockFileName = ".audiogram.lock"

// ErrLocked reports that another run holds the output directory.
var ErrLocked = errors.New("output directory is in use by another audiogram run")

// Writer places files in the output directory.
type Writer struct {
	dir    string
	labels Labels
	logger *slog.Logger
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string, labels Labels, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, labels: labels, logger: logging.NewComponentLogger(logger, "output")}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Path joins name onto the output directory.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Lock takes an exclusive, non-blocking lock on the output directory. The
// returned function releases it.
func (w *Writer) Lock() (func(), error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "output", "lock", "create output directory", err)
	}
	lock := flock.New(filepath.Join(w.dir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "output", "lock", "acquire lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "output", "lock", w.dir, ErrLocked)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}, nil
}

// WriteCaption writes the caption text file and returns its path.
func (w *Writer) WriteCaption(ctx context.Context, data CaptionData, soundbite int) (string, error) {
	path := w.Path(CaptionName(data.EpisodeNumber, soundbite))
	err := w.writeFile(path, func(f io.Writer) error {
		_, err := io.WriteString(f, data.Text(w.labels))
		return err
	})
	if err != nil {
		return "", err
	}
	logging.WithContext(ctx, w.logger).Info("caption written", logging.String("path", path))
	return path, nil
}

// WriteSRT writes cues as an SRT file and returns its path.
func (w *Writer) WriteSRT(ctx context.Context, episode, soundbite int, cues iter.Seq[transcript.AlignedCue]) (string, error) {
	path := w.Path(SRTName(episode, soundbite))
	if err := w.writeFile(path, func(f io.Writer) error { return transcript.WriteSRT(f, cues) }); err != nil {
		return "", err
	}
	logging.WithContext(ctx, w.logger).Info("subtitles written", logging.String("path", path))
	return path, nil
}

func (w *Writer) writeFile(path string, fill func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "output", "write", "create output directory", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "output", "write", path, err)
	}
	defer os.Remove(tmp.Name())
	if err := fill(tmp); err != nil {
		tmp.Close()
		return services.Wrap(services.ErrValidation, "output", "write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return services.Wrap(services.ErrConfiguration, "output", "write", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "output", "write", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return services.Wrap(services.ErrConfiguration, "output", "write", fmt.Sprintf("rename into %s", path), err)
	}
	return nil
}
