package encoding

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"audiogram/internal/services"
)

// partialPath names the hidden file ffmpeg writes before the final rename.
// The extension is kept so ffmpeg and ffprobe still recognise the container.
func partialPath(target string) string {
	dir, base := filepath.Split(target)
	return filepath.Join(dir, "."+base+".partial"+filepath.Ext(base))
}

func finalizeOutput(partial, target string) (string, error) {
	info, err := os.Stat(partial)
	if err != nil {
		return "", services.Wrap(services.ErrEncode, stage, "finalize", "encoded output missing", err)
	}
	if info.Size() == 0 {
		return "", services.Wrap(services.ErrEncode, stage, "finalize", fmt.Sprintf("encoded output %q is empty", partial), nil)
	}
	if strings.EqualFold(filepath.Clean(partial), filepath.Clean(target)) {
		return target, nil
	}
	if err := os.Rename(partial, target); err != nil {
		return "", services.Wrap(services.ErrEncode, stage, "finalize", "move encoded output into place", err)
	}
	return target, nil
}
