package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external binary audiogram relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries a render needs. ffmpeg decodes episode
// audio and encodes videos; ffprobe inspects the results.
func Requirements(ffmpeg, ffprobe string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ResolveCommand(ffmpeg, "ffmpeg"),
			Description: "Required for audio decoding and video encoding",
		},
		{
			Name:        "FFprobe",
			Command:     ResolveCommand(ffprobe, "ffprobe"),
			Description: "Required for media inspection and duration checks",
		},
	}
}

// CheckBinaries reports whether each requirement resolves on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = check(req)
	}
	return results
}

func check(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	switch path, err := exec.LookPath(status.Command); {
	case status.Command == "":
		status.Detail = "command not configured"
	case err != nil:
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
	default:
		status.Available = true
		status.Detail = path
	}
	return status
}

// Missing returns the required statuses that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}
