package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/samber/lo"
)

// Requirement is an external binary the pipeline invokes.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement plus the result of looking it up on PATH.
type Status struct {
	Requirement
	Available bool
	// Path is the resolved binary location when Available.
	Path   string
	Detail string
}

// Requirements lists ffmpeg, ffprobe, and edge-tts using the configured
// command names, falling back to the bare binary names.
func Requirements(ffmpeg, ffprobe, edgeTTS string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: fallback(ffmpeg, "ffmpeg"), Description: "Normalizes, concatenates, and mixes video"},
		{Name: "FFprobe", Command: fallback(ffprobe, "ffprobe"), Description: "Reads narration durations"},
		{Name: "edge-tts", Command: fallback(edgeTTS, "edge-tts"), Description: "Synthesizes narration"},
	}
}

// CheckBinaries resolves every requirement with exec.LookPath.
func CheckBinaries(requirements []Requirement) []Status {
	return lo.Map(requirements, func(req Requirement, _ int) Status {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		status := Status{Requirement: req}
		if req.Command == "" {
			status.Detail = "command not configured"
			return status
		}
		path, err := exec.LookPath(req.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
			return status
		}
		status.Available = true
		status.Path = path
		return status
	})
}

// Missing returns the required entries that are unavailable.
func Missing(statuses []Status) []Status {
	return lo.Filter(statuses, func(s Status, _ int) bool {
		return !s.Available && !s.Optional
	})
}

func fallback(value, def string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return def
}
