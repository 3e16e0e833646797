package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")

	// Domain markers. Typed errors below unwrap to one of these so callers
	// can classify with errors.Is without knowing the concrete type.
	ErrAssetRead            = errors.New("asset read error")
	ErrSelectionUnavailable = errors.New("selection unavailable")
	ErrAssembly             = errors.New("assembly error")
	ErrInsufficientAssets   = errors.New("insufficient assets")
	ErrMusicAsset           = errors.New("music asset error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// AssetReadError reports a narration file that is missing, empty, or whose
// duration cannot be read.
type AssetReadError struct {
	Path string
	Err  error
}

func (e *AssetReadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("read asset %s", e.Path)
	}
	return fmt.Sprintf("read asset %s: %v", e.Path, e.Err)
}

func (e *AssetReadError) Unwrap() []error { return withMarker(ErrAssetRead, e.Err) }

// AssemblyError reports a failed normalize or concatenate invocation.
// Segment is -1 for failures not tied to a single segment.
type AssemblyError struct {
	Op      string
	Segment int
	Err     error
}

func (e *AssemblyError) Error() string {
	if e.Segment >= 0 {
		return fmt.Sprintf("assembly %s (segment %02d): %v", e.Op, e.Segment, e.Err)
	}
	return fmt.Sprintf("assembly %s: %v", e.Op, e.Err)
}

func (e *AssemblyError) Unwrap() []error { return withMarker(ErrAssembly, e.Err) }

// InsufficientAssetsError reports that no segment has both narration and
// footage available.
type InsufficientAssetsError struct {
	AudioCount int
	VideoCount int
	Paired     int
}

func (e *InsufficientAssetsError) Error() string {
	return fmt.Sprintf("insufficient assets: %d audio, %d video, %d paired", e.AudioCount, e.VideoCount, e.Paired)
}

func (e *InsufficientAssetsError) Unwrap() error { return ErrInsufficientAssets }

// MusicAssetError reports an empty track library, a missing track file, or a
// failed mix.
type MusicAssetError struct {
	Track  string
	Reason string
	Err    error
}

func (e *MusicAssetError) Error() string {
	var b strings.Builder
	b.WriteString("music")
	if e.Track != "" {
		b.WriteString(" ")
		b.WriteString(e.Track)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MusicAssetError) Unwrap() []error { return withMarker(ErrMusicAsset, e.Err) }

func withMarker(marker, cause error) []error {
	if cause == nil {
		return []error{marker}
	}
	return []error{marker, cause}
}

// ErrorDetails summarizes an error for logs and notifications.
type ErrorDetails struct {
	Kind    string
	Hint    string
	Message string
}

// Details classifies err into a short kind and an operator hint.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Message: err.Error()}
	switch {
	case errors.Is(err, ErrInsufficientAssets):
		details.Kind = "insufficient_assets"
		details.Hint = "no segment had both narration and footage; check edge-tts and Pexels logs"
	case errors.Is(err, ErrAssembly):
		details.Kind = "assembly"
		details.Hint = "inspect ffmpeg output; verify the footage downloads are playable"
	case errors.Is(err, ErrMusicAsset):
		details.Kind = "music"
		details.Hint = "check music.dir and music.tracks (or library.yaml)"
	case errors.Is(err, ErrAssetRead):
		details.Kind = "asset_read"
		details.Hint = "verify ffprobe is installed and the narration file is valid"
	case errors.Is(err, ErrSelectionUnavailable):
		details.Kind = "selection"
		details.Hint = "check the Pexels API key and search quota"
	case errors.Is(err, ErrConfiguration):
		details.Kind = "configuration"
		details.Hint = "run 'reelsmith status' and review the config file"
	case errors.Is(err, ErrValidation):
		details.Kind = "validation"
		details.Hint = "the generated script was rejected; regenerate by deleting script.json"
	case errors.Is(err, ErrTimeout):
		details.Kind = "timeout"
		details.Hint = "raise workflow.process_timeout_seconds or workflow.http_timeout_seconds"
	case errors.Is(err, ErrExternalTool):
		details.Kind = "external_tool"
		details.Hint = "inspect the tool output in the log"
	default:
		details.Kind = "transient"
		details.Hint = "the topic was requeued and will be retried in the next batch"
	}
	return details
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
