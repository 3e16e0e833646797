package mediatool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"reelsmith/internal/services"
)

// MediaTool is the set of transcoder operations the assembly and mixing
// stages rely on.
type MediaTool interface {
	Normalize(ctx context.Context, videoPath, audioPath, outPath string) error
	Concatenate(ctx context.Context, listPath, outPath string) error
	Mix(ctx context.Context, req MixRequest) error
}

// MixRequest describes a background music mix.
type MixRequest struct {
	MusicPath string
	BasePath  string
	OutPath   string
	// Gain is applied to the music track; the voice stays at unity.
	Gain float64
	// LeadIn skips the first seconds of the music track.
	LeadIn float64
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Option configures the FFmpeg tool.
type Option func(*FFmpeg)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(f *FFmpeg) {
		if exec != nil {
			f.exec = exec
		}
	}
}

// Settings carries the output geometry and codecs.
type Settings struct {
	Binary     string
	Width      int
	Height     int
	VideoCodec string
	AudioCodec string
	Timeout    time.Duration
}

// FFmpeg implements MediaTool with the ffmpeg CLI.
type FFmpeg struct {
	settings Settings
	exec     Executor
}

// New constructs an FFmpeg tool. Zero settings fall back to 1080x1920
// libx264/aac.
func New(settings Settings, opts ...Option) *FFmpeg {
	if strings.TrimSpace(settings.Binary) == "" {
		settings.Binary = "ffmpeg"
	}
	if settings.Width <= 0 {
		settings.Width = 1080
	}
	if settings.Height <= 0 {
		settings.Height = 1920
	}
	if settings.VideoCodec == "" {
		settings.VideoCodec = "libx264"
	}
	if settings.AudioCodec == "" {
		settings.AudioCodec = "aac"
	}
	tool := &FFmpeg{settings: settings, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(tool)
	}
	return tool
}

// Normalize loops videoPath to cover audioPath, scales and crops it to the
// output frame, replaces its audio with the narration, and writes an MPEG-TS
// unit to outPath.
func (f *FFmpeg) Normalize(ctx context.Context, videoPath, audioPath, outPath string) error {
	return f.run(ctx, "normalize", NormalizeArgs(f.settings, videoPath, audioPath, outPath))
}

// Concatenate joins the units listed in listPath without re-encoding.
func (f *FFmpeg) Concatenate(ctx context.Context, listPath, outPath string) error {
	return f.run(ctx, "concatenate", ConcatArgs(listPath, outPath))
}

// Mix lays the looped music track under the base track's voice.
func (f *FFmpeg) Mix(ctx context.Context, req MixRequest) error {
	return f.run(ctx, "mix", MixArgs(f.settings, req))
}

func (f *FFmpeg) run(ctx context.Context, op string, args []string) error {
	if f.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.settings.Timeout)
		defer cancel()
	}
	if err := f.exec.Run(ctx, f.settings.Binary, args); err != nil {
		marker := services.ErrExternalTool
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, "ffmpeg", op, "", err)
	}
	return nil
}

// NormalizeArgs builds the ffmpeg arguments for a normalize invocation.
func NormalizeArgs(s Settings, videoPath, audioPath, outPath string) []string {
	w := strconv.Itoa(s.Width)
	h := strconv.Itoa(s.Height)
	filter := fmt.Sprintf("scale=%s:%s:force_original_aspect_ratio=increase,crop=%s:%s,setsar=1", w, h, w, h)
	return []string{
		"-y",
		"-stream_loop", "-1",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-vf", filter,
		"-c:v", s.VideoCodec,
		"-c:a", s.AudioCodec,
		"-f", "mpegts",
		"-shortest",
		outPath,
	}
}

// ConcatArgs builds the ffmpeg arguments for a concat-demuxer invocation.
func ConcatArgs(listPath, outPath string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-bsf:a", "aac_adtstoasc",
		outPath,
	}
}

// MixArgs builds the ffmpeg arguments for the background music mix. The
// music input is looped and trimmed to the base track by duration=shortest.
func MixArgs(s Settings, req MixRequest) []string {
	filter := fmt.Sprintf(
		"[0:a]volume=%s[music];[1:a]volume=1.0[voice];[music][voice]amix=inputs=2:duration=shortest[audio_out]",
		strconv.FormatFloat(req.Gain, 'f', -1, 64),
	)
	args := []string{"-y"}
	if req.LeadIn > 0 {
		args = append(args, "-ss", strconv.FormatFloat(req.LeadIn, 'f', -1, 64))
	}
	args = append(args,
		"-stream_loop", "-1",
		"-i", req.MusicPath,
		"-i", req.BasePath,
		"-filter_complex", filter,
		"-map", "1:v:0",
		"-map", "[audio_out]",
		"-c:v", "copy",
		"-c:a", s.AudioCodec,
		"-shortest",
		req.OutPath,
	)
	return args
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if tail := lastLines(stderr.String(), 5); tail != "" {
			return fmt.Errorf("%w: %s", err, tail)
		}
		return err
	}
	return nil
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, " | "))
}
