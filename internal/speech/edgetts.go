package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"reelsmith/internal/services"
)

// Synthesizer renders text to an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Voice holds the edge-tts voice parameters.
type Voice struct {
	Name   string
	Rate   string
	Volume string
	Pitch  string
}

// Option configures the EdgeTTS synthesizer.
type Option func(*EdgeTTS)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(e *EdgeTTS) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// WithTimeout bounds each synthesis invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(e *EdgeTTS) {
		e.timeout = timeout
	}
}

// EdgeTTS implements Synthesizer with the edge-tts CLI.
type EdgeTTS struct {
	binary  string
	voice   Voice
	timeout time.Duration
	exec    Executor
}

// NewEdgeTTS constructs a synthesizer for binary (default "edge-tts").
func NewEdgeTTS(binary string, voice Voice, opts ...Option) *EdgeTTS {
	if strings.TrimSpace(binary) == "" {
		binary = "edge-tts"
	}
	e := &EdgeTTS{binary: binary, voice: voice, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Synthesize writes text spoken with the configured voice to outPath.
func (e *EdgeTTS) Synthesize(ctx context.Context, text, outPath string) error {
	if strings.TrimSpace(text) == "" {
		return services.Wrap(services.ErrValidation, "speech", "synthesize", "empty text", nil)
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if err := e.exec.Run(ctx, e.binary, e.Args(text, outPath)); err != nil {
		marker := services.ErrExternalTool
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, "speech", "edge-tts", "", err)
	}
	return nil
}

// Args builds the edge-tts arguments. Prosody values are passed in
// --flag=value form because they commonly start with "-".
func (e *EdgeTTS) Args(text, outPath string) []string {
	args := make([]string, 0, 10)
	if e.voice.Name != "" {
		args = append(args, "--voice", e.voice.Name)
	}
	if e.voice.Rate != "" {
		args = append(args, "--rate="+e.voice.Rate)
	}
	if e.voice.Volume != "" {
		args = append(args, "--volume="+e.voice.Volume)
	}
	if e.voice.Pitch != "" {
		args = append(args, "--pitch="+e.voice.Pitch)
	}
	return append(args, "--text", text, "--write-media", outPath)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			if len(msg) > 400 {
				msg = msg[len(msg)-400:]
			}
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
