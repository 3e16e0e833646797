package mediatool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"reelsmith/internal/services"
)

type recordingExecutor struct {
	binary string
	args   [][]string
	err    error
}

func (r *recordingExecutor) Run(_ context.Context, binary string, args []string) error {
	r.binary = binary
	r.args = append(r.args, append([]string(nil), args...))
	return r.err
}

func TestNormalizeArgs(t *testing.T) {
	rec := &recordingExecutor{}
	tool := New(Settings{Binary: "/usr/bin/ffmpeg"}, WithExecutor(rec))
	if err := tool.Normalize(context.Background(), "v.mp4", "a.mp3", "out.ts"); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	want := []string{
		"-y", "-stream_loop", "-1", "-i", "v.mp4", "-i", "a.mp3",
		"-map", "0:v:0", "-map", "1:a:0",
		"-vf", "scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920,setsar=1",
		"-c:v", "libx264", "-c:a", "aac", "-f", "mpegts", "-shortest", "out.ts",
	}
	if rec.binary != "/usr/bin/ffmpeg" {
		t.Fatalf("unexpected binary %q", rec.binary)
	}
	if !reflect.DeepEqual(rec.args[0], want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", rec.args[0], want)
	}
}

func TestConcatArgs(t *testing.T) {
	want := []string{"-y", "-f", "concat", "-safe", "0", "-i", "list.txt", "-c", "copy", "-bsf:a", "aac_adtstoasc", "base_video.mp4"}
	if got := ConcatArgs("list.txt", "base_video.mp4"); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected args: %v", got)
	}
}

func TestMixArgs(t *testing.T) {
	got := MixArgs(Settings{AudioCodec: "aac"}, MixRequest{
		MusicPath: "track-2.mp3",
		BasePath:  "base_video.mp4",
		OutPath:   "final.mp4",
		Gain:      0.3,
		LeadIn:    10,
	})
	want := []string{
		"-y", "-ss", "10", "-stream_loop", "-1", "-i", "track-2.mp3", "-i", "base_video.mp4",
		"-filter_complex", "[0:a]volume=0.3[music];[1:a]volume=1.0[voice];[music][voice]amix=inputs=2:duration=shortest[audio_out]",
		"-map", "1:v:0", "-map", "[audio_out]", "-c:v", "copy", "-c:a", "aac", "-shortest", "final.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", got, want)
	}

	noLeadIn := MixArgs(Settings{AudioCodec: "aac"}, MixRequest{MusicPath: "m", BasePath: "b", OutPath: "o"})
	for _, arg := range noLeadIn {
		if arg == "-ss" {
			t.Fatal("expected no seek without lead-in")
		}
	}
}

func TestRunWrapsExecutorErrors(t *testing.T) {
	rec := &recordingExecutor{err: errors.New("exit status 1")}
	tool := New(Settings{}, WithExecutor(rec))
	err := tool.Concatenate(context.Background(), "list", "out")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "concatenate") {
		t.Fatalf("expected operation in message, got %v", err)
	}
}

type blockingExecutor struct{}

func (blockingExecutor) Run(ctx context.Context, _ string, _ []string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunTimeoutMarksTimeout(t *testing.T) {
	tool := New(Settings{Timeout: 10 * time.Millisecond}, WithExecutor(blockingExecutor{}))
	err := tool.Normalize(context.Background(), "v", "a", "o")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
}

func TestWriteConcatListEscapesQuotes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "it's here")
	units := []string{filepath.Join(dir, "segment_00.ts"), filepath.Join(dir, "segment_02.ts")}
	listPath := filepath.Join(t.TempDir(), "concat_list.txt")
	if err := WriteConcatList(listPath, units); err != nil {
		t.Fatalf("WriteConcatList returned error: %v", err)
	}
	data, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatal(err)
	}
	escapedDir := strings.ReplaceAll(dir, "'", `'\''`)
	want := "file '" + escapedDir + "/segment_00.ts'\n" + "file '" + escapedDir + "/segment_02.ts'\n"
	if string(data) != want {
		t.Fatalf("unexpected list:\n%s\nwant:\n%s", data, want)
	}
}

func TestCommandExecutorReportsStderr(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fail.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'Invalid argument' >&2\nexit 3\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	err := commandExecutor{}.Run(context.Background(), script, nil)
	if err == nil || !strings.Contains(err.Error(), "Invalid argument") {
		t.Fatalf("expected stderr tail in error, got %v", err)
	}
}
