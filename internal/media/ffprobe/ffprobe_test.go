package ffprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reelsmith/internal/services"
	"reelsmith/internal/testsupport"
)

func TestDurationSecondsFallsBackToAudioStream(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", Duration: "99"},
			{CodecType: "audio", Duration: "4.5"},
			{CodecType: "audio", Duration: "6.25"},
		},
		Format: Format{Duration: "N/A"},
	}
	if got := result.DurationSeconds(); got != 6.25 {
		t.Fatalf("expected longest audio stream, got %v", got)
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}

	result.Format.Duration = "12.0"
	if got := result.DurationSeconds(); got != 12 {
		t.Fatalf("expected container duration, got %v", got)
	}

	if got := (Result{Format: Format{Duration: "bad"}}).DurationSeconds(); got != 0 {
		t.Fatalf("expected 0 for unparsable duration, got %v", got)
	}
}

func stubProbe(t *testing.T, output string) string {
	t.Helper()
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out.json")
	if err := os.WriteFile(jsonPath, []byte(output), 0o644); err != nil {
		t.Fatal(err)
	}
	return testsupport.WriteExecutable(t, dir, "ffprobe", "cat '"+jsonPath+"'")
}

func TestProberReadsDuration(t *testing.T) {
	binary := stubProbe(t, `{"format":{"duration":"7.123456"},"streams":[{"codec_type":"audio","duration":"7.1"}]}`)
	audio := filepath.Join(t.TempDir(), "00_intro.mp3")
	testsupport.WriteFile(t, audio, 128)

	got, err := NewProber(binary, 0).Probe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if got != 7.123 {
		t.Fatalf("expected millisecond precision, got %v", got)
	}
}

func TestProberAssetReadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.mp3")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	valid := filepath.Join(dir, "valid.mp3")
	testsupport.WriteFile(t, valid, 64)

	garbage := stubProbe(t, "not json")
	failing := testsupport.WriteExecutable(t, t.TempDir(), "ffprobe", "echo 'Invalid data' >&2\nexit 1")
	noDuration := stubProbe(t, `{"format":{},"streams":[]}`)

	tests := []struct {
		name   string
		binary string
		path   string
	}{
		{"missing", garbage, filepath.Join(dir, "missing.mp3")},
		{"empty", garbage, empty},
		{"unparsable", garbage, valid},
		{"tool failure", failing, valid},
		{"no duration", noDuration, valid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProber(tc.binary, 0).Probe(context.Background(), tc.path)
			var readErr *services.AssetReadError
			if !errors.As(err, &readErr) {
				t.Fatalf("expected AssetReadError, got %v", err)
			}
			if readErr.Path != tc.path {
				t.Fatalf("unexpected path %q", readErr.Path)
			}
			if !errors.Is(err, services.ErrAssetRead) {
				t.Fatal("expected ErrAssetRead marker")
			}
		})
	}
}
