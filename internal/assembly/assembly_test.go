package assembly

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

type fakeTool struct {
	normalized  []string
	lists       []string
	normalizeAt map[string]error
	concatErr   error
}

func (f *fakeTool) Normalize(_ context.Context, videoPath, audioPath, outPath string) error {
	f.normalized = append(f.normalized, filepath.Base(videoPath)+"+"+filepath.Base(audioPath))
	if err := f.normalizeAt[filepath.Base(videoPath)]; err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte("ts"), 0o644)
}

func (f *fakeTool) Concatenate(_ context.Context, listPath, outPath string) error {
	data, err := os.ReadFile(listPath)
	if err != nil {
		return err
	}
	f.lists = append(f.lists, string(data))
	if werr := os.WriteFile(outPath, []byte("partial"), 0o644); werr != nil {
		return werr
	}
	return f.concatErr
}

type fakeProber map[string]float64

func (f fakeProber) Probe(_ context.Context, path string) (float64, error) {
	d, ok := f[filepath.Base(path)]
	if !ok {
		return 0, &services.AssetReadError{Path: path}
	}
	return d, nil
}

func layout(t *testing.T, audio, video []string) (string, string, string) {
	t.Helper()
	root := t.TempDir()
	audioDir := filepath.Join(root, "audio")
	videoDir := filepath.Join(root, "video")
	for dir, names := range map[string][]string{audioDir: audio, videoDir: video} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return audioDir, videoDir, root
}

func TestAssembleExcludesMiddleSegmentMissingFootage(t *testing.T) {
	audioDir, videoDir, workDir := layout(t,
		[]string{"00_Inicio.mp3", "01_Medio.mp3", "02_Final.mp3"},
		[]string{"00_Inicio.mp4", "02_Final.mp4"},
	)
	tool := &fakeTool{}
	prober := fakeProber{"00_Inicio.mp3": 4.25, "01_Medio.mp3": 7, "02_Final.mp3": 3.5}

	track, err := New(tool, prober, logging.NewNop()).Assemble(context.Background(), audioDir, videoDir, workDir)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(track.Units) != 2 || track.Units[0].Segment != 0 || track.Units[1].Segment != 2 {
		t.Fatalf("expected units for segments 0 and 2, got %+v", track.Units)
	}
	if !reflect.DeepEqual(tool.normalized, []string{"00_Inicio.mp4+00_Inicio.mp3", "02_Final.mp4+02_Final.mp3"}) {
		t.Fatalf("unexpected pairing %v", tool.normalized)
	}
	if track.ExpectedDuration != 7.75 {
		t.Fatalf("expected duration 7.75, got %v", track.ExpectedDuration)
	}
	if !reflect.DeepEqual(track.Skipped, []int{1}) {
		t.Fatalf("expected segment 1 skipped, got %v", track.Skipped)
	}
	if track.Path != filepath.Join(workDir, BaseTrackName) {
		t.Fatalf("unexpected base path %q", track.Path)
	}
	wantList := "file '" + filepath.Join(workDir, UnitsDirName, "segment_00.ts") + "'\n" +
		"file '" + filepath.Join(workDir, UnitsDirName, "segment_02.ts") + "'\n"
	if len(tool.lists) != 1 || tool.lists[0] != wantList {
		t.Fatalf("unexpected concat list:\n%s", strings.Join(tool.lists, "---"))
	}
}

func TestAssembleOrdersNumerically(t *testing.T) {
	names := []string{"100_c", "99_b", "09_a"}
	var audio, video []string
	for _, n := range names {
		audio = append(audio, n+".mp3")
		video = append(video, n+".mp4")
	}
	audioDir, videoDir, workDir := layout(t, audio, video)
	prober := fakeProber{"100_c.mp3": 1, "99_b.mp3": 1, "09_a.mp3": 1}
	tool := &fakeTool{}

	track, err := New(tool, prober, nil).Assemble(context.Background(), audioDir, videoDir, workDir)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	var got []int
	for _, u := range track.Units {
		got = append(got, u.Segment)
	}
	if !reflect.DeepEqual(got, []int{9, 99, 100}) {
		t.Fatalf("expected numeric order, got %v", got)
	}
}

func TestAssembleInsufficientAssets(t *testing.T) {
	tests := []struct {
		name  string
		audio []string
		video []string
	}{
		{"no video", []string{"00_a.mp3"}, nil},
		{"no audio", nil, []string{"00_a.mp4"}},
		{"no overlap", []string{"00_a.mp3"}, []string{"01_b.mp4"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			audioDir, videoDir, workDir := layout(t, tc.audio, tc.video)
			tool := &fakeTool{}
			_, err := New(tool, fakeProber{}, nil).Assemble(context.Background(), audioDir, videoDir, workDir)
			var insufficient *services.InsufficientAssetsError
			if !errors.As(err, &insufficient) {
				t.Fatalf("expected insufficient assets error, got %v", err)
			}
			if len(tool.normalized) != 0 {
				t.Fatal("expected no normalize invocations")
			}
		})
	}
}

func TestAssembleNormalizeFailure(t *testing.T) {
	audioDir, videoDir, workDir := layout(t, []string{"00_a.mp3", "01_b.mp3"}, []string{"00_a.mp4", "01_b.mp4"})
	tool := &fakeTool{normalizeAt: map[string]error{"01_b.mp4": errors.New("exit status 1")}}
	_, err := New(tool, fakeProber{"00_a.mp3": 1, "01_b.mp3": 1}, nil).Assemble(context.Background(), audioDir, videoDir, workDir)
	var assemblyErr *services.AssemblyError
	if !errors.As(err, &assemblyErr) || assemblyErr.Segment != 1 || assemblyErr.Op != "normalize" {
		t.Fatalf("expected normalize assembly error for segment 1, got %v", err)
	}
	if len(tool.lists) != 0 {
		t.Fatal("expected concatenation not to run")
	}
}

func TestAssembleRemovesPartialBaseTrack(t *testing.T) {
	audioDir, videoDir, workDir := layout(t, []string{"00_a.mp3"}, []string{"00_a.mp4"})
	tool := &fakeTool{concatErr: errors.New("exit status 1")}
	_, err := New(tool, fakeProber{"00_a.mp3": 1}, nil).Assemble(context.Background(), audioDir, videoDir, workDir)
	if !errors.Is(err, services.ErrAssembly) {
		t.Fatalf("expected assembly error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(workDir, BaseTrackName)); !os.IsNotExist(statErr) {
		t.Fatal("expected partial base track to be removed")
	}
}

func TestAssembleUnreadableNarration(t *testing.T) {
	audioDir, videoDir, workDir := layout(t, []string{"00_a.mp3"}, []string{"00_a.mp4"})
	_, err := New(&fakeTool{}, fakeProber{}, nil).Assemble(context.Background(), audioDir, videoDir, workDir)
	if !errors.Is(err, services.ErrAssetRead) {
		t.Fatalf("expected asset read error, got %v", err)
	}
}
