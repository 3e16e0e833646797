package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"reelsmith/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("disk", dir, 0); !result.Passed {
		t.Fatalf("expected pass with no minimum, got: %s", result.Detail)
	}
	if result := CheckFreeSpace("disk", dir, 1<<30); result.Passed {
		t.Fatal("expected failure for an impossible minimum")
	}
	if result := CheckFreeSpace("disk", filepath.Join(dir, "nope"), 1); result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestRunAllReportsMissingPieces(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.LLM.APIKey = ""
	cfg.Workflow.MinFreeGiB = 0
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	failed := Failed(RunAll(context.Background(), cfg))
	names := map[string]bool{}
	for _, r := range failed {
		names[r.Name] = true
	}
	for _, want := range []string{"Prompt template", "Music library", "LLM API key"} {
		if !names[want] {
			t.Fatalf("expected %q to fail, failures: %+v", want, failed)
		}
	}
	if names["Work directory"] || names["Pexels API key"] {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	if err := Summarize(failed); err == nil {
		t.Fatal("expected summary error")
	}
}

func TestRunAllPassesWhenReady(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithPrompt("Guion sobre {topic}"),
		testsupport.WithMusicTrack("track-2.mp3", 0.3),
	)
	cfg.Workflow.MinFreeGiB = 0
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	if failed := Failed(RunAll(context.Background(), cfg)); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}
}

func TestCheckPexels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"videos":[]}`))
	}))
	defer srv.Close()

	if result := CheckPexels(context.Background(), srv.URL, "good-key"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	result := CheckPexels(context.Background(), srv.URL, "bad-key")
	if result.Passed || result.Detail != "auth failed (invalid api key)" {
		t.Fatalf("expected auth failure, got %+v", result)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	for _, status := range CheckSystemDeps(cfg) {
		if !status.Available {
			t.Fatalf("expected %s to be found on stubbed PATH: %s", status.Name, status.Detail)
		}
	}
}

func TestRunBatchChecksIncludesBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithPrompt("Guion sobre {topic}"),
		testsupport.WithMusicTrack("track-2.mp3", 0.3),
	)
	cfg.Workflow.MinFreeGiB = 0
	cfg.Media.FFmpegBinary = "reelsmith-missing-ffmpeg"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	failed := Failed(RunBatchChecks(context.Background(), cfg))
	if len(failed) == 0 || failed[len(failed)-1].Name != "FFmpeg" {
		t.Fatalf("expected FFmpeg failure, got %+v", failed)
	}
}
