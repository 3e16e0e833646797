package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelsmith/internal/logging"
)

func makeDir(t *testing.T, root, name string, age time.Duration) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if age > 0 {
		when := time.Now().Add(-age)
		if err := os.Chtimes(dir, when, when); err != nil {
			t.Fatalf("set time: %v", err)
		}
	}
	return dir
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, nil, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	oldDir := makeDir(t, tmpDir, "el-caso-roswell", 48*time.Hour)
	activeOld := makeDir(t, tmpDir, "la-isla", 48*time.Hour)
	recentDir := makeDir(t, tmpDir, "bermudas", 0)

	active := map[string]struct{}{"la-isla": {}}
	result := CleanStale(context.Background(), tmpDir, 24*time.Hour, active, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != oldDir {
		t.Fatalf("expected only %s removed, got %v", oldDir, result.Removed)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old directory should have been removed")
	}
	for _, dir := range []string{activeOld, recentDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("%s should still exist", dir)
		}
	}
}

func TestCleanOrphanedKeepsActive(t *testing.T) {
	tmpDir := t.TempDir()
	keep := makeDir(t, tmpDir, "pending-topic", 0)
	drop := makeDir(t, tmpDir, "finished-topic", 0)
	if err := os.WriteFile(filepath.Join(tmpDir, "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := CleanOrphaned(context.Background(), tmpDir, map[string]struct{}{"pending-topic": {}}, nil)
	if len(result.Removed) != 1 || result.Removed[0] != drop {
		t.Fatalf("unexpected removals %v", result.Removed)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatal("active directory removed")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "stray.txt")); err != nil {
		t.Fatal("files must not be touched")
	}
}

func TestListDirectoriesReportsSize(t *testing.T) {
	tmpDir := t.TempDir()
	dir := makeDir(t, tmpDir, "topic", 0)
	if err := os.MkdirAll(filepath.Join(dir, "audio"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "audio", "00_a.mp3"), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "script.json"), make([]byte, 20), 0o644); err != nil {
		t.Fatal(err)
	}

	dirs, err := ListDirectories(tmpDir)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Name != "topic" || dirs[0].Size != 120 {
		t.Fatalf("unexpected listing %+v", dirs)
	}
	if missing, err := ListDirectories(filepath.Join(tmpDir, "nope")); err != nil || missing != nil {
		t.Fatalf("expected nil for missing dir, got %v %v", missing, err)
	}
}
