package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"reelsmith/internal/config"
	"reelsmith/internal/deps"
	"reelsmith/internal/services/pexels"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least minGiB
// available. A zero minimum only reports the free space.
func CheckFreeSpace(name, path string, minGiB int) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := float64(stat.Bavail) * float64(stat.Bsize) / (1 << 30)
	if minGiB > 0 && free < float64(minGiB) {
		return Result{Name: name, Detail: fmt.Sprintf("%.1f GiB free, need %d GiB", free, minGiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%.1f GiB free", free)}
}

// CheckPromptFile verifies the script prompt template exists and is not empty.
func CheckPromptFile(path string) Result {
	const name = "Prompt template"
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if strings.TrimSpace(string(data)) == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: empty)", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckMusicLibrary verifies at least one configured track exists on disk.
func CheckMusicLibrary(cfg *config.Config) Result {
	const name = "Music library"
	tracks, err := cfg.MusicLibrary()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if len(tracks) == 0 {
		return Result{Name: name, Detail: "no tracks configured (music.tracks or library.yaml)"}
	}
	var missing []string
	for track := range tracks {
		if _, err := os.Stat(filepath.Join(cfg.Music.Dir, track)); err != nil {
			missing = append(missing, track)
		}
	}
	if len(missing) == len(tracks) {
		return Result{Name: name, Detail: fmt.Sprintf("no track files found in %s", cfg.Music.Dir)}
	}
	if len(missing) > 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d tracks, %d missing", len(tracks), len(missing))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d tracks", len(tracks))}
}

// CheckCredential verifies a secret is configured without revealing it.
func CheckCredential(name, value string) Result {
	if strings.TrimSpace(value) == "" {
		return Result{Name: name, Detail: "missing"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckPexels verifies the Pexels API accepts the key with a one-result
// search.
func CheckPexels(ctx context.Context, baseURL, apiKey string) Result {
	const name = "Pexels API"

	client, err := pexels.New(apiKey, baseURL, pexels.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := client.Search(checkCtx, pexels.Query{Text: "nature", PerPage: 1}); err != nil {
		var statusErr *pexels.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return Result{Name: name, Detail: "auth failed (invalid api key)"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("search failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckSystemDeps evaluates the external binaries the pipeline invokes.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary, cfg.Speech.Binary))
}
