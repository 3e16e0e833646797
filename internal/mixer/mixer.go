package mixer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"reelsmith/internal/logging"
	"reelsmith/internal/media/mediatool"
	"reelsmith/internal/services"
)

// Tool is the subset of mediatool.MediaTool used here.
type Tool interface {
	Mix(ctx context.Context, req mediatool.MixRequest) error
}

// MixResult describes a completed mix.
type MixResult struct {
	Path  string
	Track string
	Gain  float64
}

// Mixer mixes music under base tracks.
type Mixer struct {
	tool     Tool
	musicDir string
	library  map[string]float64
	leadIn   float64
	rng      *rand.Rand
	logger   *slog.Logger
}

// New constructs a mixer. library maps track file names inside musicDir to
// their gain. A nil rng is seeded randomly.
func New(tool Tool, musicDir string, library map[string]float64, leadIn float64, rng *rand.Rand, logger *slog.Logger) *Mixer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Mixer{
		tool:     tool,
		musicDir: musicDir,
		library:  library,
		leadIn:   leadIn,
		rng:      rng,
		logger:   logging.NewComponentLogger(logger, "mixer"),
	}
}

// PickTrack returns a random track name and its gain.
func (m *Mixer) PickTrack() (string, float64, error) {
	if len(m.library) == 0 {
		return "", 0, &services.MusicAssetError{Reason: "track library is empty"}
	}
	names := lo.Keys(m.library)
	slices.Sort(names)
	name := names[m.rng.IntN(len(names))]
	return name, m.library[name], nil
}

// Mix writes outPath with a random library track mixed under basePath's
// narration. The video stream is copied unchanged.
func (m *Mixer) Mix(ctx context.Context, basePath, outPath string) (*MixResult, error) {
	track, gain, err := m.PickTrack()
	if err != nil {
		return nil, err
	}
	musicPath := filepath.Join(m.musicDir, track)
	info, err := os.Stat(musicPath)
	if err != nil {
		return nil, &services.MusicAssetError{Track: track, Reason: "track file unavailable", Err: err}
	}
	if info.IsDir() || info.Size() == 0 {
		return nil, &services.MusicAssetError{Track: track, Reason: "track file is empty"}
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	partial := PartialPath(outPath)
	err = m.tool.Mix(ctx, mediatool.MixRequest{
		MusicPath: musicPath,
		BasePath:  basePath,
		OutPath:   partial,
		Gain:      gain,
		LeadIn:    m.leadIn,
	})
	if err != nil {
		_ = os.Remove(partial)
		return nil, &services.AssemblyError{Op: "mix", Segment: -1, Err: err}
	}
	if err := os.Rename(partial, outPath); err != nil {
		_ = os.Remove(partial)
		return nil, &services.AssemblyError{Op: "publish", Segment: -1, Err: err}
	}

	m.logger.Info("background music mixed",
		logging.String("track", track),
		logging.Float64("gain", gain),
		logging.String("path", outPath),
	)
	return &MixResult{Path: outPath, Track: track, Gain: gain}, nil
}

// PartialPath returns the in-progress name used while mixing into outPath.
func PartialPath(outPath string) string {
	ext := filepath.Ext(outPath)
	return strings.TrimSuffix(outPath, ext) + ".partial" + lo.Ternary(ext == "", ".mp4", ext)
}
