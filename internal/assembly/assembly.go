package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"reelsmith/internal/logging"
	"reelsmith/internal/media/mediatool"
	"reelsmith/internal/services"
	"reelsmith/internal/textutil"
)

const (
	// BaseTrackName is the concatenated output inside the work directory.
	BaseTrackName = "base_video.mp4"
	// ConcatListName is the concat-demuxer list inside the work directory.
	ConcatListName = "concat_list.txt"
	// UnitsDirName holds the normalized MPEG-TS units.
	UnitsDirName = "ts_segments"
)

// DurationProber reads narration durations.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// Normalizer is the subset of mediatool.MediaTool used here.
type Normalizer interface {
	Normalize(ctx context.Context, videoPath, audioPath, outPath string) error
	Concatenate(ctx context.Context, listPath, outPath string) error
}

// Pair is a segment that has both narration and footage.
type Pair struct {
	Segment   int
	AudioPath string
	VideoPath string
	Duration  float64
}

// NormalizedUnit is one MPEG-TS unit of the base track.
type NormalizedUnit struct {
	Segment int
	Path    string
}

// BaseTrack is the concatenated narration-over-footage video.
type BaseTrack struct {
	Path  string
	Units []NormalizedUnit
	// ExpectedDuration is the sum of the included narration durations.
	ExpectedDuration float64
	// Skipped lists segment indexes that had only one of the two files.
	Skipped []int
}

// Assembler builds base tracks.
type Assembler struct {
	tool   Normalizer
	prober DurationProber
	logger *slog.Logger
}

// New constructs an assembler.
func New(tool Normalizer, prober DurationProber, logger *slog.Logger) *Assembler {
	return &Assembler{tool: tool, prober: prober, logger: logging.NewComponentLogger(logger, "assembly")}
}

// Assemble writes workDir/base_video.mp4 from the paired files in audioDir
// and videoDir.
func (a *Assembler) Assemble(ctx context.Context, audioDir, videoDir, workDir string) (*BaseTrack, error) {
	audio, err := indexFiles(audioDir, ".mp3")
	if err != nil {
		return nil, err
	}
	video, err := indexFiles(videoDir, ".mp4")
	if err != nil {
		return nil, err
	}
	pairs, skipped := Pairs(audio, video)
	if len(audio) == 0 || len(video) == 0 || len(pairs) == 0 {
		return nil, &services.InsufficientAssetsError{AudioCount: len(audio), VideoCount: len(video), Paired: len(pairs)}
	}
	if len(skipped) > 0 {
		logging.WarnWithContext(a.logger, "segments missing narration or footage excluded", "assembly_segments_excluded",
			logging.Any("segments", skipped),
			logging.String(logging.FieldErrorHint, "see the speech and footage warnings for each segment"),
			logging.String(logging.FieldImpact, "final video is shorter than the script"),
		)
	}

	unitsDir := filepath.Join(workDir, UnitsDirName)
	if err := os.MkdirAll(unitsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create units dir: %w", err)
	}

	track := &BaseTrack{Path: filepath.Join(workDir, BaseTrackName), Skipped: skipped}
	for i := range pairs {
		pair := &pairs[i]
		segCtx := services.WithSegment(ctx, pair.Segment)
		duration, err := a.prober.Probe(segCtx, pair.AudioPath)
		if err != nil {
			return nil, err
		}
		pair.Duration = duration

		unitPath := filepath.Join(unitsDir, fmt.Sprintf("segment_%02d.ts", pair.Segment))
		if err := a.tool.Normalize(segCtx, pair.VideoPath, pair.AudioPath, unitPath); err != nil {
			_ = os.Remove(unitPath)
			return nil, &services.AssemblyError{Op: "normalize", Segment: pair.Segment, Err: err}
		}
		track.Units = append(track.Units, NormalizedUnit{Segment: pair.Segment, Path: unitPath})
		track.ExpectedDuration += duration
		logging.WithContext(segCtx, a.logger).Debug("segment normalized", logging.String("unit", unitPath), logging.Float64("duration", duration))
	}

	listPath := filepath.Join(workDir, ConcatListName)
	unitPaths := lo.Map(track.Units, func(u NormalizedUnit, _ int) string { return u.Path })
	if err := mediatool.WriteConcatList(listPath, unitPaths); err != nil {
		return nil, &services.AssemblyError{Op: "concat list", Segment: -1, Err: err}
	}
	if err := a.tool.Concatenate(ctx, listPath, track.Path); err != nil {
		_ = os.Remove(track.Path)
		return nil, &services.AssemblyError{Op: "concatenate", Segment: -1, Err: err}
	}

	a.logger.Info("base track assembled",
		logging.Int("units", len(track.Units)),
		logging.Float64("expected_duration", track.ExpectedDuration),
		logging.String("path", track.Path),
	)
	return track, nil
}

// Pairs joins audio and video files by segment index. The result is sorted
// by index; skipped holds indexes present on only one side.
func Pairs(audio, video map[int]string) ([]Pair, []int) {
	pairs := make([]Pair, 0, len(audio))
	var skipped []int
	for index, audioPath := range audio {
		videoPath, ok := video[index]
		if !ok {
			skipped = append(skipped, index)
			continue
		}
		pairs = append(pairs, Pair{Segment: index, AudioPath: audioPath, VideoPath: videoPath})
	}
	for index := range video {
		if _, ok := audio[index]; !ok {
			skipped = append(skipped, index)
		}
	}
	slices.SortFunc(pairs, func(a, b Pair) int { return a.Segment - b.Segment })
	slices.Sort(skipped)
	return pairs, skipped
}

// indexFiles maps segment index to path for NN_*.ext files in dir. A missing
// directory yields an empty map.
func indexFiles(dir, ext string) (map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[int]string{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	files := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		index, ok := textutil.ParseSegmentIndex(entry.Name())
		if !ok {
			continue
		}
		if existing, dup := files[index]; dup && filepath.Base(existing) < entry.Name() {
			continue
		}
		files[index] = filepath.Join(dir, entry.Name())
	}
	return files, nil
}
