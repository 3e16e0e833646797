package footage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/logging"
	"reelsmith/internal/script"
	"reelsmith/internal/services"
)

// DurationProber reads narration durations.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// Stage selects and downloads footage for every narrated segment.
type Stage struct {
	selector *Selector
	prober   DurationProber
	logger   *slog.Logger
}

// NewStage constructs a footage stage around a per-topic selector.
func NewStage(selector *Selector, prober DurationProber, logger *slog.Logger) *Stage {
	return &Stage{selector: selector, prober: prober, logger: logging.NewComponentLogger(logger, "footage")}
}

// Run writes NN_<clean>.mp4 into videoDir for each segment whose narration
// exists in audioDir. Segments without narration, with unreadable narration,
// or without usable footage are logged and skipped.
func (s *Stage) Run(ctx context.Context, segments []script.Segment, audioDir, videoDir string) ([]SelectedAsset, error) {
	if err := os.MkdirAll(videoDir, 0o755); err != nil {
		return nil, fmt.Errorf("create video dir: %w", err)
	}
	records := s.loadRecords(segments, videoDir)

	selected := make([]SelectedAsset, 0, len(segments))
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return selected, err
		}
		segCtx := services.WithSegment(ctx, seg.Index)
		logger := logging.WithContext(segCtx, s.logger)

		audioPath := filepath.Join(audioDir, seg.AudioFileName())
		if _, err := os.Stat(audioPath); err != nil {
			logger.Debug("no narration for segment; footage skipped", logging.String("audio", audioPath))
			continue
		}
		videoPath := filepath.Join(videoDir, seg.VideoFileName())
		if info, err := os.Stat(videoPath); err == nil && info.Size() > 0 {
			rec := records[seg.Index]
			logger.Debug("reusing footage",
				logging.String("path", videoPath),
				logging.Int64("candidate_id", rec.CandidateID),
			)
			selected = append(selected, SelectedAsset{
				Segment:     seg.Index,
				CandidateID: rec.CandidateID,
				Path:        videoPath,
				Fallback:    rec.Fallback,
				Reused:      true,
			})
			continue
		}

		duration, err := s.prober.Probe(segCtx, audioPath)
		if err != nil {
			logging.WarnWithContext(logger, "narration unreadable; segment skipped", "footage_probe_failed",
				logging.String(logging.FieldErrorHint, "verify the narration file plays and ffprobe is installed"),
				logging.String(logging.FieldImpact, "segment excluded from the final video"),
				logging.Error(err),
			)
			continue
		}

		sel, err := s.selector.Select(segCtx, seg.VisualQuery, duration)
		if err == nil {
			err = s.selector.Fetch(segCtx, sel, videoPath)
		}
		if err != nil {
			if ctx.Err() != nil {
				return selected, ctx.Err()
			}
			logging.WarnWithContext(logger, "no footage for segment; segment skipped", "footage_unavailable",
				logging.String("visual_query", seg.VisualQuery),
				logging.Float64("min_duration", duration),
				logging.String(logging.FieldErrorHint, "check the Pexels API key, quota, and the visual description"),
				logging.String(logging.FieldImpact, "segment excluded from the final video"),
				logging.Error(err),
			)
			continue
		}
		if sel.Fallback {
			logging.WarnWithContext(logger, "no candidate met duration and uniqueness; using first result", "footage_fallback",
				logging.Int64("candidate_id", sel.Candidate.ID),
				logging.Float64("candidate_duration", sel.Candidate.Duration),
				logging.Float64("min_duration", duration),
				logging.String(logging.FieldErrorHint, "footage will loop and may repeat another segment"),
				logging.String(logging.FieldImpact, "footage constraints waived for this segment"),
			)
		}
		rec := footageRecord{CandidateID: sel.Candidate.ID, Fallback: sel.Fallback, Query: sel.Query}
		if err := writeRecord(RecordPath(videoPath), rec); err != nil {
			logging.WarnWithContext(logger, "footage record not written", "footage_record_failed",
				logging.String(logging.FieldErrorHint, "check write access to the project video directory"),
				logging.String(logging.FieldImpact, "a resumed run may select this clip again"),
				logging.Error(err),
			)
		}
		logger.Info("footage downloaded",
			logging.Int64("candidate_id", sel.Candidate.ID),
			logging.Int("width", sel.Rendition.Width),
			logging.String("path", videoPath),
		)
		selected = append(selected, SelectedAsset{
			Segment:     seg.Index,
			CandidateID: sel.Candidate.ID,
			Path:        videoPath,
			Fallback:    sel.Fallback,
		})
	}
	return selected, nil
}

// footageRecord is stored beside each downloaded clip so a resumed run knows
// which candidate it came from.
type footageRecord struct {
	CandidateID int64  `json:"candidate_id"`
	Fallback    bool   `json:"fallback,omitempty"`
	Query       string `json:"query,omitempty"`
}

// RecordPath returns the sidecar path for a footage file (NN_<clean>.json).
func RecordPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".json"
}

// loadRecords reads the sidecars of clips already in videoDir and excludes
// their candidates before any new selection. Fallback clips stay selectable.
func (s *Stage) loadRecords(segments []script.Segment, videoDir string) map[int]footageRecord {
	records := make(map[int]footageRecord)
	for _, seg := range segments {
		videoPath := filepath.Join(videoDir, seg.VideoFileName())
		if info, err := os.Stat(videoPath); err != nil || info.Size() == 0 {
			continue
		}
		rec, err := readRecord(RecordPath(videoPath))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.logger.Warn("footage record unreadable",
					logging.String("path", RecordPath(videoPath)),
					logging.Error(err),
				)
			}
			continue
		}
		records[seg.Index] = rec
		if !rec.Fallback {
			s.selector.Exclude(rec.CandidateID)
		}
	}
	return records
}

func readRecord(path string) (footageRecord, error) {
	var rec footageRecord
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode footage record: %w", err)
	}
	return rec, nil
}

func writeRecord(path string, rec footageRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}
