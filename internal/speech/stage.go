package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"reelsmith/internal/logging"
	"reelsmith/internal/script"
	"reelsmith/internal/services"
)

// AudioAsset is a narration file produced for one segment.
type AudioAsset struct {
	Segment int
	Path    string
	Reused  bool
}

// Stage synthesizes narration for every segment in order.
type Stage struct {
	synth  Synthesizer
	logger *slog.Logger
}

// NewStage constructs a speech stage.
func NewStage(synth Synthesizer, logger *slog.Logger) *Stage {
	return &Stage{synth: synth, logger: logging.NewComponentLogger(logger, "speech")}
}

// Run writes NN_<clean>.mp3 for each segment into audioDir. Per-segment
// failures are logged and skipped; only context cancellation or an unusable
// audioDir abort the stage.
func (s *Stage) Run(ctx context.Context, segments []script.Segment, audioDir string) ([]AudioAsset, error) {
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	assets := make([]AudioAsset, 0, len(segments))
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return assets, err
		}
		segCtx := services.WithSegment(ctx, seg.Index)
		path := filepath.Join(audioDir, seg.AudioFileName())

		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			s.logger.Debug("reusing narration", logging.Int(logging.FieldSegment, seg.Index), logging.String("path", path))
			assets = append(assets, AudioAsset{Segment: seg.Index, Path: path, Reused: true})
			continue
		}

		if err := s.synth.Synthesize(segCtx, seg.Text, path); err != nil {
			if ctx.Err() != nil {
				return assets, ctx.Err()
			}
			_ = os.Remove(path)
			logging.WarnWithContext(logging.WithContext(segCtx, s.logger), "narration synthesis failed; segment skipped", "speech_segment_skipped",
				logging.String("segment_name", seg.Name),
				logging.String(logging.FieldErrorHint, "check edge-tts connectivity and voice settings"),
				logging.String(logging.FieldImpact, "segment excluded from the final video"),
				logging.Error(err),
			)
			continue
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			_ = os.Remove(path)
			logging.WarnWithContext(logging.WithContext(segCtx, s.logger), "narration output missing; segment skipped", "speech_output_missing",
				logging.String(logging.FieldErrorHint, "edge-tts exited cleanly but wrote no audio"),
				logging.String(logging.FieldImpact, "segment excluded from the final video"),
			)
			continue
		}
		s.logger.Info("narration written", logging.Int(logging.FieldSegment, seg.Index), logging.String("path", path))
		assets = append(assets, AudioAsset{Segment: seg.Index, Path: path})
	}
	return assets, nil
}
