package workflow

import (
	"context"
	"log/slog"
	"time"

	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

const (
	stageScript   = "script"
	stageSpeech   = "speech"
	stageFootage  = "footage"
	stageAssemble = "assemble"
	stageMix      = "mix"
)

// runStage executes fn with the stage name attached to the context and logs
// its start, completion, or failure.
func runStage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context, *slog.Logger) error) error {
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, logger)

	start := time.Now()
	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := fn(stageCtx, stageLogger); err != nil {
		details := services.Details(err)
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure",
			logging.String("error_kind", details.Kind),
			logging.String(logging.FieldErrorHint, details.Hint),
			logging.Duration("stage_duration", time.Since(start)),
			logging.Error(err),
		)
		return err
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(start)),
	)
	return nil
}
