package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var expr string
	var runNow bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run batches on a cron schedule until interrupted",
		Long: `Run a batch every time the cron expression fires (workflow.schedule by
default, e.g. "@every 6h" or "0 6 * * *"). Runs never overlap: a tick that
arrives while a batch is still running is skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if expr == "" {
				expr = cfg.Workflow.Schedule
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				return runSchedule(cmd.Context(), cfg, store, logger, expr, runNow)
			})
		},
	}

	cmd.Flags().StringVar(&expr, "cron", "", "Cron expression (defaults to workflow.schedule)")
	cmd.Flags().BoolVar(&runNow, "now", false, "Run a batch immediately before waiting for the first tick")
	return cmd
}

func runScheduledBatch(ctx context.Context, cfg *config.Config, store *queue.Store, logger *slog.Logger) {
	summary, err := runBatch(ctx, cfg, store, logger, 0)
	if err != nil {
		logging.ErrorWithContext(logger, "scheduled batch failed", "schedule_batch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'reelsmith status' to check the environment"),
		)
		return
	}
	logger.Info("scheduled batch finished",
		logging.Int("processed", summary.Processed),
		logging.Int("failed", summary.Failed),
		logging.Int("remaining", summary.Remaining),
	)
}

// runSchedule blocks until ctx is cancelled, running a batch on every tick.
func runSchedule(ctx context.Context, cfg *config.Config, store *queue.Store, logger *slog.Logger, expr string, runNow bool) error {
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: logger})))
	if _, err := scheduler.AddFunc(expr, func() {
		runScheduledBatch(ctx, cfg, store, logger)
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	if runNow {
		runScheduledBatch(ctx, cfg, store, logger)
	}

	scheduler.Start()
	logger.Info("scheduler started",
		logging.String("schedule", expr),
		logging.String(logging.FieldEventType, "schedule_start"),
	)

	<-ctx.Done()
	stopped := scheduler.Stop()
	<-stopped.Done()
	logger.Info("scheduler stopped", logging.String(logging.FieldEventType, "schedule_stop"))
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, logging.Error(err))...)
}
