package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/notifications"
	"reelsmith/internal/preflight"
	"reelsmith/internal/queue"
	"reelsmith/internal/services"
	"reelsmith/internal/staging"
)

// ErrBatchRunning is returned when another process holds the batch lock.
var ErrBatchRunning = errors.New("another reelsmith batch is already running")

// Processor runs one topic to completion.
type Processor interface {
	Process(ctx context.Context, topic *queue.Topic) (*Result, error)
}

// PreflightFunc reports environment readiness before a batch.
type PreflightFunc func(ctx context.Context, cfg *config.Config) []preflight.Result

// TopicOutcome records what happened to one topic in a batch.
type TopicOutcome struct {
	TopicID   int64
	Topic     string
	Status    queue.Status
	FinalFile string
	Error     string
	Duration  time.Duration
}

// BatchSummary reports the result of RunBatch.
type BatchSummary struct {
	Processed int
	Failed    int
	// Remaining is the number of topics still pending after the batch.
	Remaining int
	Duration  time.Duration
	Outcomes  []TopicOutcome
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithPreflight replaces the preflight checks run before each batch. A nil
// function disables them.
func WithPreflight(fn PreflightFunc) RunnerOption {
	return func(r *Runner) {
		r.preflight = fn
	}
}

// WithNotifier overrides the notification service.
func WithNotifier(notifier notifications.Service) RunnerOption {
	return func(r *Runner) {
		if notifier != nil {
			r.notifier = notifier
		}
	}
}

// Runner processes batches of queued topics.
type Runner struct {
	cfg       *config.Config
	store     *queue.Store
	processor Processor
	notifier  notifications.Service
	preflight PreflightFunc
	logger    *slog.Logger
}

// NewRunner constructs a batch runner.
func NewRunner(cfg *config.Config, store *queue.Store, processor Processor, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:       cfg,
		store:     store,
		processor: processor,
		notifier:  notifications.NewService(cfg),
		preflight: preflight.RunBatchChecks,
		logger:    logging.NewComponentLogger(logger, "batch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunBatch processes up to size pending topics (workflow.batch_size when
// size <= 0) in queue order. Topic failures are recorded on the topic and
// counted in the summary; the returned error covers only conditions that
// prevented the batch from running.
func (r *Runner) RunBatch(ctx context.Context, size int) (BatchSummary, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return BatchSummary{}, err
	}

	lock := flock.New(r.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return BatchSummary{}, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !ok {
		return BatchSummary{}, ErrBatchRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("batch lock release failed", logging.Error(err))
		}
	}()

	if err := r.runPreflight(ctx); err != nil {
		return BatchSummary{}, err
	}

	if reset, err := r.store.ResetStuckProcessing(ctx); err != nil {
		return BatchSummary{}, err
	} else if reset > 0 {
		logging.WarnWithContext(r.logger, "reset interrupted topics", "topics_reset",
			logging.Int64("count", reset),
			logging.String(logging.FieldImpact, "topics left processing by an earlier run were returned to pending"),
		)
	}

	if size <= 0 {
		size = r.cfg.Workflow.BatchSize
	}
	topics, err := r.store.NextPending(ctx, size)
	if err != nil {
		return BatchSummary{}, err
	}

	start := time.Now()
	summary := BatchSummary{}
	r.logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("topics", len(topics)),
		logging.Int("batch_size", size),
	)

	for _, topic := range topics {
		if ctx.Err() != nil {
			break
		}
		outcome, claimed := r.processTopic(ctx, topic)
		if !claimed {
			continue
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Status == queue.StatusCompleted {
			summary.Processed++
		} else {
			summary.Failed++
		}
	}

	persistCtx := context.WithoutCancel(ctx)
	if stats, err := r.store.Stats(persistCtx); err != nil {
		r.logger.Warn("queue stats unavailable", logging.Error(err))
	} else {
		summary.Remaining = stats.Pending
	}
	summary.Duration = time.Since(start)

	r.cleanStaleWork(persistCtx)

	r.logger.Info("batch completed",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("processed", summary.Processed),
		logging.Int("failed", summary.Failed),
		logging.Int("remaining", summary.Remaining),
		logging.Duration("batch_duration", summary.Duration),
	)
	if summary.Processed+summary.Failed > 0 {
		if err := r.notifier.NotifyBatchCompleted(persistCtx, summary.Processed, summary.Failed, summary.Remaining, summary.Duration); err != nil {
			r.logger.Warn("batch notification failed", logging.Error(err))
		}
	}
	return summary, ctx.Err()
}

// processTopic claims and runs one topic. It returns false when the topic
// was claimed by someone else or could not be claimed.
func (r *Runner) processTopic(ctx context.Context, topic *queue.Topic) (TopicOutcome, bool) {
	runID := uuid.NewString()
	topicCtx := services.WithRequestID(services.WithTopicID(ctx, topic.ID), runID)
	logger := logging.WithContext(topicCtx, r.logger).With(logging.String("topic", topic.Topic))

	claimed, err := r.store.MarkProcessing(ctx, topic.ID, runID)
	if err != nil {
		logger.Error("failed to claim topic", logging.Error(err))
		return TopicOutcome{}, false
	}
	if !claimed {
		logger.Debug("topic no longer pending")
		return TopicOutcome{}, false
	}
	topic.Attempts++
	topic.LastRunID = runID

	start := time.Now()
	result, procErr := r.processor.Process(topicCtx, topic)
	outcome := TopicOutcome{TopicID: topic.ID, Topic: topic.Topic, Duration: time.Since(start)}

	// The outcome is persisted even when the batch is being cancelled.
	persistCtx := context.WithoutCancel(ctx)

	if procErr == nil {
		outcome.Status = queue.StatusCompleted
		outcome.FinalFile = result.FinalPath
		if err := r.store.MarkCompleted(persistCtx, topic.ID, result.FinalPath); err != nil {
			logger.Error("failed to persist topic completion", logging.Error(err))
		}
		logger.Info("topic published",
			logging.String(logging.FieldEventType, "topic_published"),
			logging.String("final_file", result.FinalPath),
			logging.Duration("topic_duration", outcome.Duration),
		)
		if err := r.notifier.NotifyTopicCompleted(persistCtx, topic.Topic, result.FinalPath); err != nil {
			logger.Warn("topic notification failed", logging.Error(err))
		}
		return outcome, true
	}

	details := services.Details(procErr)
	outcome.Error = details.Message
	willRetry := r.cfg.Workflow.MaxAttempts <= 0 || topic.Attempts < r.cfg.Workflow.MaxAttempts
	outcome.Status = lo.Ternary(willRetry, queue.StatusPending, queue.StatusFailed)

	logging.ErrorWithContext(logger, "topic failed", "topic_failure",
		logging.String("error_kind", details.Kind),
		logging.String(logging.FieldErrorHint, details.Hint),
		logging.String("resolved_status", string(outcome.Status)),
		logging.Int("attempts", topic.Attempts),
		logging.Error(procErr),
	)

	if willRetry {
		err = r.store.Requeue(persistCtx, topic.ID, details.Message)
	} else {
		err = r.store.MarkFailed(persistCtx, topic.ID, details.Message)
	}
	if err != nil {
		logger.Error("failed to persist topic failure", logging.Error(err))
	}
	if !errors.Is(procErr, context.Canceled) {
		if err := r.notifier.NotifyTopicFailed(persistCtx, topic.Topic, procErr, willRetry); err != nil {
			logger.Warn("topic notification failed", logging.Error(err))
		}
	}
	return outcome, true
}

func (r *Runner) runPreflight(ctx context.Context) error {
	if r.preflight == nil {
		return nil
	}
	results := r.preflight(ctx, r.cfg)
	for _, result := range results {
		if result.Passed {
			r.logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logging.ErrorWithContext(r.logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "fix the reported issue and run the batch again"),
		)
	}
	if err := preflight.Summarize(preflight.Failed(results)); err != nil {
		return fmt.Errorf("%w: %w", services.ErrConfiguration, err)
	}
	return nil
}

// cleanStaleWork removes project directories of finished topics once they
// are older than workflow.stale_work_days.
func (r *Runner) cleanStaleWork(ctx context.Context) {
	days := r.cfg.Workflow.StaleWorkDays
	if days <= 0 {
		return
	}
	open, err := r.store.List(ctx, queue.StatusPending, queue.StatusProcessing, queue.StatusFailed)
	if err != nil {
		r.logger.Warn("stale work cleanup skipped", logging.Error(err))
		return
	}
	active := lo.SliceToMap(open, func(t *queue.Topic) (string, struct{}) {
		return t.Slug, struct{}{}
	})
	result := staging.CleanStale(ctx, r.cfg.Paths.WorkDir, time.Duration(days)*24*time.Hour, active, r.logger)
	if len(result.Removed) > 0 {
		r.logger.Info("removed stale work directories",
			logging.Int("count", len(result.Removed)),
			logging.String(logging.FieldEventType, "work_cleanup"),
		)
	}
}
