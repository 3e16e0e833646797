package queue

import (
	"context"
	"fmt"
)

// MarkProcessing claims a pending topic for a run and counts the attempt.
// It returns false when the topic was no longer pending.
func (s *Store) MarkProcessing(ctx context.Context, id int64, runID string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE topics SET status = ?, attempts = attempts + 1, last_run_id = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusProcessing, nullableString(runID), timestamp(), id, StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark processing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkCompleted records the published video and clears any earlier error.
func (s *Store) MarkCompleted(ctx context.Context, id int64, finalFile string) error {
	if err := s.execWithoutResultRetry(ctx,
		`UPDATE topics SET status = ?, final_file = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
		StatusCompleted, nullableString(finalFile), timestamp(), id,
	); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// Requeue returns a topic to pending after a failed run, keeping the error.
func (s *Store) Requeue(ctx context.Context, id int64, message string) error {
	if err := s.execWithoutResultRetry(ctx,
		`UPDATE topics SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		StatusPending, nullableString(message), timestamp(), id,
	); err != nil {
		return fmt.Errorf("requeue topic: %w", err)
	}
	return nil
}

// MarkFailed parks a topic that has exhausted its attempts.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	if err := s.execWithoutResultRetry(ctx,
		`UPDATE topics SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, nullableString(message), timestamp(), id,
	); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// RetryFailed moves failed topics back to pending with a fresh attempt
// count. With no ids every failed topic is retried. Returns the number moved.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	query := `UPDATE topics SET status = ?, attempts = 0, error_message = NULL, updated_at = ? WHERE status = ?`
	args := []any{StatusPending, timestamp(), StatusFailed}
	if len(ids) > 0 {
		query += ` AND id IN (` + makePlaceholders(len(ids)) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry failed: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuckProcessing returns topics left in processing by an interrupted
// run to pending. Returns the number reset.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE topics SET status = ?, updated_at = ? WHERE status = ?`,
		StatusPending, timestamp(), StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck topics: %w", err)
	}
	return res.RowsAffected()
}
