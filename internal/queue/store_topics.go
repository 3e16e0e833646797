package queue

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"reelsmith/internal/textutil"
)

// Add enqueues topics in order. Blank entries are ignored; topics whose slug
// is already queued (in any status) are reported as duplicates.
func (s *Store) Add(ctx context.Context, topics ...string) (AddResult, error) {
	var result AddResult
	for _, raw := range topics {
		topic := strings.TrimSpace(raw)
		if topic == "" {
			continue
		}
		slug := textutil.Slug(topic)
		now := timestamp()
		res, err := s.execWithRetry(ctx,
			`INSERT INTO topics (topic, slug, status, attempts, created_at, updated_at)
             VALUES (?, ?, ?, 0, ?, ?)
             ON CONFLICT(slug) DO NOTHING`,
			topic, slug, StatusPending, now, now,
		)
		if err != nil {
			return result, fmt.Errorf("insert topic: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return result, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			result.Duplicates = append(result.Duplicates, topic)
			continue
		}
		id, err := res.LastInsertId()
		if err != nil {
			return result, fmt.Errorf("last insert id: %w", err)
		}
		item, err := s.GetByID(ctx, id)
		if err != nil {
			return result, err
		}
		result.Added = append(result.Added, item)
	}
	return result, nil
}

// ImportFile enqueues one topic per non-blank line of path. Lines starting
// with '#' are comments.
func (s *Store) ImportFile(ctx context.Context, path string) (AddResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return AddResult{}, fmt.Errorf("open topics file: %w", err)
	}
	defer file.Close()

	var topics []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		topics = append(topics, line)
	}
	if err := scanner.Err(); err != nil {
		return AddResult{}, fmt.Errorf("read topics file: %w", err)
	}
	return s.Add(ctx, topics...)
}

// GetByID fetches a topic by identifier. Missing topics return nil, nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Topic, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+topicColumns+` FROM topics WHERE id = ?`, id)
	topic, err := scanTopic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}
	return topic, nil
}

// NextPending returns up to limit pending topics in FIFO order.
func (s *Store) NextPending(ctx context.Context, limit int) ([]*Topic, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+topicColumns+` FROM topics WHERE status = ? ORDER BY id LIMIT ?`,
		StatusPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("next pending: %w", err)
	}
	return scanTopics(rows)
}

// List returns topics in id order, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return scanTopics(rows)
}
