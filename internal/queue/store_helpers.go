package queue

import (
	"database/sql"
	"errors"
	"time"
)

const topicColumns = "id, topic, slug, status, attempts, error_message, final_file, last_run_id, created_at, updated_at"

func scanTopic(scanner interface{ Scan(dest ...any) error }) (*Topic, error) {
	var (
		id           int64
		topic        string
		slug         string
		statusStr    string
		attempts     int
		errorMessage sql.NullString
		finalFile    sql.NullString
		lastRunID    sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&topic,
		&slug,
		&statusStr,
		&attempts,
		&errorMessage,
		&finalFile,
		&lastRunID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Topic{
		ID:           id,
		Topic:        topic,
		Slug:         slug,
		Status:       Status(statusStr),
		Attempts:     attempts,
		ErrorMessage: errorMessage.String,
		FinalFile:    finalFile.String,
		LastRunID:    lastRunID.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func scanTopics(rows *sql.Rows) ([]*Topic, error) {
	defer rows.Close()
	var topics []*Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
