package queue

import "time"

// Status represents the lifecycle state of a topic.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var validStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusProcessing: {},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// ParseStatus validates a user supplied status name.
func ParseStatus(value string) (Status, bool) {
	status := Status(value)
	_, ok := validStatuses[status]
	return status, ok
}

// Topic is one queued reel subject.
type Topic struct {
	ID           int64
	Topic        string
	Slug         string
	Status       Status
	Attempts     int
	ErrorMessage string
	FinalFile    string
	LastRunID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AddResult reports the outcome of Add or ImportFile.
type AddResult struct {
	Added []*Topic
	// Duplicates holds topics whose slug was already queued.
	Duplicates []string
}

// Stats summarizes topic counts by status.
type Stats struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Total returns the number of topics across all statuses.
func (s Stats) Total() int {
	return s.Pending + s.Processing + s.Completed + s.Failed
}
