package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a transcription job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{StatusPending, StatusRunning, StatusCompleted, StatusFailed}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job represents a transcription job persisted in SQLite. The pipeline is the
// only writer; API and CLI read.
type Job struct {
	ID              string
	SessionID       string
	Status          Status
	Title           string
	SourceURL       string
	DurationSeconds float64
	Transcript      string
	HasTranscript   bool
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TranscriptEvent is one durable progress record for a job. Events are
// append-only; Seq increases monotonically within a job.
type TranscriptEvent struct {
	ID        int64
	JobID     string
	Seq       int64
	Content   string
	Completed bool
	CreatedAt time.Time
}
