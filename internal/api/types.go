package api

import "time"

// JobView is the external representation of a transcription job.
type JobView struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Status          string    `json:"status"`
	Title           string    `json:"title,omitempty"`
	SourceURL       string    `json:"source_url"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	HasTranscript   bool      `json:"has_transcript"`
	Transcript      string    `json:"transcript,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EventView is the external representation of one progress event.
type EventView struct {
	Seq       int64     `json:"seq"`
	Content   string    `json:"content"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitRequest is the payload for creating a transcription job.
type SubmitRequest struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// SubmitResponse carries the created job.
type SubmitResponse struct {
	Job JobView `json:"job"`
}

// JobResponse carries a single job lookup.
type JobResponse struct {
	Job JobView `json:"job"`
}

// JobListResponse carries a job listing.
type JobListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// EventListResponse carries an event history replay.
type EventListResponse struct {
	Events []EventView `json:"events"`
}
