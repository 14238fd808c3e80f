package api

import "scribe/internal/store"

// FromJob converts a stored job into its external view. The transcript body
// is included only when includeTranscript is set; listings stay lightweight.
func FromJob(job store.Job, includeTranscript bool) JobView {
	view := JobView{
		ID:              job.ID,
		SessionID:       job.SessionID,
		Status:          string(job.Status),
		Title:           job.Title,
		SourceURL:       job.SourceURL,
		DurationSeconds: job.DurationSeconds,
		HasTranscript:   job.HasTranscript,
		ErrorMessage:    job.ErrorMessage,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
	if includeTranscript {
		view.Transcript = job.Transcript
	}
	return view
}

// FromEvent converts a stored progress event into its external view.
func FromEvent(event store.TranscriptEvent) EventView {
	return EventView{
		Seq:       event.Seq,
		Content:   event.Content,
		Completed: event.Completed,
		CreatedAt: event.CreatedAt,
	}
}

// FromEvents converts a slice of stored events.
func FromEvents(events []store.TranscriptEvent) []EventView {
	if len(events) == 0 {
		return nil
	}
	views := make([]EventView, 0, len(events))
	for _, event := range events {
		views = append(views, FromEvent(event))
	}
	return views
}
