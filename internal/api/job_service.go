package api

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"scribe/internal/services/source"
	"scribe/internal/store"
)

// ErrInvalidURL reports a submission whose URL carries no recognizable video.
var ErrInvalidURL = errors.New("invalid media url")

// JobService provides job operations over the store for transport layers.
type JobService struct {
	store *store.Store
}

// NewJobService constructs a JobService.
func NewJobService(st *store.Store) *JobService {
	return &JobService{store: st}
}

// Submit validates the URL and creates a pending job. A blank session ID gets
// a generated one so every job belongs to a session.
func (s *JobService) Submit(ctx context.Context, sessionID, mediaURL string) (JobView, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	if _, err := source.ExtractVideoID(mediaURL); err != nil {
		return JobView{}, ErrInvalidURL
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if err := s.store.EnsureSession(ctx, sessionID); err != nil {
		return JobView{}, err
	}
	job, err := s.store.NewJob(ctx, sessionID, mediaURL)
	if err != nil {
		return JobView{}, err
	}
	return FromJob(*job, false), nil
}

// Describe returns one job with its transcript, or nil when unknown.
func (s *JobService) Describe(ctx context.Context, jobID string) (*JobView, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}
	view := FromJob(*job, true)
	return &view, nil
}

// List returns jobs, optionally filtered by status.
func (s *JobService) List(ctx context.Context, statuses ...store.Status) ([]JobView, error) {
	jobs, err := s.store.ListJobs(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, FromJob(*job, false))
	}
	return views, nil
}

// EventsSince replays a job's progress events after the given sequence.
func (s *JobService) EventsSince(ctx context.Context, jobID string, afterSeq int64) ([]EventView, error) {
	events, err := s.store.EventsSince(ctx, jobID, afterSeq)
	if err != nil {
		return nil, err
	}
	return FromEvents(events), nil
}
