package progress

import (
	"context"
	"log/slog"
	"sync"

	"scribe/internal/logging"
)

// Event is one progress record delivered to listeners.
type Event struct {
	JobID     string
	Seq       int64
	Content   string
	Completed bool
}

// Recorder persists events and assigns their per-job sequence numbers.
type Recorder interface {
	AppendEvent(ctx context.Context, jobID, content string, completed bool) (int64, error)
}

const subscriberBuffer = 64

// Hub fans events out to in-process subscribers grouped by job. Slow
// subscribers drop events rather than stall the pipeline; the durable log is
// the recovery path.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for one job's events. The returned cancel
// function must be called when the listener goes away.
func (h *Hub) Subscribe(jobID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[chan Event]struct{})
	}
	h.subs[jobID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if listeners, ok := h.subs[jobID]; ok {
				delete(listeners, ch)
				if len(listeners) == 0 {
					delete(h.subs, jobID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to the job's current subscribers.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[event.JobID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Sink is the pipeline's progress outlet: durable append first, broadcast
// second. When the append fails the event is not broadcast.
type Sink struct {
	recorder Recorder
	hub      *Hub
	logger   *slog.Logger
}

// NewSink builds a sink over the given recorder and hub.
func NewSink(recorder Recorder, hub *Hub, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sink{recorder: recorder, hub: hub, logger: logger}
}

// Publish appends the event to the durable log and then fans it out.
func (s *Sink) Publish(ctx context.Context, jobID, content string, completed bool) error {
	seq, err := s.recorder.AppendEvent(ctx, jobID, content, completed)
	if err != nil {
		return err
	}
	event := Event{JobID: jobID, Seq: seq, Content: content, Completed: completed}
	if s.hub != nil {
		s.hub.Publish(event)
	}
	s.logger.Debug("progress event",
		logging.String(logging.FieldJobID, jobID),
		logging.Int64("seq", seq),
		logging.Bool("completed", completed),
		logging.String("content", content),
	)
	return nil
}
