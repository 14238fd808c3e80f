package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"scribe/internal/config"
	"scribe/internal/pipeline"
	"scribe/internal/progress"
	"scribe/internal/services"
	"scribe/internal/services/source"
	"scribe/internal/store"
	"scribe/internal/testsupport"
)

type fakeResolver struct {
	resolved   source.Resolved
	resolveErr error
	fetchErr   error
}

func (f *fakeResolver) Resolve(context.Context, string) (source.Resolved, error) {
	if f.resolveErr != nil {
		return source.Resolved{}, f.resolveErr
	}
	return f.resolved, nil
}

func (f *fakeResolver) Fetch(context.Context, string) (io.ReadCloser, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return io.NopCloser(strings.NewReader("audio-bytes")), nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string]bool
	puts    []string
	deletes []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string]bool)}
}

func (f *fakeBlobs) Put(_ context.Context, key, _ string, body io.Reader) error {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = true
	f.puts = append(f.puts, key)
	return nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeBlobs) remaining() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for key := range f.objects {
		keys = append(keys, key)
	}
	return keys
}

type fakeEngine struct {
	name string
	mu   sync.Mutex
	call int
	fn   func(call int) (services.Result, error)
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Transcribe(context.Context, string) (services.Result, error) {
	f.mu.Lock()
	f.call++
	call := f.call
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(call)
	}
	return services.Text(fmt.Sprintf("%s matni %d", f.name, call)), nil
}

type fakeEditor struct {
	mu   sync.Mutex
	call int
	fn   func(call int, arabic, grammar string) (services.Result, error)
}

func (f *fakeEditor) Reconcile(_ context.Context, arabic, grammar string) (services.Result, error) {
	f.mu.Lock()
	f.call++
	call := f.call
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(call, arabic, grammar)
	}
	return services.Text(fmt.Sprintf("tahrirlangan %d", call)), nil
}

type fakeMedia struct {
	duration float64
	probeErr error
}

func (f *fakeMedia) ProbeDuration(context.Context, string) (float64, error) {
	if f.probeErr != nil {
		return 0, f.probeErr
	}
	return f.duration, nil
}

func (f *fakeMedia) ExtractSegment(_ context.Context, _ string, _, _ int, destPath string) error {
	return os.WriteFile(destPath, []byte("segment-bytes"), 0o644)
}

type runnerFixture struct {
	cfg      *config.Config
	store    *store.Store
	blobs    *fakeBlobs
	resolver *fakeResolver
	engineA  *fakeEngine
	engineB  *fakeEngine
	editor   *fakeEditor
	media    *fakeMedia
	runner   *pipeline.Runner
}

func newFixture(t *testing.T, mutate func(*runnerFixture)) *runnerFixture {
	t.Helper()
	f := &runnerFixture{
		cfg:   testsupport.NewConfig(t),
		store: testsupport.MustOpenStore(t),
		blobs: newFakeBlobs(),
		resolver: &fakeResolver{resolved: source.Resolved{
			VideoID:  "dQw4w9WgXcQ",
			Title:    "Juma ma'ruzasi",
			AudioURL: "https://cdn.example/a.mp3",
		}},
		engineA: &fakeEngine{name: "recognizer"},
		engineB: &fakeEngine{name: "transcriber"},
		editor:  &fakeEditor{},
		media:   &fakeMedia{duration: 300},
	}
	if mutate != nil {
		mutate(f)
	}
	f.runner = pipeline.NewRunner(f.cfg, pipeline.Deps{
		Store:    f.store,
		Blobs:    f.blobs,
		Resolver: f.resolver,
		EngineA:  f.engineA,
		EngineB:  f.engineB,
		Editor:   f.editor,
		Media:    f.media,
		Sink:     progress.NewSink(f.store, progress.NewHub(), nil),
	})
	return f
}

func (f *runnerFixture) newJob(t *testing.T) *store.Job {
	t.Helper()
	job, err := f.store.NewJob(context.Background(), "session-1", "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	return job
}

func TestRunCompletesMultiSegmentJob(t *testing.T) {
	f := newFixture(t, nil)
	job := f.newJob(t)
	ctx := context.Background()

	if err := f.runner.Run(ctx, job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	final, err := f.store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if final.Status != store.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", final.Status, final.ErrorMessage)
	}
	if final.Title != "Juma ma'ruzasi" || final.DurationSeconds != 300 {
		t.Fatalf("metadata not recorded: %+v", final)
	}
	if !final.HasTranscript {
		t.Fatal("transcript not saved")
	}
	if !strings.Contains(final.Transcript, "tahrirlangan 1") || !strings.Contains(final.Transcript, "tahrirlangan 2") {
		t.Fatalf("transcript missing segment texts: %s", final.Transcript)
	}
	if !strings.Contains(final.Transcript, "Juma ma'ruzasi") {
		t.Fatalf("transcript missing title: %s", final.Transcript)
	}

	// 300s at 150s windows means two segments; both engines ran per segment.
	if f.engineA.call != 2 || f.engineB.call != 2 || f.editor.call != 2 {
		t.Fatalf("unexpected call counts a=%d b=%d editor=%d", f.engineA.call, f.engineB.call, f.editor.call)
	}

	events, err := f.store.EventsSince(ctx, job.ID, 0)
	if err != nil {
		t.Fatalf("EventsSince: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("no progress events recorded")
	}
	last := events[len(events)-1]
	if !last.Completed {
		t.Fatalf("last event must be terminal: %+v", last)
	}
	if last.Content != final.Transcript {
		t.Fatal("terminal event must carry the final transcript")
	}
	for _, event := range events[:len(events)-1] {
		if event.Completed {
			t.Fatalf("non-final event marked completed: %+v", event)
		}
	}

	if remaining := f.blobs.remaining(); len(remaining) != 0 {
		t.Fatalf("artifacts left in store: %v", remaining)
	}
}

func TestRunRetriesSegmentThenSucceeds(t *testing.T) {
	f := newFixture(t, func(f *runnerFixture) {
		f.media.duration = 150
		f.engineB.fn = func(call int) (services.Result, error) {
			if call == 1 {
				return services.Empty(), nil
			}
			return services.Text("ikkinchi urinish matni"), nil
		}
	})
	job := f.newJob(t)
	ctx := context.Background()

	if err := f.runner.Run(ctx, job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	final, _ := f.store.GetJob(ctx, job.ID)
	if final.Status != store.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", final.Status, final.ErrorMessage)
	}
	if f.engineB.call != 2 {
		t.Fatalf("expected a second engine attempt, got %d", f.engineB.call)
	}
	// The empty first attempt was announced as a retry.
	events, _ := f.store.EventsSince(ctx, job.ID, 0)
	var sawRetry bool
	for _, event := range events {
		if strings.Contains(event.Content, "Qayta urinilmoqda") {
			sawRetry = true
		}
	}
	if !sawRetry {
		t.Fatal("expected a retry event")
	}
	if remaining := f.blobs.remaining(); len(remaining) != 0 {
		t.Fatalf("artifacts left in store: %v", remaining)
	}
}

func TestRunFailsAfterAttemptBudget(t *testing.T) {
	f := newFixture(t, func(f *runnerFixture) {
		f.cfg.Pipeline.MaxAttempts = 2
		f.media.duration = 150
		f.editor.fn = func(int, string, string) (services.Result, error) {
			return services.Empty(), services.Wrap(services.ErrEdit, "editor", "reconcile", "model unavailable", nil)
		}
	})
	job := f.newJob(t)
	ctx := context.Background()

	err := f.runner.Run(ctx, job.ID)
	if err == nil {
		t.Fatal("expected run to fail")
	}

	final, _ := f.store.GetJob(ctx, job.ID)
	if final.Status != store.StatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	if final.ErrorMessage == "" {
		t.Fatal("expected recorded error message")
	}
	if f.editor.call != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", f.editor.call)
	}

	events, _ := f.store.EventsSince(ctx, job.ID, 0)
	if len(events) == 0 || !events[len(events)-1].Completed {
		t.Fatal("expected terminal failure event")
	}
	if remaining := f.blobs.remaining(); len(remaining) != 0 {
		t.Fatalf("artifacts left in store: %v", remaining)
	}
}

func TestRunSkipsExhaustedSegmentAndContinues(t *testing.T) {
	f := newFixture(t, func(f *runnerFixture) {
		f.cfg.Pipeline.MaxAttempts = 2
		f.media.duration = 300
		f.editor.fn = func(call int, _, _ string) (services.Result, error) {
			// The first segment burns its whole budget; the second succeeds.
			if call <= 2 {
				return services.Empty(), services.Wrap(services.ErrEdit, "editor", "reconcile", "model unavailable", nil)
			}
			return services.Text(fmt.Sprintf("tahrirlangan %d", call)), nil
		}
	})
	job := f.newJob(t)
	ctx := context.Background()

	if err := f.runner.Run(ctx, job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	final, _ := f.store.GetJob(ctx, job.ID)
	if final.Status != store.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", final.Status, final.ErrorMessage)
	}
	if !strings.Contains(final.Transcript, "tahrirlangan 3") {
		t.Fatalf("transcript missing surviving segment: %s", final.Transcript)
	}
	if strings.Contains(final.Transcript, "tahrirlangan 1") || strings.Contains(final.Transcript, "tahrirlangan 2") {
		t.Fatalf("abandoned segment leaked into transcript: %s", final.Transcript)
	}
	if remaining := f.blobs.remaining(); len(remaining) != 0 {
		t.Fatalf("artifacts left in store: %v", remaining)
	}
}

func TestRunUnparseableURLFailsBeforeResolve(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	job, err := f.store.NewJob(ctx, "session-1", "https://example.com/not-a-video")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	if err := f.runner.Run(ctx, job.ID); !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected source error, got %v", err)
	}

	final, _ := f.store.GetJob(ctx, job.ID)
	if final.Status != store.StatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	if len(f.blobs.puts) != 0 {
		t.Fatalf("no artifacts should be uploaded, got %v", f.blobs.puts)
	}
	events, _ := f.store.EventsSince(ctx, job.ID, 0)
	var sawNoID bool
	for _, event := range events {
		if strings.Contains(event.Content, "Videoning ID sini ajratib olib bo'lmadi") {
			sawNoID = true
		}
	}
	if !sawNoID {
		t.Fatal("expected the missing-video-id event")
	}
}

func TestRunSourceFailureIsFatal(t *testing.T) {
	f := newFixture(t, func(f *runnerFixture) {
		f.resolver.resolveErr = services.Wrap(services.ErrSourceUnavailable, "source", "resolve", "video unavailable", nil)
	})
	job := f.newJob(t)
	ctx := context.Background()

	err := f.runner.Run(ctx, job.ID)
	if !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected source error, got %v", err)
	}

	final, _ := f.store.GetJob(ctx, job.ID)
	if final.Status != store.StatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	if len(f.blobs.puts) != 0 {
		t.Fatalf("no artifacts should be uploaded, got %v", f.blobs.puts)
	}
	events, _ := f.store.EventsSince(ctx, job.ID, 0)
	if len(events) == 0 || !events[len(events)-1].Completed {
		t.Fatal("expected terminal failure event")
	}
}

func TestRunProbeFailureCleansUpFullAudio(t *testing.T) {
	f := newFixture(t, func(f *runnerFixture) {
		f.media.probeErr = services.Wrap(services.ErrExtraction, "media", "inspect", "no duration reported", nil)
	})
	job := f.newJob(t)

	if err := f.runner.Run(context.Background(), job.ID); err == nil {
		t.Fatal("expected run to fail")
	}
	if remaining := f.blobs.remaining(); len(remaining) != 0 {
		t.Fatalf("full audio artifact not deleted: %v", remaining)
	}
	if len(f.blobs.puts) != 1 {
		t.Fatalf("expected single full-audio upload, got %v", f.blobs.puts)
	}
}

func TestRunMarksSessionCompleted(t *testing.T) {
	f := newFixture(t, func(f *runnerFixture) {
		f.media.duration = 150
	})
	ctx := context.Background()
	if err := f.store.EnsureSession(ctx, "session-1"); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	job := f.newJob(t)

	if err := f.runner.Run(ctx, job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}
	status, err := f.store.SessionStatus(ctx, "session-1")
	if err != nil {
		t.Fatalf("SessionStatus: %v", err)
	}
	if status != store.SessionCompleted {
		t.Fatalf("expected completed session, got %q", status)
	}
}
