package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"scribe/internal/api"
	"scribe/internal/progress"
	"scribe/internal/store"
	"scribe/internal/testsupport"
)

// scriptedRunner drives jobs to a terminal state without the real pipeline.
type scriptedRunner struct {
	store *store.Store
	sink  *progress.Sink

	mu   sync.Mutex
	runs []string
	done chan string
}

func newScriptedRunner(st *store.Store, sink *progress.Sink) *scriptedRunner {
	return &scriptedRunner{store: st, sink: sink, done: make(chan string, 8)}
}

func (r *scriptedRunner) Run(ctx context.Context, jobID string) error {
	r.mu.Lock()
	r.runs = append(r.runs, jobID)
	r.mu.Unlock()

	if err := r.store.MarkRunning(ctx, jobID); err != nil {
		return err
	}
	if err := r.sink.Publish(ctx, jobID, "boshlandi", false); err != nil {
		return err
	}
	if err := r.store.SaveFinalTranscript(ctx, jobID, "<p>matn</p>"); err != nil {
		return err
	}
	if err := r.store.MarkCompleted(ctx, jobID); err != nil {
		return err
	}
	if err := r.sink.Publish(ctx, jobID, "<p>matn</p>", true); err != nil {
		return err
	}
	r.done <- jobID
	return nil
}

type fixture struct {
	daemon *Daemon
	runner *scriptedRunner
	store  *store.Store
	base   string
}

func newDaemonFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = "127.0.0.1:0"

	st := testsupport.MustOpenStore(t)
	hub := progress.NewHub()
	runner := newScriptedRunner(st, progress.NewSink(st, hub, nil))

	d, err := New(cfg, st, runner, hub, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)

	return &fixture{
		daemon: d,
		runner: runner,
		store:  st,
		base:   "http://" + d.api.addr(),
	}
}

func (f *fixture) waitForRun(t *testing.T) string {
	t.Helper()
	select {
	case jobID := <-f.runner.done:
		return jobID
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
		return ""
	}
}

func TestSubmitDispatchesJob(t *testing.T) {
	f := newDaemonFixture(t)

	view, err := f.daemon.Submit(context.Background(), "session-1", "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ran := f.waitForRun(t); ran != view.ID {
		t.Fatalf("expected run of %s, got %s", view.ID, ran)
	}

	job, err := f.store.GetJob(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.Status != store.StatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = "127.0.0.1:0"
	st := testsupport.MustOpenStore(t)
	hub := progress.NewHub()
	runner := newScriptedRunner(st, progress.NewSink(st, hub, nil))

	first, err := New(cfg, st, runner, hub, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(first.Stop)

	second, err := New(cfg, st, runner, hub, nil)
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be rejected")
	}
}

func TestHTTPSubmitAndDescribe(t *testing.T) {
	f := newDaemonFixture(t)

	payload, _ := json.Marshal(api.SubmitRequest{URL: "https://youtu.be/dQw4w9WgXcQ", SessionID: "session-1"})
	resp, err := http.Post(f.base+"/api/jobs", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	var submitted api.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	f.waitForRun(t)

	jobResp, err := http.Get(f.base + "/api/jobs/" + submitted.Job.ID)
	if err != nil {
		t.Fatalf("GET job: %v", err)
	}
	defer jobResp.Body.Close()
	var described api.JobResponse
	if err := json.NewDecoder(jobResp.Body).Decode(&described); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if described.Job.Status != string(store.StatusCompleted) {
		t.Fatalf("expected completed, got %s", described.Job.Status)
	}
	if described.Job.Transcript == "" {
		t.Fatal("expected transcript in description")
	}
}

func TestHTTPSubmitRejectsBadURL(t *testing.T) {
	f := newDaemonFixture(t)

	payload, _ := json.Marshal(api.SubmitRequest{URL: "https://example.com/x"})
	resp, err := http.Post(f.base+"/api/jobs", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestHTTPEventReplayJSON(t *testing.T) {
	f := newDaemonFixture(t)

	view, err := f.daemon.Submit(context.Background(), "session-1", "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	f.waitForRun(t)

	resp, err := http.Get(f.base + "/api/jobs/" + view.ID + "/events")
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()
	var events api.EventListResponse
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events.Events) != 2 {
		t.Fatalf("expected 2 events, got %+v", events.Events)
	}
	if !events.Events[len(events.Events)-1].Completed {
		t.Fatal("expected terminal last event")
	}
}

func TestHTTPEventStreamReplaysToTerminal(t *testing.T) {
	f := newDaemonFixture(t)

	view, err := f.daemon.Submit(context.Background(), "session-1", "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	f.waitForRun(t)

	resp, err := http.Get(f.base + "/api/jobs/" + view.ID + "/events?follow=1")
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}

	// The job is terminal, so the stream replays and then closes.
	var ids []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "id: ") {
			ids = append(ids, strings.TrimPrefix(line, "id: "))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan stream: %v", err)
	}
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Fatalf("unexpected event ids %v", ids)
	}
}

func TestHTTPUnknownJob(t *testing.T) {
	f := newDaemonFixture(t)
	resp, err := http.Get(f.base + "/api/jobs/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}
