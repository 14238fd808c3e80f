package blobstore_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scribe/internal/blobstore"
	"scribe/internal/config"
	"scribe/internal/services"
)

func newClient(t *testing.T, handler http.Handler) *blobstore.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return blobstore.NewClient(config.BlobStore{
		Endpoint: server.URL,
		Bucket:   "scribe-audio",
		APIKey:   "token",
	})
}

func TestPutSendsObjectWithAuth(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))

	err := client.Put(context.Background(), blobstore.FullAudioKey("job-1"), "audio/mpeg", strings.NewReader("audio-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if gotPath != "/scribe-audio/full_audio_job-1" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer token" {
		t.Fatalf("unexpected auth %q", gotAuth)
	}
	if gotBody != "audio-bytes" {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestPutFailureWrapsStoreError(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusServiceUnavailable)
	}))

	err := client.Put(context.Background(), "key", "", strings.NewReader("x"))
	if !errors.Is(err, services.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected status in message, got %v", err)
	}
}

func TestOpenStreamsObject(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scribe-audio/segment_job-1_2.mp3" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("segment-bytes"))
	}))

	reader, err := client.Open(context.Background(), blobstore.SegmentKey("job-1", 2))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "segment-bytes" {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestDeleteMissingObjectIsNoError(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	if err := client.Delete(context.Background(), "absent"); err != nil {
		t.Fatalf("Delete of absent object: %v", err)
	}
}

func TestMissingConfigurationRejected(t *testing.T) {
	client := blobstore.NewClient(config.BlobStore{})
	err := client.Put(context.Background(), "key", "", strings.NewReader("x"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestObjectKeys(t *testing.T) {
	if key := blobstore.FullAudioKey("abc"); key != "full_audio_abc" {
		t.Fatalf("unexpected full audio key %q", key)
	}
	if key := blobstore.SegmentKey("abc", 0); key != "segment_abc_0.mp3" {
		t.Fatalf("unexpected segment key %q", key)
	}
}
