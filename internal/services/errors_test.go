package services_test

import (
	"errors"
	"strings"
	"testing"

	"scribe/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrEngine, "engine-a", "transcribe", "segment 3", cause)

	if !errors.Is(err, services.ErrEngine) {
		t.Fatalf("expected error tagged with ErrEngine, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
	for _, fragment := range []string{"engine-a", "transcribe", "segment 3"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "store", "delete", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"source", services.Wrap(services.ErrSourceUnavailable, "source", "resolve", "", nil), false},
		{"configuration", services.Wrap(services.ErrConfiguration, "editor", "", "api key required", nil), false},
		{"engine", services.Wrap(services.ErrEngine, "engine-b", "transcribe", "", nil), true},
		{"extraction", services.Wrap(services.ErrExtraction, "media", "cut", "", nil), true},
		{"store", services.Wrap(services.ErrStore, "store", "put", "", nil), true},
		{"untagged", errors.New("boom"), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.IsRetryable(tc.err); got != tc.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestResultCollapsesWhitespace(t *testing.T) {
	if r := services.Text("   "); r.Ok() {
		t.Fatal("whitespace-only text should be empty")
	}
	r := services.Text("  salom  ")
	if !r.Ok() || r.Value() != "salom" {
		t.Fatalf("unexpected result: ok=%v value=%q", r.Ok(), r.Value())
	}
	if services.Empty().Ok() {
		t.Fatal("Empty must not report Ok")
	}
}
