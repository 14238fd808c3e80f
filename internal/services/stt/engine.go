package stt

import (
	"context"
	"io"

	"scribe/internal/services"
)

// Engine transcribes one stored audio object.
type Engine interface {
	// Name identifies the engine in logs and progress events.
	Name() string
	// Transcribe returns the recognized text for the object, or an empty
	// result when the engine heard nothing.
	Transcribe(ctx context.Context, objectKey string) (services.Result, error)
}

// Store is the view of the object store the engines need.
type Store interface {
	ObjectURL(key string) string
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
