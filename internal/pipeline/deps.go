package pipeline

import (
	"context"
	"io"

	"scribe/internal/services"
	"scribe/internal/services/source"
)

// Resolver turns a submitted media URL into a downloadable audio stream.
type Resolver interface {
	Resolve(ctx context.Context, mediaURL string) (source.Resolved, error)
	Fetch(ctx context.Context, audioURL string) (io.ReadCloser, error)
}

// BlobStore is the slice of the object store the pipeline uses.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
}

// Editor reconciles the two engine transcripts of one segment.
type Editor interface {
	Reconcile(ctx context.Context, arabicText, grammarText string) (services.Result, error)
}

// Media performs local audio inspection and extraction.
type Media interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	ExtractSegment(ctx context.Context, sourcePath string, startSec, durationSec int, destPath string) error
}
