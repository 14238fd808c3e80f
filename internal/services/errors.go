package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceUnavailable marks a media URL that cannot be resolved or fetched.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrStore marks a remote object store failure.
	ErrStore = errors.New("object store error")
	// ErrExtraction marks a segment extraction failure.
	ErrExtraction = errors.New("extraction error")
	// ErrEngine marks a speech-to-text provider failure.
	ErrEngine = errors.New("engine error")
	// ErrEdit marks a transcript editing failure.
	ErrEdit = errors.New("edit error")
	// ErrConfiguration marks missing or invalid client configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures with no more specific classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetryable reports whether an error should trigger another segment attempt
// rather than aborting the job. Source and configuration failures are fatal;
// engine, edit, and store errors are retried within the attempt budget.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrSourceUnavailable), errors.Is(err, ErrConfiguration):
		return false
	default:
		return true
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
