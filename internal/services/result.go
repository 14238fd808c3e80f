package services

import "strings"

// Result is the outcome of a transcription or editing call. It distinguishes
// usable text from an empty response, so callers decide retry-versus-proceed
// on the value instead of testing for empty strings.
type Result struct {
	text string
	ok   bool
}

// Text builds a Result carrying transcript text. Whitespace-only input
// collapses to Empty.
func Text(value string) Result {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Empty()
	}
	return Result{text: trimmed, ok: true}
}

// Empty builds a Result representing a response with no usable text.
func Empty() Result {
	return Result{}
}

// Ok reports whether the result carries usable text.
func (r Result) Ok() bool {
	return r.ok
}

// Value returns the carried text. It is empty unless Ok reports true.
func (r Result) Value() string {
	return r.text
}
