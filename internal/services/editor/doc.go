// Package editor reconciles the two engine transcripts of a segment into one
// corrected text using a chat-completion model.
package editor
