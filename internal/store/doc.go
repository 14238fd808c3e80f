// Package store persists transcription jobs, sessions, and the append-only
// transcript event log in SQLite.
//
// The pipeline is the only writer of job state; the API and CLI are readers.
// Events carry a per-job monotonically increasing sequence number, making the
// log the authoritative progress history a disconnected listener can replay.
package store
