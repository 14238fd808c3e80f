// Package daemon wires the transcription pipeline together and runs it as a
// long-lived background service: single-instance locking, job dispatch with a
// concurrency cap, and the HTTP API the CLI and listeners talk to.
package daemon
