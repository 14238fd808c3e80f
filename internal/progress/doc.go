// Package progress publishes job progress events. Every event is written to
// the durable event log first and only then fanned out to in-process
// listeners, so a listener that reconnects can replay the log and never sees
// an event the log does not hold.
package progress
