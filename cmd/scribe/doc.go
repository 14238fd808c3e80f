// Command scribe is the CLI front end for the scribe daemon. It submits
// transcription jobs over the daemon's HTTP API and renders job state and
// progress feeds in the terminal.
package main
