// Package api exposes the job-facing service layer and the response types
// shared between the daemon's HTTP surface and the CLI.
package api
