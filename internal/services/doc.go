// Package services holds the shared contracts between the pipeline and its
// external collaborators: the sentinel error taxonomy used to classify
// failures, context annotations for structured logging, and the Result value
// type that engine and editor clients return instead of bare strings.
package services
