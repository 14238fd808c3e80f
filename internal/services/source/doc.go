// Package source resolves public media URLs into downloadable audio.
//
// Resolution runs through a hosted conversion API: the video ID is extracted
// from the submitted URL, the API converts the video's audio track to MP3, and
// the client downloads the result. All failures in this package map to the
// source-unavailable error class, which the pipeline treats as fatal for the
// job rather than retryable.
package source
