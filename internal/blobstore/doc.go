// Package blobstore client for the remote object store holding transient
// audio artifacts. Full-recording uploads and per-segment clips live under
// deterministic keys so the pipeline can delete them without bookkeeping.
package blobstore
