// Package pipeline runs transcription jobs end to end: source resolution,
// audio staging, fixed-window segmentation, dual-engine transcription,
// reconciliation, and final transcript assembly. Job state and progress
// events are persisted after every step so listeners can replay the run.
package pipeline
