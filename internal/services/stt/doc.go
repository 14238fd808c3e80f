// Package stt provides the two speech-to-text engine clients used for each
// audio segment. The first engine consumes a stored object by reference, the
// second uploads the audio bytes directly. Both report no-speech responses as
// an empty result rather than an error so the caller can decide whether a
// silent segment is acceptable.
package stt
