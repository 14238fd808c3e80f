package pipeline

import "math"

// Segment is one fixed transcription window of the source audio.
type Segment struct {
	Index       int
	StartSec    int
	DurationSec int
}

// PlanSegments splits a recording into fixed windows of segmentSeconds. The
// final window is clamped to the end of the recording; windows that would be
// empty are not emitted.
func PlanSegments(totalDuration float64, segmentSeconds int) []Segment {
	if totalDuration <= 0 || segmentSeconds <= 0 {
		return nil
	}
	count := int(math.Ceil(totalDuration / float64(segmentSeconds)))
	segments := make([]Segment, 0, count)
	for i := 0; i < count; i++ {
		start := i * segmentSeconds
		remaining := totalDuration - float64(start)
		if remaining <= 0 {
			break
		}
		duration := segmentSeconds
		if remaining < float64(segmentSeconds) {
			duration = int(math.Ceil(remaining))
		}
		segments = append(segments, Segment{Index: i, StartSec: start, DurationSec: duration})
	}
	return segments
}
