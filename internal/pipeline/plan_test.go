package pipeline

import "testing"

func TestPlanSegmentsFixedWindows(t *testing.T) {
	segments := PlanSegments(450, 150)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	for i, segment := range segments {
		if segment.Index != i {
			t.Fatalf("segment %d has index %d", i, segment.Index)
		}
		if segment.StartSec != i*150 {
			t.Fatalf("segment %d starts at %d", i, segment.StartSec)
		}
		if segment.DurationSec != 150 {
			t.Fatalf("segment %d duration %d", i, segment.DurationSec)
		}
	}
}

func TestPlanSegmentsClampsFinalWindow(t *testing.T) {
	segments := PlanSegments(310, 150)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	last := segments[2]
	if last.StartSec != 300 || last.DurationSec != 10 {
		t.Fatalf("unexpected final window %+v", last)
	}
}

func TestPlanSegmentsOneSecondTail(t *testing.T) {
	segments := PlanSegments(151, 150)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].StartSec != 0 || segments[0].DurationSec != 150 {
		t.Fatalf("unexpected first window %+v", segments[0])
	}
	if segments[1].StartSec != 150 || segments[1].DurationSec != 1 {
		t.Fatalf("unexpected tail window %+v", segments[1])
	}
}

func TestPlanSegmentsShortRecording(t *testing.T) {
	segments := PlanSegments(42.5, 150)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].StartSec != 0 || segments[0].DurationSec != 43 {
		t.Fatalf("unexpected window %+v", segments[0])
	}
}

func TestPlanSegmentsRejectsBadInput(t *testing.T) {
	if got := PlanSegments(0, 150); got != nil {
		t.Fatalf("expected nil for zero duration, got %+v", got)
	}
	if got := PlanSegments(-10, 150); got != nil {
		t.Fatalf("expected nil for negative duration, got %+v", got)
	}
	if got := PlanSegments(100, 0); got != nil {
		t.Fatalf("expected nil for zero window, got %+v", got)
	}
}
