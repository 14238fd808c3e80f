package media

import "testing"

func TestDurationSecondsPrefersFormat(t *testing.T) {
	result := ProbeResult{
		Streams: []ProbeStream{{CodecType: "audio", Duration: "100.5"}},
		Format:  ProbeFormat{Duration: "123.45"},
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestDurationSecondsFallsBackToStream(t *testing.T) {
	result := ProbeResult{
		Streams: []ProbeStream{
			{CodecType: "video"},
			{CodecType: "audio", Duration: "88.2"},
		},
		Format: ProbeFormat{Duration: "bad"},
	}
	if result.DurationSeconds() != 88.2 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("unexpected audio stream count: %d", result.AudioStreamCount())
	}
}

func TestDurationSecondsMissing(t *testing.T) {
	result := ProbeResult{Format: ProbeFormat{Duration: ""}}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected 0, got %v", result.DurationSeconds())
	}
}
