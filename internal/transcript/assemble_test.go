package transcript

import (
	"strings"
	"testing"
	"time"
)

func TestCombineJoinsSegmentsAndStripsMarkers(t *testing.T) {
	combined := Combine([]string{
		"Birinchi qism matni.",
		"Ikkinchi (((shubhali))) so'z.",
		"",
		"  Uchinchi qism.  ",
	})
	want := "Birinchi qism matni.\n\nIkkinchi shubhali so'z.\n\nUchinchi qism."
	if combined != want {
		t.Fatalf("unexpected combined text:\n%q\nwant:\n%q", combined, want)
	}
}

func TestCombineEmptyInput(t *testing.T) {
	if got := Combine(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, "0 soniya"},
		{42 * time.Second, "42 soniya"},
		{5 * time.Minute, "5 daqiqa"},
		{5*time.Minute + 20*time.Second, "5 daqiqa 20 soniya"},
		{time.Hour + 5*time.Minute + 20*time.Second, "1 soat 5 daqiqa 20 soniya"},
		{-time.Minute, "0 soniya"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.elapsed); got != tc.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tc.elapsed, got, tc.want)
		}
	}
}

func TestRenderWrapsTitleAndBody(t *testing.T) {
	rendered := Render("Juma ma'ruzasi", "Matn tanasi.", 90*time.Second)
	if !strings.Contains(rendered, "<h1") || !strings.Contains(rendered, "Juma ma'ruzasi") {
		t.Fatalf("missing title heading: %s", rendered)
	}
	if !strings.Contains(rendered, "1 daqiqa 30 soniya") {
		t.Fatalf("missing elapsed time: %s", rendered)
	}
	if !strings.Contains(rendered, `<p style="text-indent: 30px;">Matn tanasi.</p>`) {
		t.Fatalf("missing body paragraph: %s", rendered)
	}
}

func TestRenderTransliteratesBody(t *testing.T) {
	rendered := Render("Dars", "Тошкент шаҳри", time.Second)
	if !strings.Contains(rendered, "Toshkent shahri") {
		t.Fatalf("body not transliterated: %s", rendered)
	}
}
