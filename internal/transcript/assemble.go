package transcript

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Engines wrap uncertain words in triple parentheses. The markers are
// stripped during assembly but the words themselves are kept.
var uncertainMarker = regexp.MustCompile(`\(\(\((.*?)\)\)\)`)

// Combine joins the per-segment edited texts in segment order and strips
// uncertainty markers.
func Combine(segments []string) string {
	cleaned := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment = strings.TrimSpace(segment); segment != "" {
			cleaned = append(cleaned, segment)
		}
	}
	combined := strings.Join(cleaned, "\n\n")
	return uncertainMarker.ReplaceAllString(combined, "$1")
}

// FormatDuration renders an elapsed duration in Uzbek for the transcript
// header, e.g. "1 soat 5 daqiqa 20 soniya".
func FormatDuration(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	elapsed = elapsed.Round(time.Second)
	hours := int(elapsed.Hours())
	minutes := int(elapsed.Minutes()) % 60
	seconds := int(elapsed.Seconds()) % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d soat", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d daqiqa", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d soniya", seconds))
	}
	return strings.Join(parts, " ")
}

// Render produces the final presentation transcript: an elapsed-time banner,
// the title as a heading, and the combined text transliterated to Uzbek Latin.
func Render(title, combined string, elapsed time.Duration) string {
	return fmt.Sprintf(
		`<i style="display: block; font-style: italic; text-align: center;">🕒 Arginalni yozib chiqish uchun: %s vaqt ketdi!</i><h1 style="font-weight: 700; font-size: 1.8rem; margin: 1rem 0; text-align: center; line-height: 1;">%s</h1>`+"\n\n"+`<p style="text-indent: 30px;">%s</p>`,
		FormatDuration(elapsed),
		title,
		ConvertToUzbekLatin(combined),
	)
}
