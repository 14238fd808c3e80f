package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"scribe/internal/services"
)

// ExtractSegment cuts a time window out of a source audio file and encodes it
// as MP3 at dest. startSec is the window start, durationSec its length. ffmpeg
// clamps the final window to the end of the stream, so short tails need no
// special handling here.
func ExtractSegment(ctx context.Context, ffmpegBinary, source string, startSec, durationSec int, dest string) error {
	if startSec < 0 {
		return services.Wrap(services.ErrExtraction, "media", "extract", fmt.Sprintf("invalid start %d", startSec), nil)
	}
	if durationSec <= 0 {
		return services.Wrap(services.ErrExtraction, "media", "extract", fmt.Sprintf("invalid duration %d", durationSec), nil)
	}
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%d", startSec),
		"-t", fmt.Sprintf("%d", durationSec),
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-c:a", "libmp3lame",
		"-q:a", "4",
		dest,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		detail := fmt.Sprintf("ffmpeg: %s", strings.TrimSpace(string(output)))
		return services.Wrap(services.ErrExtraction, "media", "extract", detail, err)
	}
	return nil
}
