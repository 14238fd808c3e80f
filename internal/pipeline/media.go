package pipeline

import (
	"context"

	"scribe/internal/config"
	"scribe/internal/media"
)

// ffmpegMedia implements Media by shelling out to the configured binaries.
type ffmpegMedia struct {
	ffmpeg  string
	ffprobe string
}

// NewMedia returns the ffmpeg-backed Media implementation.
func NewMedia(cfg config.Pipeline) Media {
	return ffmpegMedia{ffmpeg: cfg.FFmpegBinary, ffprobe: cfg.FFprobeBinary}
}

func (m ffmpegMedia) ProbeDuration(ctx context.Context, path string) (float64, error) {
	return media.ProbeDuration(ctx, m.ffprobe, path)
}

func (m ffmpegMedia) ExtractSegment(ctx context.Context, sourcePath string, startSec, durationSec int, destPath string) error {
	return media.ExtractSegment(ctx, m.ffmpeg, sourcePath, startSec, durationSec, destPath)
}
