// Package media shells out to ffmpeg and ffprobe for audio inspection and
// fixed-window segment extraction.
package media
