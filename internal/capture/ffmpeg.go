//go:build !linux

package capture

import (
	"strconv"

	"github.com/fermentab/bubbler/internal/audio"
)

// buildFFmpegCaptureArgs constructs FFmpeg arguments for mono raw PCM
// capture in the requested format and rate.
func buildFFmpegCaptureArgs(inputFormat, device string, format audio.SampleFormat, rate int) []string {
	return []string{
		"-f", inputFormat,
		"-i", device,
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-vn",
		"-f", ffmpegFormat(format.Key()),
		"-ac", "1",
		"-ar", strconv.Itoa(rate),
		"pipe:1",
	}
}
