package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fermentab/bubbler/internal/audio"
)

func TestFFmpegFormatCoversAllSampleFormats(t *testing.T) {
	for _, key := range audio.Formats() {
		assert.NotEmpty(t, ffmpegFormat(key), "no FFmpeg PCM name for %s", key)
	}
}

func TestFFmpegFormatUnknownKey(t *testing.T) {
	assert.Empty(t, ffmpegFormat("U8"))
}
