package capture

// ffmpegFormats maps arecord-style sample format keys to the FFmpeg
// raw PCM muxer names used on platforms that capture via FFmpeg.
var ffmpegFormats = map[string]string{
	"S8":         "s8",
	"S16_LE":     "s16le",
	"S16_BE":     "s16be",
	"S32_LE":     "s32le",
	"S32_BE":     "s32be",
	"FLOAT_LE":   "f32le",
	"FLOAT_BE":   "f32be",
	"FLOAT64_LE": "f64le",
	"FLOAT64_BE": "f64be",
}

// ffmpegFormat returns the FFmpeg PCM format name for a format key.
func ffmpegFormat(key string) string {
	return ffmpegFormats[key]
}
