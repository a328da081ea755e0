//go:build darwin

package capture

import (
	"regexp"

	"github.com/fermentab/bubbler/internal/audio"
)

func getPlatformConfig() Config {
	return Config{
		Command:       "ffmpeg",
		DefaultDevice: ":0",
		BuildArgs:     buildDarwinArgs,
	}
}

func buildDarwinArgs(device string, format audio.SampleFormat, rate int) []string {
	return buildFFmpegCaptureArgs("avfoundation", device, format, rate)
}

func (cfg *Config) devices() []Device {
	return parseDeviceList(deviceListConfig{
		Command:          []string{"ffmpeg", "-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", ""},
		AudioStartMarker: "AVFoundation audio devices:",
		AudioStopMarker:  "AVFoundation video devices:",
		DevicePattern:    regexp.MustCompile(`\[AVFoundation[^\]]*\]\s*\[(\d+)\]\s*(.+)`),
		ParseDevice: func(matches []string) *Device {
			if len(matches) < 3 {
				return nil
			}
			return &Device{
				ID:   ":" + matches[1],
				Name: matches[2],
			}
		},
		FallbackDevices: nil,
	})
}
