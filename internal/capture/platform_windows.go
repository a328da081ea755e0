//go:build windows

package capture

import (
	"regexp"
	"strings"

	"github.com/fermentab/bubbler/internal/audio"
)

func getPlatformConfig() Config {
	return Config{
		Command:       "ffmpeg",
		DefaultDevice: "", // Auto-detect, no safe default on Windows
		BuildArgs:     buildWindowsArgs,
	}
}

func buildWindowsArgs(device string, format audio.SampleFormat, rate int) []string {
	return buildFFmpegCaptureArgs("dshow", device, format, rate)
}

func (cfg *Config) devices() []Device {
	return parseDeviceList(deviceListConfig{
		Command: []string{"ffmpeg", "-hide_banner", "-f", "dshow", "-list_devices", "true", "-i", "dummy"},
		// No section markers - FFmpeg versions vary in output format.
		// We match lines ending with "(audio)" instead.
		DevicePattern: regexp.MustCompile(`\[dshow[^\]]*\]\s*"([^"]+)"\s*\(audio\)`),
		ParseDevice: func(matches []string) *Device {
			if len(matches) < 2 {
				return nil
			}
			name := strings.TrimSpace(matches[1])
			return &Device{
				ID:   "audio=" + name,
				Name: name,
			}
		},
		FallbackDevices: nil,
	})
}
