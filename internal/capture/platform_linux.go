//go:build linux

package capture

import (
	"regexp"
	"strconv"

	"github.com/fermentab/bubbler/internal/audio"
)

func getPlatformConfig() Config {
	return Config{
		Command:       "arecord",
		DefaultDevice: "default",
		BuildArgs:     buildLinuxArgs,
	}
}

// buildLinuxArgs builds arecord arguments. The supported format keys
// are arecord's own names, so they pass through unchanged.
func buildLinuxArgs(device string, format audio.SampleFormat, rate int) []string {
	return []string{
		"-D", device,
		"-f", format.Key(),
		"-r", strconv.Itoa(rate),
		"-c", "1",
		"-t", "raw",
		"-q",
		"-",
	}
}

func (cfg *Config) devices() []Device {
	return parseDeviceList(deviceListConfig{
		Command:       []string{"arecord", "-l"},
		DevicePattern: regexp.MustCompile(`card\s+(\d+):\s+(\w+)\s+\[([^\]]+)\]`),
		ParseDevice: func(matches []string) *Device {
			if len(matches) < 4 {
				return nil
			}
			return &Device{
				ID:   "default:CARD=" + matches[2],
				Name: matches[3],
			}
		},
		FallbackDevices: []Device{
			{ID: "default", Name: "ALSA default"},
		},
	})
}
