// Package audio provides raw PCM sample decoding and the streaming
// statistics and bubble detection used by the counter.
package audio

import (
	"encoding/binary"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// SampleFormat describes one of the supported raw PCM wire encodings.
// The zero value is not usable; obtain instances via ParseFormat.
type SampleFormat struct {
	key   string
	width int
	float bool
	order binary.ByteOrder
}

// formats maps arecord-style format keys to their wire encodings.
// S8 is a single byte, so its byte order never matters.
var formats = map[string]SampleFormat{
	"S8":         {key: "S8", width: 1, order: binary.LittleEndian},
	"S16_LE":     {key: "S16_LE", width: 2, order: binary.LittleEndian},
	"S16_BE":     {key: "S16_BE", width: 2, order: binary.BigEndian},
	"S32_LE":     {key: "S32_LE", width: 4, order: binary.LittleEndian},
	"S32_BE":     {key: "S32_BE", width: 4, order: binary.BigEndian},
	"FLOAT_LE":   {key: "FLOAT_LE", width: 4, float: true, order: binary.LittleEndian},
	"FLOAT_BE":   {key: "FLOAT_BE", width: 4, float: true, order: binary.BigEndian},
	"FLOAT64_LE": {key: "FLOAT64_LE", width: 8, float: true, order: binary.LittleEndian},
	"FLOAT64_BE": {key: "FLOAT64_BE", width: 8, float: true, order: binary.BigEndian},
}

// ParseFormat returns the SampleFormat for the given key. An unknown
// key is a configuration error and must be rejected before any stream
// processing begins.
func ParseFormat(key string) (SampleFormat, error) {
	f, ok := formats[key]
	if !ok {
		return SampleFormat{}, fmt.Errorf("unsupported sample format %q (supported: %s)",
			key, strings.Join(Formats(), ", "))
	}
	return f, nil
}

// Formats returns the supported format keys in sorted order.
func Formats() []string {
	return slices.Sorted(maps.Keys(formats))
}

// Key returns the arecord-style format name.
func (f SampleFormat) Key() string { return f.key }

// Width returns the sample size in bytes.
func (f SampleFormat) Width() int { return f.width }

// Decode interprets chunk as one signed sample and returns its
// absolute magnitude. The raw waveform oscillates around zero, so
// only the magnitude carries energy information.
//
// len(chunk) must equal Width(); a short chunk is a stream-termination
// condition handled by the read loop and never reaches Decode.
func (f SampleFormat) Decode(chunk []byte) float64 {
	var v float64
	switch {
	case f.float && f.width == 4:
		v = float64(math.Float32frombits(f.order.Uint32(chunk)))
	case f.float:
		v = math.Float64frombits(f.order.Uint64(chunk))
	case f.width == 1:
		v = float64(int8(chunk[0]))
	case f.width == 2:
		v = float64(int16(f.order.Uint16(chunk)))
	default:
		v = float64(int32(f.order.Uint32(chunk)))
	}
	return math.Abs(v)
}

// Encode writes the signed value v as one sample in this format.
// Integer formats truncate toward zero. Used by tests and tooling to
// synthesize streams; the counter itself only decodes.
func (f SampleFormat) Encode(v float64) []byte {
	buf := make([]byte, f.width)
	switch {
	case f.float && f.width == 4:
		f.order.PutUint32(buf, math.Float32bits(float32(v)))
	case f.float:
		f.order.PutUint64(buf, math.Float64bits(v))
	case f.width == 1:
		buf[0] = byte(int8(v))
	case f.width == 2:
		f.order.PutUint16(buf, uint16(int16(v)))
	default:
		f.order.PutUint32(buf, uint32(int32(v)))
	}
	return buf
}
