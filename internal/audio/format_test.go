package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, key := range Formats() {
		f, err := ParseFormat(key)
		require.NoError(t, err, key)
		assert.Equal(t, key, f.Key())
	}
}

func TestParseFormatUnsupported(t *testing.T) {
	_, err := ParseFormat("U16_LE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported sample format")

	_, err = ParseFormat("")
	assert.Error(t, err)
}

func TestFormatWidths(t *testing.T) {
	widths := map[string]int{
		"S8":         1,
		"S16_LE":     2,
		"S16_BE":     2,
		"S32_LE":     4,
		"S32_BE":     4,
		"FLOAT_LE":   4,
		"FLOAT_BE":   4,
		"FLOAT64_LE": 8,
		"FLOAT64_BE": 8,
	}
	assert.Len(t, Formats(), len(widths))
	for key, want := range widths {
		f, err := ParseFormat(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, f.Width(), key)
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	tests := []struct {
		format string
		values []float64
	}{
		{"S8", []float64{0, 1, -1, 100, -100, 127, -128}},
		{"S16_LE", []float64{0, 42, -42, 30000, -30000, 32767, -32768}},
		{"S16_BE", []float64{0, 42, -42, 30000, -30000, 32767, -32768}},
		{"S32_LE", []float64{0, 123456, -123456, math.MaxInt32, math.MinInt32}},
		{"S32_BE", []float64{0, 123456, -123456, math.MaxInt32, math.MinInt32}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := ParseFormat(tt.format)
			require.NoError(t, err)
			for _, v := range tt.values {
				chunk := f.Encode(v)
				require.Len(t, chunk, f.Width())
				assert.Equal(t, math.Abs(v), f.Decode(chunk), "value %v", v)
			}
		})
	}
}

func TestFloatRoundTrip(t *testing.T) {
	tests := []struct {
		format string
		values []float64
	}{
		{"FLOAT_LE", []float64{0, 0.5, -0.5, 1, -1, 12345.678}},
		{"FLOAT_BE", []float64{0, 0.5, -0.5, 1, -1, 12345.678}},
		{"FLOAT64_LE", []float64{0, 0.123456789, -0.123456789, 1e100, -1e100}},
		{"FLOAT64_BE", []float64{0, 0.123456789, -0.123456789, 1e100, -1e100}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := ParseFormat(tt.format)
			require.NoError(t, err)
			for _, v := range tt.values {
				chunk := f.Encode(v)
				require.Len(t, chunk, f.Width())
				got := f.Decode(chunk)
				want := math.Abs(v)
				assert.InDelta(t, want, got, math.Abs(want)*1e-6, "value %v", v)
			}
		})
	}
}

func TestDecodeEndianness(t *testing.T) {
	le, err := ParseFormat("S16_LE")
	require.NoError(t, err)
	be, err := ParseFormat("S16_BE")
	require.NoError(t, err)

	chunk := []byte{0x01, 0x02}
	assert.Equal(t, float64(0x0201), le.Decode(chunk))
	assert.Equal(t, float64(0x0102), be.Decode(chunk))
}

func TestDecodeReturnsMagnitude(t *testing.T) {
	f, err := ParseFormat("S16_LE")
	require.NoError(t, err)
	assert.Equal(t, 42.0, f.Decode(f.Encode(-42)))

	ff, err := ParseFormat("FLOAT64_LE")
	require.NoError(t, err)
	assert.Equal(t, 0.25, ff.Decode(ff.Encode(-0.25)))
}
