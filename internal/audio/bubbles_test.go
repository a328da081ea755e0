package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(t *testing.T, rate int, periodMs, minGapMs int64) *BubbleDetector {
	t.Helper()
	d, err := NewBubbleDetector(DetectorConfig{SampleRate: rate, PeriodMs: periodMs, MinGapMs: minGapMs})
	require.NoError(t, err)
	return d
}

// feed pushes n copies of magnitude and returns the last event plus
// the number of accepted bubbles along the way.
func feed(d *BubbleDetector, n int, magnitude float64) (last BubbleEvent, accepted int) {
	for i := 0; i < n; i++ {
		last = d.Feed(magnitude)
		if last.Accepted {
			accepted++
		}
	}
	return last, accepted
}

func TestNewBubbleDetectorValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  DetectorConfig
		ok   bool
	}{
		{"valid", DetectorConfig{SampleRate: 8000, PeriodMs: 10000, MinGapMs: 200}, true},
		{"zero gap", DetectorConfig{SampleRate: 8000, PeriodMs: 1000, MinGapMs: 0}, true},
		{"zero rate", DetectorConfig{SampleRate: 0, PeriodMs: 10000, MinGapMs: 200}, false},
		{"negative rate", DetectorConfig{SampleRate: -1, PeriodMs: 10000, MinGapMs: 200}, false},
		{"zero period", DetectorConfig{SampleRate: 8000, PeriodMs: 0, MinGapMs: 200}, false},
		{"negative gap", DetectorConfig{SampleRate: 8000, PeriodMs: 1000, MinGapMs: -1}, false},
		{"period shorter than one sample", DetectorConfig{SampleRate: 10, PeriodMs: 50, MinGapMs: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewBubbleDetector(tt.cfg)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.cfg.SamplesPerPeriod(), d.SamplesPerPeriod())
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPeriodBoundaryEmitsExactlyOncePerPeriod(t *testing.T) {
	// 100 samples per period.
	d := newTestDetector(t, 100, 1000, 0)

	var boundaries int
	for i := 0; i < 350; i++ {
		ev := d.Feed(0)
		if ev.PeriodDone {
			boundaries++
			assert.Equal(t, int64(0), d.Samples()%d.SamplesPerPeriod())
		}
	}
	// 350 samples cover 3 complete periods; the partial fourth emits nothing.
	assert.Equal(t, 3, boundaries)
	assert.Equal(t, int64(350), d.Samples())
}

func TestBootstrapPeriodIsUnfiltered(t *testing.T) {
	// Before the first boundary the baseline stddev is zero, so every
	// nonzero sample is a candidate. With a zero gap they all count.
	d := newTestDetector(t, 1000, 1000, 0)

	last, accepted := feed(d, 1000, 1.0)
	assert.Equal(t, 1000, accepted)
	require.True(t, last.PeriodDone)
	assert.Equal(t, 1000, last.Bubbles)
}

func TestContinuousCandidatesCountOnce(t *testing.T) {
	// Every sample is a candidate and every candidate pushes the
	// debounce window forward, so an unbroken run counts as a single
	// bubble regardless of length.
	d := newTestDetector(t, 1000, 10000, 100)

	_, accepted := feed(d, 5000, 1.0)
	assert.Equal(t, 1, accepted)
}

func TestConstantStreamQuietAfterBootstrap(t *testing.T) {
	// 100 samples per period, constant amplitude 500.
	d := newTestDetector(t, 100, 1000, 0)

	first, _ := feed(d, 100, 500)
	require.True(t, first.PeriodDone)
	assert.Equal(t, 500.0, first.Mean)
	assert.Equal(t, 500.0, first.StdDev)

	// Second period: zero deviation from the new baseline, no candidates.
	second, accepted := feed(d, 100, 500)
	require.True(t, second.PeriodDone)
	assert.Equal(t, 0, accepted)
	assert.Equal(t, 0, second.Bubbles)
	assert.Equal(t, 500.0, second.Mean)
	assert.Equal(t, 0.0, second.StdDev)

	// Third period: baseline stddev is exactly zero and sqrt(0) > 0
	// must still be false, so the stream stays quiet.
	third, accepted := feed(d, 100, 500)
	require.True(t, third.PeriodDone)
	assert.Equal(t, 0, accepted)
	assert.Equal(t, 0, third.Bubbles)
}

func TestDebounceMeasuresGapFromLastCandidate(t *testing.T) {
	// Gap of 100 samples; period long enough to stay within bootstrap.
	d := newTestDetector(t, 1000, 10000, 100)

	feed(d, 9, 0) // zeros are not candidates against a zero baseline

	ev := d.Feed(100) // index 10: first candidate ever, accepted
	assert.True(t, ev.Candidate)
	assert.True(t, ev.Accepted)

	feed(d, 49, 0)
	ev = d.Feed(100) // index 60: 60 <= 10+100, rejected
	assert.True(t, ev.Candidate)
	assert.False(t, ev.Accepted)

	feed(d, 69, 0)
	// Index 130 is 120 samples past the last *accepted* bubble but only
	// 70 past the last candidate, so it is still rejected.
	ev = d.Feed(100)
	assert.True(t, ev.Candidate)
	assert.False(t, ev.Accepted)

	feed(d, 100, 0)
	ev = d.Feed(100) // index 231 > 130+100, accepted
	assert.True(t, ev.Candidate)
	assert.True(t, ev.Accepted)
}

func TestDebounceStatePersistsAcrossPeriods(t *testing.T) {
	// 100 samples per period, 50-sample gap.
	d := newTestDetector(t, 100, 1000, 500)

	// Period 1: single spike at index 95.
	feed(d, 94, 0)
	ev := d.Feed(1000)
	assert.True(t, ev.Accepted)
	first, _ := feed(d, 5, 0)
	require.True(t, first.PeriodDone)
	assert.Equal(t, 1, first.Bubbles)
	assert.Equal(t, 10.0, first.Mean)
	assert.Equal(t, 100.0, first.StdDev)

	// Period 2: spike at index 105 is a candidate (deviation 990 >
	// 2*100) but falls within 50 samples of the period-1 candidate.
	feed(d, 4, 0)
	ev = d.Feed(1000)
	assert.True(t, ev.Candidate)
	assert.False(t, ev.Accepted)

	// Spike at index 160 clears the gap from index 105.
	feed(d, 54, 0)
	ev = d.Feed(1000)
	assert.True(t, ev.Accepted)

	second, _ := feed(d, 40, 0)
	require.True(t, second.PeriodDone)
	assert.Equal(t, 1, second.Bubbles)
}

func TestSecondPeriodSpikeScenario(t *testing.T) {
	// S16_LE-style stream: 8000 Hz, 1000 ms period, 250 ms gap.
	d := newTestDetector(t, 8000, 1000, 250)

	first, accepted := feed(d, 8000, 0)
	require.True(t, first.PeriodDone)
	assert.Equal(t, 0, accepted)
	assert.Equal(t, 0, first.Bubbles)
	assert.Equal(t, Baseline{}, d.Baseline())

	// Second period: one 30000 spike at sample 100, zeros elsewhere.
	// The spike is the first candidate of the whole stream and is
	// accepted despite 100 < minGapSamples.
	feed(d, 99, 0)
	ev := d.Feed(30000)
	assert.True(t, ev.Candidate)
	assert.True(t, ev.Accepted)

	second, _ := feed(d, 7900, 0)
	require.True(t, second.PeriodDone)
	assert.Equal(t, 1, second.Bubbles)
}

func TestLargeAmplitudesDoNotOverflow(t *testing.T) {
	d := newTestDetector(t, 10, 1000, 0)

	last, _ := feed(d, 10, math.MaxInt32)
	require.True(t, last.PeriodDone)
	assert.False(t, math.IsInf(last.Mean, 0))
	assert.False(t, math.IsInf(last.StdDev, 0))
	assert.Equal(t, float64(math.MaxInt32), last.Mean)
	assert.Equal(t, float64(math.MaxInt32), last.Peak)
}
