package audio

import (
	"errors"
	"fmt"
	"math"
)

// ErrPeriodTooShort is returned when the configured listening period
// is shorter than a single sample.
var ErrPeriodTooShort = errors.New("listening period is shorter than one sample")

// DetectorConfig holds the bubble detection tunables.
type DetectorConfig struct {
	SampleRate int   // input samples per second
	PeriodMs   int64 // listening period length in milliseconds
	MinGapMs   int64 // minimum time between two accepted bubbles in milliseconds
}

// SamplesPerPeriod returns the fixed number of samples per listening period.
func (c DetectorConfig) SamplesPerPeriod() int64 {
	return int64(c.SampleRate) * c.PeriodMs / 1000
}

// MinGapSamples returns the debounce gap expressed in samples.
func (c DetectorConfig) MinGapSamples() int64 {
	return int64(c.SampleRate) * c.MinGapMs / 1000
}

// BubbleEvent is the result of feeding one sample to the detector.
type BubbleEvent struct {
	Candidate bool // deviation exceeded twice the baseline standard deviation
	Accepted  bool // candidate passed the debounce gap check and was counted

	// The remaining fields are set on the sample that completes a period.
	PeriodDone bool
	Bubbles    int     // count to emit for the completed period
	Mean       float64 // new baseline mean
	StdDev     float64 // new baseline standard deviation
	Peak       float64 // largest magnitude seen in the period
}

// BubbleDetector counts discrete acoustic events in a stream of
// sample magnitudes. Each sample is judged against the mean and
// standard deviation of the previous completed period, so the
// detection baseline always lags one period behind; before the first
// boundary the baseline is zero and nearly every nonzero sample is a
// candidate. That bootstrap behavior is part of the contract.
//
// A BubbleDetector is not safe for concurrent use: its state is
// exclusively owned by a single processing loop.
type BubbleDetector struct {
	samplesPerPeriod int64
	minGapSamples    int64

	index         int64 // total samples processed, 1-based
	lastCandidate int64 // index of the most recent candidate, 0 = none yet
	baseline      Baseline
	period        PeriodStats
}

// NewBubbleDetector validates cfg and returns a detector in its
// initial accumulating state.
func NewBubbleDetector(cfg DetectorConfig) (*BubbleDetector, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.MinGapMs < 0 {
		return nil, fmt.Errorf("minimum bubble gap must not be negative, got %d", cfg.MinGapMs)
	}
	if cfg.SamplesPerPeriod() < 1 {
		return nil, ErrPeriodTooShort
	}
	return &BubbleDetector{
		samplesPerPeriod: cfg.SamplesPerPeriod(),
		minGapSamples:    cfg.MinGapSamples(),
	}, nil
}

// Feed processes one decoded sample magnitude and reports what
// happened. On the sample that completes a period the returned event
// carries the count to emit; the detector then adopts the period's
// statistics as the next baseline and resets its accumulators.
func (d *BubbleDetector) Feed(magnitude float64) BubbleEvent {
	d.index++

	dev := magnitude - d.baseline.Mean
	squaredDev := dev * dev
	d.period.Accumulate(magnitude, squaredDev)

	var ev BubbleEvent
	if math.Sqrt(squaredDev) > 2*d.baseline.StdDev {
		ev.Candidate = true
		// The gap is measured from the most recent candidate, accepted
		// or not. The first candidate of the whole stream has nothing
		// to measure against and is always accepted.
		if d.lastCandidate == 0 || d.index > d.lastCandidate+d.minGapSamples {
			d.period.Bubbles++
			ev.Accepted = true
		}
		d.lastCandidate = d.index
	}

	if d.index%d.samplesPerPeriod == 0 {
		ev.PeriodDone = true
		ev.Bubbles = d.period.Bubbles
		ev.Peak = d.period.Peak

		d.baseline = d.period.Finish(d.samplesPerPeriod)
		ev.Mean = d.baseline.Mean
		ev.StdDev = d.baseline.StdDev

		// Debounce state survives the boundary; only the period
		// accumulators reset.
		d.period.Reset()
	}
	return ev
}

// Baseline returns the detection baseline carried from the previous
// completed period. It is zero before the first boundary.
func (d *BubbleDetector) Baseline() Baseline { return d.baseline }

// SamplesPerPeriod returns the fixed period length in samples.
func (d *BubbleDetector) SamplesPerPeriod() int64 { return d.samplesPerPeriod }

// Samples returns the total number of samples processed so far.
func (d *BubbleDetector) Samples() int64 { return d.index }
