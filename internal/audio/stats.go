package audio

import "math"

// PeriodStats holds raw accumulator data for the current listening
// period. All sums are kept in float64 so that squared 32-bit integer
// amplitudes cannot overflow.
type PeriodStats struct {
	Count   int64   // samples seen this period
	Sum     float64 // running sum of magnitudes
	VarSum  float64 // running sum of squared deviations from the previous period's mean
	Peak    float64 // largest magnitude this period
	Bubbles int     // provisional bubble count
}

// Accumulate folds one sample magnitude and its squared deviation
// from the baseline mean into the period.
func (s *PeriodStats) Accumulate(magnitude, squaredDev float64) {
	s.Count++
	s.Sum += magnitude
	s.VarSum += squaredDev
	if magnitude > s.Peak {
		s.Peak = magnitude
	}
}

// Reset clears the accumulators for the next measurement period.
func (s *PeriodStats) Reset() {
	*s = PeriodStats{}
}

// Baseline is the mean and standard deviation of sample magnitude
// over the previously completed period. It is the yardstick deviations
// are judged against during the current period.
type Baseline struct {
	Mean   float64
	StdDev float64
}

// Finish computes the baseline carried into the next period. At a
// period boundary samplesPerPeriod equals Count.
func (s *PeriodStats) Finish(samplesPerPeriod int64) Baseline {
	n := float64(samplesPerPeriod)
	return Baseline{
		Mean:   s.Sum / n,
		StdDev: math.Sqrt(s.VarSum / n),
	}
}
