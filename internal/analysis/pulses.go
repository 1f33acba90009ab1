package analysis

import (
	"fmt"
	"math"
)

// Pulse is a detected local maximum in a time series.
type Pulse struct {
	Time      float64
	Amplitude float64
}

// DetectPulses finds local maxima above threshold in a sampled signal.
// Both slices must have equal length.
func DetectPulses(times, values []float64, threshold float64) ([]Pulse, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("got %d times for %d values: %w", len(times), len(values), ErrInvalidSignal)
	}

	var pulses []Pulse
	for i := 1; i < len(values)-1; i++ {
		if values[i] > threshold && values[i] > values[i-1] && values[i] >= values[i+1] {
			pulses = append(pulses, Pulse{Time: times[i], Amplitude: values[i]})
		}
	}
	return pulses, nil
}

// Intervals returns the time gaps between consecutive pulses.
func Intervals(pulses []Pulse) []float64 {
	if len(pulses) < 2 {
		return nil
	}
	out := make([]float64, 0, len(pulses)-1)
	for i := 1; i < len(pulses); i++ {
		out = append(out, pulses[i].Time-pulses[i-1].Time)
	}
	return out
}

// MatchesPrimeGaps checks whether successive intervals follow gap·τ₀ within
// a relative tolerance. Intervals beyond the gap sequence are ignored.
func MatchesPrimeGaps(intervals []float64, gaps []int, tau0, tolerance float64) bool {
	if len(intervals) == 0 || len(gaps) == 0 || tau0 <= 0 {
		return false
	}
	n := len(intervals)
	if n > len(gaps) {
		n = len(gaps)
	}
	for i := 0; i < n; i++ {
		want := float64(gaps[i]) * tau0
		if math.Abs(intervals[i]-want) > tolerance*want {
			return false
		}
	}
	return true
}
