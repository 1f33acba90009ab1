// Package analysis provides post-run signal analysis: power spectra of
// strain time series and timing analysis of the echo pulse train.
package analysis

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrInvalidSignal = errors.New("invalid signal")

// Spectrum is a one-sided magnitude spectrum.
type Spectrum struct {
	Frequencies []float64 // Hz
	Power       []float64
}

// PowerSpectrum computes the one-sided spectrum of a uniformly sampled
// signal with sample interval dt.
func PowerSpectrum(signal []float64, dt float64) (Spectrum, error) {
	if len(signal) < 2 {
		return Spectrum{}, fmt.Errorf("need at least 2 samples, got %d: %w", len(signal), ErrInvalidSignal)
	}
	if dt <= 0 {
		return Spectrum{}, fmt.Errorf("sample interval %g must be positive: %w", dt, ErrInvalidSignal)
	}

	coeffs := fft.FFTReal(signal)
	n := len(signal)
	half := n / 2

	s := Spectrum{
		Frequencies: make([]float64, half),
		Power:       make([]float64, half),
	}
	for i := 0; i < half; i++ {
		s.Frequencies[i] = float64(i) / (float64(n) * dt)
		s.Power[i] = cmplx.Abs(coeffs[i])
	}
	return s, nil
}

// DominantFrequency returns the frequency of the strongest non-DC bin.
func (s Spectrum) DominantFrequency() (freq, power float64) {
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > power {
			power = s.Power[i]
			freq = s.Frequencies[i]
		}
	}
	return freq, power
}
