package fractional

import (
	"fmt"
	"math"
)

const validationSamples = 80

// ValidationResult summarizes relative error of an SOE kernel against the
// closed-form power-law kernel, sampled over (0, T_max].
type ValidationResult struct {
	MaxError  float64
	MeanError float64
	RMSError  float64
	Passed    bool
}

// ValidateApproximation samples the kernel for the given order against the
// exact K_α(t) and passes iff the maximum relative error is within
// tolerance. Fails outright for a non-positive tolerance or an order whose
// closed form is undefined.
func (s *Solver) ValidateApproximation(alpha, tolerance float64) (ValidationResult, error) {
	var res ValidationResult
	if tolerance <= 0 {
		return res, fmt.Errorf("validation tolerance must be positive, got %g: %w", tolerance, ErrInvalidConfig)
	}

	k, ok := s.kernels[quantize(alpha)]
	if !ok {
		var err error
		k, err = NewSOEKernel(alpha, s.cfg.TMax, s.cfg.Rank)
		if err != nil {
			return res, err
		}
	}

	var sumErr, sumSqErr float64
	for i := 1; i <= validationSamples; i++ {
		t := s.cfg.TMax * float64(i) / validationSamples
		exact, err := ExactKernel(alpha, t)
		if err != nil {
			return res, err
		}
		approx := k.Evaluate(t)
		rel := math.Abs(exact-approx) / (math.Abs(exact) + 1e-15)

		res.MaxError = math.Max(res.MaxError, rel)
		sumErr += rel
		sumSqErr += rel * rel
	}

	res.MeanError = sumErr / validationSamples
	res.RMSError = math.Sqrt(sumSqErr / validationSamples)
	res.Passed = res.MaxError <= tolerance
	return res, nil
}
