package fractional

import (
	"fmt"
	"math"

	"github.com/san-kum/gwecho/internal/specfn"
)

// Decay rates are log-spaced between 1/T_max (slowest, longest memory)
// and decayRateSpread/T_max (fastest).
const decayRateSpread = 100.0

// SOEKernel approximates the power-law memory kernel
//
//	K_α(t) = t^(1-2α) / Γ(2-2α)
//
// as a finite sum of exponentials Σ_r w_r exp(-s_r t), which turns the
// O(N²) history convolution of a Caputo derivative into an O(rank)
// recursive state update per step. A kernel is immutable once built.
type SOEKernel struct {
	Alpha     float64
	Rank      int
	Weights   []float64
	Exponents []float64
}

// NewSOEKernel builds an R-term approximation valid on (0, tMax]. The
// fractional order is clamped to [1, 2], the wave-memory regime.
func NewSOEKernel(alpha, tMax float64, rank int) (*SOEKernel, error) {
	if rank < 1 {
		return nil, fmt.Errorf("kernel rank must be >= 1, got %d: %w", rank, ErrInvalidConfig)
	}
	if tMax <= 0 {
		return nil, fmt.Errorf("kernel T_max must be positive, got %g: %w", tMax, ErrInvalidConfig)
	}

	alpha = math.Max(1.0, math.Min(2.0, alpha))
	eta := alpha - 1.0 // memory strength

	k := &SOEKernel{
		Alpha:     alpha,
		Rank:      rank,
		Weights:   make([]float64, rank),
		Exponents: make([]float64, rank),
	}

	sMin := 1.0 / tMax
	sMax := decayRateSpread / tMax
	logRatio := math.Log(sMax / sMin)

	for r := 0; r < rank; r++ {
		frac := 0.0
		if rank > 1 {
			frac = float64(r) / float64(rank-1)
		}
		k.Exponents[r] = sMin * math.Exp(frac*logRatio)
		k.Weights[r] = 1.0 / float64(rank)
	}

	// Analytic overall scale from the closed-form kernel. Skipped where
	// Γ(2-2α) is singular or vanishing; weights stay uniform there.
	gammaFactor := specfn.Gamma(2.0 - 2.0*alpha)
	if math.Abs(gammaFactor) > 1e-12 && !math.IsNaN(gammaFactor) && !math.IsInf(gammaFactor, 0) {
		scale := eta / (gammaFactor * float64(rank))
		for r := range k.Weights {
			k.Weights[r] *= scale
		}
	}

	return k, nil
}

// Evaluate returns Σ_r w_r exp(-s_r t).
func (k *SOEKernel) Evaluate(t float64) float64 {
	sum := 0.0
	for r := 0; r < k.Rank; r++ {
		sum += k.Weights[r] * math.Exp(-k.Exponents[r]*t)
	}
	return sum
}

// ExactKernel returns the closed-form K_α(t) = t^(1-2α)/Γ(2-2α) used as the
// validation reference.
func ExactKernel(alpha, t float64) (float64, error) {
	if t <= 0 {
		return 0, fmt.Errorf("exact kernel requires t > 0, got %g: %w", t, ErrGammaDomain)
	}
	g := specfn.Gamma(2.0 - 2.0*alpha)
	if math.IsNaN(g) || math.IsInf(g, 0) || math.Abs(g) < 1e-15 {
		return 0, fmt.Errorf("exact kernel undefined for alpha=%g: %w", alpha, ErrGammaDomain)
	}
	return math.Pow(t, 1.0-2.0*alpha) / g, nil
}

// interpolate lerps weights and exponents between two kernels of equal rank.
// The accuracy of an interpolated kernel is unspecified; callers wanting a
// bound should synthesize directly and validate.
func interpolate(lo, hi *SOEKernel, alpha float64) *SOEKernel {
	t := (alpha - lo.Alpha) / (hi.Alpha - lo.Alpha)
	k := &SOEKernel{
		Alpha:     alpha,
		Rank:      lo.Rank,
		Weights:   make([]float64, lo.Rank),
		Exponents: make([]float64, lo.Rank),
	}
	for r := 0; r < lo.Rank; r++ {
		k.Weights[r] = (1-t)*lo.Weights[r] + t*hi.Weights[r]
		k.Exponents[r] = (1-t)*lo.Exponents[r] + t*hi.Exponents[r]
	}
	return k
}
