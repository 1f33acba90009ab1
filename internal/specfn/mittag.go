package specfn

import (
	"fmt"
	"math"
	"math/cmplx"
)

const (
	DefaultMLMaxTerms  = 100
	DefaultMLTolerance = 1e-12
)

// MittagLeffler evaluates E_{α,β}(z) = Σ_k z^k / Γ(αk + β) by direct series
// summation, stopping early once a term is smaller than tol relative to the
// running sum. The series converges for all z but loses accuracy for large
// |z|; callers wanting the large-argument regime should use
// [MittagLefflerAsymptotic] instead. No automatic switching is done.
func MittagLeffler(alpha, beta float64, z complex128, maxTerms int, tol float64) (complex128, error) {
	if alpha <= 0 {
		return 0, fmt.Errorf("specfn: mittag-leffler alpha must be positive, got %g: %w", alpha, ErrDomain)
	}
	if maxTerms < 1 {
		return 0, fmt.Errorf("specfn: mittag-leffler max terms must be >= 1, got %d: %w", maxTerms, ErrDomain)
	}
	if tol <= 0 {
		return 0, fmt.Errorf("specfn: mittag-leffler tolerance must be positive, got %g: %w", tol, ErrDomain)
	}

	g := Gamma(beta)
	if !isFinite(g) || g == 0 {
		return 0, fmt.Errorf("specfn: gamma(%g) not finite: %w", beta, ErrDomain)
	}

	sum := complex(1.0/g, 0)
	zPow := complex(1, 0)
	for k := 1; k < maxTerms; k++ {
		zPow *= z
		gk := Gamma(alpha*float64(k) + beta)
		if !isFinite(gk) {
			// Γ poles make the term vanish; overflow ends the useful range.
			if math.IsInf(gk, 0) {
				continue
			}
			break
		}
		term := zPow / complex(gk, 0)
		sum += term
		if cmplx.Abs(term) < tol*cmplx.Abs(sum) {
			break
		}
	}
	return sum, nil
}

// MittagLefflerOne evaluates the one-parameter function E_α(z) = E_{α,1}(z)
// with default precision.
func MittagLefflerOne(alpha float64, z complex128) (complex128, error) {
	return MittagLeffler(alpha, 1.0, z, DefaultMLMaxTerms, DefaultMLTolerance)
}

// MittagLefflerReal evaluates E_{α,β}(z) for a real argument.
func MittagLefflerReal(alpha, beta, z float64) (float64, error) {
	v, err := MittagLeffler(alpha, beta, complex(z, 0), DefaultMLMaxTerms, DefaultMLTolerance)
	if err != nil {
		return 0, err
	}
	return real(v), nil
}

// MittagLefflerAsymptotic evaluates the large-|z| expansion
// E_{α,β}(z) ~ -Σ_{k=1..n} z^{-k} / Γ(β - αk). It is the caller's choice
// when to prefer this over the series.
func MittagLefflerAsymptotic(alpha, beta float64, z complex128, terms int) (complex128, error) {
	if alpha <= 0 {
		return 0, fmt.Errorf("specfn: asymptotic alpha must be positive, got %g: %w", alpha, ErrDomain)
	}
	if terms < 1 {
		return 0, fmt.Errorf("specfn: asymptotic terms must be >= 1, got %d: %w", terms, ErrDomain)
	}
	if z == 0 {
		return 0, fmt.Errorf("specfn: asymptotic expansion undefined at z=0: %w", ErrDomain)
	}

	zInv := complex(1, 0) / z
	zPow := zInv
	var sum complex128
	for k := 1; k <= terms; k++ {
		g := Gamma(beta - alpha*float64(k))
		if !isFinite(g) || math.Abs(g) < 1e-15 {
			break
		}
		sum -= zPow / complex(g, 0)
		zPow *= zInv
	}
	return sum, nil
}
