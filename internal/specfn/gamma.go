package specfn

import (
	"errors"
	"math"
)

// ErrDomain indicates an argument for which the function value is not finite.
var ErrDomain = errors.New("specfn: argument outside function domain")

func Gamma(x float64) float64 {
	return math.Gamma(x)
}

func LogGamma(x float64) float64 {
	lg, _ := math.Lgamma(x)
	return lg
}

// Beta computes B(a,b) = Γ(a)Γ(b)/Γ(a+b) via log-gamma to avoid overflow.
func Beta(a, b float64) (float64, error) {
	if a <= 0 || b <= 0 {
		return 0, ErrDomain
	}
	v := math.Exp(LogGamma(a) + LogGamma(b) - LogGamma(a+b))
	if !isFinite(v) {
		return 0, ErrDomain
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
