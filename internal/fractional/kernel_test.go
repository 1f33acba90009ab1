package fractional

import (
	"errors"
	"math"
	"testing"
)

func TestNewSOEKernelShape(t *testing.T) {
	k, err := NewSOEKernel(1.5, 10.0, 12)
	if err != nil {
		t.Fatalf("NewSOEKernel: %v", err)
	}
	if k.Rank != 12 || len(k.Weights) != 12 || len(k.Exponents) != 12 {
		t.Errorf("unexpected kernel shape: rank=%d weights=%d exponents=%d",
			k.Rank, len(k.Weights), len(k.Exponents))
	}
	for r, s := range k.Exponents {
		if s <= 0 {
			t.Errorf("exponent %d not positive: %g", r, s)
		}
	}
}

func TestNewSOEKernelExponentSpacing(t *testing.T) {
	tMax := 10.0
	k, err := NewSOEKernel(1.3, tMax, 8)
	if err != nil {
		t.Fatalf("NewSOEKernel: %v", err)
	}
	if math.Abs(k.Exponents[0]-1.0/tMax) > 1e-12 {
		t.Errorf("slowest decay rate %g, want %g", k.Exponents[0], 1.0/tMax)
	}
	last := k.Exponents[len(k.Exponents)-1]
	if math.Abs(last-100.0/tMax) > 1e-9 {
		t.Errorf("fastest decay rate %g, want %g", last, 100.0/tMax)
	}
	for r := 1; r < k.Rank; r++ {
		if k.Exponents[r] <= k.Exponents[r-1] {
			t.Errorf("exponents not increasing at %d: %g <= %g", r, k.Exponents[r], k.Exponents[r-1])
		}
	}
}

func TestNewSOEKernelClampsAlpha(t *testing.T) {
	k, err := NewSOEKernel(5.0, 10.0, 4)
	if err != nil {
		t.Fatalf("NewSOEKernel: %v", err)
	}
	if k.Alpha != 2.0 {
		t.Errorf("alpha not clamped: %g", k.Alpha)
	}
}

func TestNewSOEKernelInvalid(t *testing.T) {
	if _, err := NewSOEKernel(1.5, 10.0, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero rank, got %v", err)
	}
	if _, err := NewSOEKernel(1.5, -1.0, 4); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for negative T_max, got %v", err)
	}
}

func TestEvaluateDecays(t *testing.T) {
	k, err := NewSOEKernel(1.3, 10.0, 12)
	if err != nil {
		t.Fatalf("NewSOEKernel: %v", err)
	}
	v1 := math.Abs(k.Evaluate(0.1))
	v2 := math.Abs(k.Evaluate(5.0))
	if v2 >= v1 {
		t.Errorf("kernel magnitude did not decay: |K(0.1)|=%g |K(5)|=%g", v1, v2)
	}
}

func TestExactKernelDomain(t *testing.T) {
	if _, err := ExactKernel(1.3, 0); !errors.Is(err, ErrGammaDomain) {
		t.Errorf("expected ErrGammaDomain at t=0, got %v", err)
	}
	// alpha = 1.5 puts Γ(2-2α) = Γ(-1) on a pole.
	if _, err := ExactKernel(1.5, 1.0); !errors.Is(err, ErrGammaDomain) {
		t.Errorf("expected ErrGammaDomain at gamma pole, got %v", err)
	}
	v, err := ExactKernel(1.3, 1.0)
	if err != nil {
		t.Fatalf("ExactKernel(1.3, 1): %v", err)
	}
	want := math.Pow(1.0, -1.6) / math.Gamma(-0.6)
	if math.Abs(v-want) > 1e-12*math.Abs(want) {
		t.Errorf("ExactKernel(1.3, 1) = %g, want %g", v, want)
	}
}
