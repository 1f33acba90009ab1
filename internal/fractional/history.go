package fractional

import "math"

// HistoryState carries the recursive SOE accumulators z_r(t) for a single
// grid point. Together with a kernel it replaces the full history
// convolution: each step costs O(rank) instead of O(steps).
type HistoryState struct {
	z []complex128
}

func NewHistoryState(rank int) HistoryState {
	return HistoryState{z: make([]complex128, rank)}
}

func (h *HistoryState) Rank() int { return len(h.z) }

// Update advances the accumulators one step:
//
//	z_r(t+dt) = exp(-s_r dt) z_r(t) + w_r f″(t) dt
func (h *HistoryState) Update(k *SOEKernel, secondDerivative complex128, dt float64) error {
	if len(h.z) != k.Rank {
		return ErrRankMismatch
	}
	for r := 0; r < k.Rank; r++ {
		decay := math.Exp(-k.Exponents[r] * dt)
		h.z[r] = complex(decay, 0)*h.z[r] + complex(k.Weights[r]*dt, 0)*secondDerivative
	}
	return nil
}

// Derivative sums the accumulators, approximating the Caputo derivative at
// the current time.
func (h *HistoryState) Derivative() complex128 {
	var sum complex128
	for _, z := range h.z {
		sum += z
	}
	return sum
}

func (h *HistoryState) Reset() {
	for r := range h.z {
		h.z[r] = 0
	}
}
