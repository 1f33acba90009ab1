package fractional

import (
	"fmt"
	"math"

	"github.com/san-kum/gwecho/internal/specfn"
)

const (
	// DefaultCacheCapacity bounds the kernel cache; the oldest entry is
	// evicted when the bound is reached.
	DefaultCacheCapacity = 64

	// alphaQuantum is the cache key resolution. Orders closer than this are
	// served by the same kernel.
	alphaQuantum = 1e-6

	// maxStateElems caps the history allocation (points × rank complex
	// values) so an oversized grid fails with an error instead of an OOM
	// kill mid-allocation.
	maxStateElems = 1 << 31
)

// Config holds solver parameters.
type Config struct {
	TMax          float64 // horizon over which the SOE approximation holds
	Rank          int     // exponential terms per kernel
	Dt            float64
	AlphaMin      float64
	AlphaMax      float64
	CacheCapacity int // 0 means DefaultCacheCapacity
}

func DefaultConfig() Config {
	return Config{
		TMax:     10.0,
		Rank:     12,
		Dt:       0.001,
		AlphaMin: 1.0,
		AlphaMax: 2.0,
	}
}

func (c Config) validate() error {
	if c.TMax <= 0 {
		return fmt.Errorf("T_max must be positive, got %g: %w", c.TMax, ErrInvalidConfig)
	}
	if c.Rank < 1 {
		return fmt.Errorf("rank must be >= 1, got %d: %w", c.Rank, ErrInvalidConfig)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g: %w", c.Dt, ErrInvalidConfig)
	}
	if c.AlphaMin <= 0 || c.AlphaMin > 2 || c.AlphaMax <= 0 || c.AlphaMax > 2 {
		return fmt.Errorf("alpha bounds must be in (0, 2], got [%g, %g]: %w",
			c.AlphaMin, c.AlphaMax, ErrInvalidConfig)
	}
	if c.AlphaMin > c.AlphaMax {
		return fmt.Errorf("alpha_min %g > alpha_max %g: %w", c.AlphaMin, c.AlphaMax, ErrInvalidConfig)
	}
	return nil
}

// Solver computes Caputo fractional derivatives for every grid point of a
// field, holding one set of SOE accumulators per point and a bounded cache
// of kernels keyed by quantized fractional order.
//
// The per-point accumulators are stored as a single flat array indexed by
// point*rank+term; this is an internal layout choice, the observable
// behavior matches one HistoryState per point.
type Solver struct {
	cfg       Config
	numPoints int

	state []complex128 // numPoints × rank accumulators

	kernels  map[int64]*SOEKernel
	keyOrder []int64 // insertion order for eviction
	capacity int
}

// NewSolver allocates history state for numPoints grid points.
func NewSolver(cfg Config, numPoints int) (*Solver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if numPoints < 1 {
		return nil, fmt.Errorf("point count must be >= 1, got %d: %w", numPoints, ErrInvalidConfig)
	}
	elems := int64(numPoints) * int64(cfg.Rank)
	if elems > maxStateElems {
		return nil, fmt.Errorf("%d points × rank %d needs %d MB of history state: %w",
			numPoints, cfg.Rank, elems*16/(1024*1024), ErrStateTooLarge)
	}
	capacity := cfg.CacheCapacity
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Solver{
		cfg:       cfg,
		numPoints: numPoints,
		state:     make([]complex128, elems),
		kernels:   make(map[int64]*SOEKernel, capacity),
		capacity:  capacity,
	}, nil
}

func (s *Solver) NumPoints() int     { return s.numPoints }
func (s *Solver) Rank() int          { return s.cfg.Rank }
func (s *Solver) CachedKernels() int { return len(s.kernels) }

// MemoryStrength returns 1 - α; zero means no memory, the standard wave
// equation. The kernel exponent η in kernel.go is α - 1, the opposite sign;
// the two quantities are reported as-is and are not interchangeable.
func (s *Solver) MemoryStrength(alpha float64) float64 { return 1.0 - alpha }

// MemoryUsage estimates the history state footprint in bytes.
func (s *Solver) MemoryUsage() int64 {
	return int64(len(s.state)) * 16
}

func quantize(alpha float64) int64 {
	return int64(math.Round(alpha / alphaQuantum))
}

// Kernel resolves the SOE kernel for a fractional order: an exact cache hit
// (within the quantization tolerance) is returned directly; with at least
// two kernels cached, an interpolation between the nearest neighbors is
// built; otherwise a fresh kernel is synthesized. All paths insert into the
// cache, evicting the oldest entry past capacity.
func (s *Solver) Kernel(alpha float64) (*SOEKernel, error) {
	key := quantize(alpha)
	if k, ok := s.kernels[key]; ok {
		return k, nil
	}

	var k *SOEKernel
	if lo, hi, ok := s.nearestPair(alpha); ok {
		k = interpolate(lo, hi, alpha)
	} else {
		var err error
		k, err = NewSOEKernel(alpha, s.cfg.TMax, s.cfg.Rank)
		if err != nil {
			return nil, err
		}
	}
	s.insert(key, k)
	return k, nil
}

// nearestPair finds cached kernels bracketing alpha as tightly as possible.
// Reports false unless two distinct kernels with distinct orders exist.
func (s *Solver) nearestPair(alpha float64) (lo, hi *SOEKernel, ok bool) {
	if len(s.kernels) < 2 {
		return nil, nil, false
	}
	for _, k := range s.kernels {
		if k.Alpha <= alpha && (lo == nil || k.Alpha > lo.Alpha) {
			lo = k
		}
		if k.Alpha >= alpha && (hi == nil || k.Alpha < hi.Alpha) {
			hi = k
		}
	}
	if lo == nil || hi == nil || lo == hi || math.Abs(hi.Alpha-lo.Alpha) < 1e-12 {
		return nil, nil, false
	}
	return lo, hi, true
}

func (s *Solver) insert(key int64, k *SOEKernel) {
	if len(s.kernels) >= s.capacity && len(s.keyOrder) > 0 {
		oldest := s.keyOrder[0]
		s.keyOrder = s.keyOrder[1:]
		delete(s.kernels, oldest)
	}
	s.kernels[key] = k
	s.keyOrder = append(s.keyOrder, key)
}

// PrecomputeKernels seeds the cache with evenly spaced orders across the
// configured alpha range.
func (s *Solver) PrecomputeKernels(samples int) error {
	if samples <= 1 {
		_, err := s.Kernel(s.cfg.AlphaMin)
		return err
	}
	span := s.cfg.AlphaMax - s.cfg.AlphaMin
	for i := 0; i < samples; i++ {
		alpha := s.cfg.AlphaMin + span*float64(i)/float64(samples-1)
		if _, err := s.Kernel(alpha); err != nil {
			return err
		}
	}
	return nil
}

// UpdateHistory advances every point's accumulators one step using that
// point's fractional order and the field's second time derivative:
//
//	z_r(t+dt) = exp(-s_r dt) z_r(t) + w_r f″(t) dt
func (s *Solver) UpdateHistory(field, secondDerivs []complex128, alphas []float64, dt float64) error {
	if len(field) != s.numPoints || len(secondDerivs) != s.numPoints || len(alphas) != s.numPoints {
		return fmt.Errorf("got lengths %d/%d/%d for %d points: %w",
			len(field), len(secondDerivs), len(alphas), s.numPoints, ErrSizeMismatch)
	}

	rank := s.cfg.Rank
	for i := 0; i < s.numPoints; i++ {
		k, err := s.Kernel(alphas[i])
		if err != nil {
			return err
		}
		base := i * rank
		d2 := secondDerivs[i]
		for r := 0; r < rank; r++ {
			decay := math.Exp(-k.Exponents[r] * dt)
			s.state[base+r] = complex(decay, 0)*s.state[base+r] + complex(k.Weights[r]*dt, 0)*d2
		}
	}
	return nil
}

// ComputeDerivatives sums each point's accumulators. Pure read.
func (s *Solver) ComputeDerivatives(alphas []float64) ([]complex128, error) {
	if len(alphas) != s.numPoints {
		return nil, fmt.Errorf("got %d alphas for %d points: %w", len(alphas), s.numPoints, ErrSizeMismatch)
	}
	out := make([]complex128, s.numPoints)
	rank := s.cfg.Rank
	for i := 0; i < s.numPoints; i++ {
		base := i * rank
		var sum complex128
		for r := 0; r < rank; r++ {
			sum += s.state[base+r]
		}
		out[i] = sum
	}
	return out, nil
}

// DerivativeAt returns the accumulated derivative for one point.
func (s *Solver) DerivativeAt(point int) (complex128, error) {
	if point < 0 || point >= s.numPoints {
		return 0, fmt.Errorf("point %d of %d: %w", point, s.numPoints, ErrPointRange)
	}
	base := point * s.cfg.Rank
	var sum complex128
	for r := 0; r < s.cfg.Rank; r++ {
		sum += s.state[base+r]
	}
	return sum, nil
}

// ResetHistory zeroes all accumulators, as if UpdateHistory had never run.
func (s *Solver) ResetHistory() {
	for i := range s.state {
		s.state[i] = 0
	}
}

// ExactCaputo evaluates the closed-form Caputo derivative of f(t) = t^β:
//
//	D^α t^β = Γ(β+1)/Γ(β-α+1) · t^(β-α)
//
// Used as a test oracle for the SOE machinery.
func ExactCaputo(alpha, beta, t float64) (float64, error) {
	if t <= 0 {
		return 0, fmt.Errorf("caputo derivative requires t > 0, got %g: %w", t, ErrGammaDomain)
	}
	num := specfn.Gamma(beta + 1.0)
	den := specfn.Gamma(beta - alpha + 1.0)
	if math.IsNaN(num) || math.IsInf(num, 0) || math.IsNaN(den) || math.IsInf(den, 0) || math.Abs(den) < 1e-15 {
		return 0, fmt.Errorf("gamma ratio undefined for alpha=%g beta=%g: %w", alpha, beta, ErrGammaDomain)
	}
	return (num / den) * math.Pow(t, beta-alpha), nil
}
