// Package field holds the 3D complex scalar field evolved under the
// fractional wave equation, with its per-point fractional order and cached
// gradient/potential diagnostics.
package field

import (
	"fmt"
	"math/cmplx"
)

// SymmetryField owns the flat field arrays. All four arrays always have
// length NX·NY·NZ, and the gradient/potential caches are fully recomputed
// after every evolution step; they are never partially stale when read.
//
// A field instance is not safe for concurrent use; one driver owns it.
type SymmetryField struct {
	cfg Config

	phi       []complex128 // δΦ
	alpha     []float64    // fractional order per point
	gradMag   []float64    // cached |∇δΦ| (componentwise-modulus form)
	potential []float64    // cached V(δΦ)

	scratch []complex128 // evolution buffer, reused across steps

	time float64
}

// New validates the configuration and allocates the grid. The alpha array
// starts at alpha_max everywhere (no memory).
func New(cfg Config) (*SymmetryField, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	total := cfg.TotalPoints()

	f := &SymmetryField{
		cfg:       cfg,
		phi:       make([]complex128, total),
		alpha:     make([]float64, total),
		gradMag:   make([]float64, total),
		potential: make([]float64, total),
		scratch:   make([]complex128, total),
	}
	for i := range f.alpha {
		f.alpha[i] = cfg.AlphaMax
	}
	return f, nil
}

func (f *SymmetryField) Config() Config   { return f.cfg }
func (f *SymmetryField) TotalPoints() int { return len(f.phi) }
func (f *SymmetryField) Time() float64    { return f.time }

// FlatIndex maps (i,j,k) to the flat array index i + nx·(j + ny·k).
func (f *SymmetryField) FlatIndex(i, j, k int) int {
	return i + f.cfg.NX*(j+f.cfg.NY*k)
}

// Coords inverts FlatIndex.
func (f *SymmetryField) Coords(idx int) (i, j, k int) {
	nxny := f.cfg.NX * f.cfg.NY
	k = idx / nxny
	rem := idx % nxny
	return rem % f.cfg.NX, rem / f.cfg.NX, k
}

// Position returns the physical position of a grid point.
func (f *SymmetryField) Position(i, j, k int) Vec3 {
	return Vec3{float64(i) * f.cfg.DX, float64(j) * f.cfg.DY, float64(k) * f.cfg.DZ}
}

func (f *SymmetryField) validIndex(i, j, k int) bool {
	return i >= 0 && i < f.cfg.NX && j >= 0 && j < f.cfg.NY && k >= 0 && k < f.cfg.NZ
}

// At returns δΦ at a grid point.
func (f *SymmetryField) At(i, j, k int) (complex128, error) {
	if !f.validIndex(i, j, k) {
		return 0, fmt.Errorf("index (%d, %d, %d): %w", i, j, k, ErrIndexRange)
	}
	return f.phi[f.FlatIndex(i, j, k)], nil
}

// SetAt assigns δΦ at a grid point. Caches are not refreshed; callers
// seeding an initial condition should call RefreshCaches once afterwards.
func (f *SymmetryField) SetAt(i, j, k int, v complex128) error {
	if !f.validIndex(i, j, k) {
		return fmt.Errorf("index (%d, %d, %d): %w", i, j, k, ErrIndexRange)
	}
	f.phi[f.FlatIndex(i, j, k)] = v
	return nil
}

// Alpha returns the fractional order at a grid point.
func (f *SymmetryField) Alpha(i, j, k int) (float64, error) {
	if !f.validIndex(i, j, k) {
		return 0, fmt.Errorf("index (%d, %d, %d): %w", i, j, k, ErrIndexRange)
	}
	return f.alpha[f.FlatIndex(i, j, k)], nil
}

// SetAlpha assigns the fractional order at a grid point, bounded by the
// configured range.
func (f *SymmetryField) SetAlpha(i, j, k int, alpha float64) error {
	if !f.validIndex(i, j, k) {
		return fmt.Errorf("index (%d, %d, %d): %w", i, j, k, ErrIndexRange)
	}
	if alpha < f.cfg.AlphaMin || alpha > f.cfg.AlphaMax {
		return fmt.Errorf("alpha %g outside [%g, %g]: %w", alpha, f.cfg.AlphaMin, f.cfg.AlphaMax, ErrAlphaRange)
	}
	f.alpha[f.FlatIndex(i, j, k)] = alpha
	return nil
}

// Phi exposes the flat field array for per-step reads by the solver and
// source generators. Callers must not mutate it.
func (f *SymmetryField) Phi() []complex128 { return f.phi }

// PhiSnapshot returns a copy of the field array.
func (f *SymmetryField) PhiSnapshot() []complex128 {
	out := make([]complex128, len(f.phi))
	copy(out, f.phi)
	return out
}

// AlphaValues returns a copy of the per-point fractional orders.
func (f *SymmetryField) AlphaValues() []float64 {
	out := make([]float64, len(f.alpha))
	copy(out, f.alpha)
	return out
}

// GradientMagnitude reads the cached gradient magnitude.
func (f *SymmetryField) GradientMagnitude(i, j, k int) (float64, error) {
	if !f.validIndex(i, j, k) {
		return 0, fmt.Errorf("index (%d, %d, %d): %w", i, j, k, ErrIndexRange)
	}
	return f.gradMag[f.FlatIndex(i, j, k)], nil
}

// Potential reads the cached potential V = λ|δΦ|² + κ|δΦ|⁴.
func (f *SymmetryField) Potential(i, j, k int) (float64, error) {
	if !f.validIndex(i, j, k) {
		return 0, fmt.Errorf("index (%d, %d, %d): %w", i, j, k, ErrIndexRange)
	}
	return f.potential[f.FlatIndex(i, j, k)], nil
}

func (f *SymmetryField) potentialOf(phi complex128) float64 {
	sq := real(phi)*real(phi) + imag(phi)*imag(phi)
	return f.cfg.Lambda*sq + f.cfg.Kappa*sq*sq
}

// PotentialDerivative returns ∂V/∂δΦ* = λδΦ + 2κ|δΦ|²δΦ at a point.
func (f *SymmetryField) PotentialDerivative(i, j, k int) (complex128, error) {
	phi, err := f.At(i, j, k)
	if err != nil {
		return 0, err
	}
	sq := real(phi)*real(phi) + imag(phi)*imag(phi)
	return complex(f.cfg.Lambda, 0)*phi + complex(2*f.cfg.Kappa*sq, 0)*phi, nil
}

// RefreshCaches recomputes the gradient and potential caches for the whole
// grid. EvolveStep does this automatically; call it manually after seeding
// initial conditions with SetAt.
func (f *SymmetryField) RefreshCaches() {
	for k := 0; k < f.cfg.NZ; k++ {
		for j := 0; j < f.cfg.NY; j++ {
			for i := 0; i < f.cfg.NX; i++ {
				idx := f.FlatIndex(i, j, k)
				g := f.gradientAt(i, j, k)
				f.gradMag[idx] = g.Norm()
				f.potential[idx] = f.potentialOf(f.phi[idx])
			}
		}
	}
}

// EvolveStep advances the field one timestep under
//
//	ψ(t+dt) = ψ(t) + dt·(∇²ψ - D^α_t ψ - V·ψ + S)
//
// for interior points; boundary points are left unchanged (a documented
// simplification, paired with the zero-Laplacian boundary rule). Both input
// vectors must be sized to the grid. Caches are refreshed and time advances
// by dt afterwards.
func (f *SymmetryField) EvolveStep(fractionalDerivs, sources []complex128) error {
	total := len(f.phi)
	if len(fractionalDerivs) != total || len(sources) != total {
		return fmt.Errorf("got lengths %d/%d for %d points: %w",
			len(fractionalDerivs), len(sources), total, ErrSizeMismatch)
	}

	dt := complex(f.cfg.Dt, 0)
	for k := 1; k < f.cfg.NZ-1; k++ {
		for j := 1; j < f.cfg.NY-1; j++ {
			for i := 1; i < f.cfg.NX-1; i++ {
				idx := f.FlatIndex(i, j, k)
				psi := f.phi[idx]
				lap := f.laplacianAt(i, j, k)
				rhs := lap - fractionalDerivs[idx] - complex(f.potential[idx], 0)*psi + sources[idx]
				f.scratch[idx] = psi + dt*rhs
			}
		}
	}

	for k := 1; k < f.cfg.NZ-1; k++ {
		for j := 1; j < f.cfg.NY-1; j++ {
			for i := 1; i < f.cfg.NX-1; i++ {
				idx := f.FlatIndex(i, j, k)
				f.phi[idx] = f.scratch[idx]
			}
		}
	}

	f.RefreshCaches()
	f.time += f.cfg.Dt
	return nil
}

// TotalEnergy integrates |δΦ|² over the grid volume.
func (f *SymmetryField) TotalEnergy() float64 {
	dV := f.cfg.DX * f.cfg.DY * f.cfg.DZ
	sum := 0.0
	for _, phi := range f.phi {
		sum += (real(phi)*real(phi) + imag(phi)*imag(phi)) * dV
	}
	return sum
}

// MaxAmplitude returns max |δΦ| over the grid.
func (f *SymmetryField) MaxAmplitude() float64 {
	m := 0.0
	for _, phi := range f.phi {
		if a := cmplx.Abs(phi); a > m {
			m = a
		}
	}
	return m
}

// Stats summarizes field state in one pass.
type Stats struct {
	MaxAmplitude  float64
	MeanAmplitude float64
	TotalEnergy   float64
	MaxGradient   float64
	MeanGradient  float64
}

func (f *SymmetryField) Statistics() Stats {
	var s Stats
	dV := f.cfg.DX * f.cfg.DY * f.cfg.DZ
	total := len(f.phi)

	var sumAmp, sumGrad float64
	for idx := 0; idx < total; idx++ {
		amp := cmplx.Abs(f.phi[idx])
		sumAmp += amp
		if amp > s.MaxAmplitude {
			s.MaxAmplitude = amp
		}
		s.TotalEnergy += (real(f.phi[idx])*real(f.phi[idx]) + imag(f.phi[idx])*imag(f.phi[idx])) * dV

		g := f.gradMag[idx]
		sumGrad += g
		if g > s.MaxGradient {
			s.MaxGradient = g
		}
	}
	s.MeanAmplitude = sumAmp / float64(total)
	s.MeanGradient = sumGrad / float64(total)
	return s
}
