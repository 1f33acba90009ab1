// Package projection extracts observables from the symmetry field: the
// scalar Φ-mode, the stress-energy tensor, detector strain components, and
// the causal flow vector.
package projection

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/gwecho/internal/field"
)

// Gauge selects how strain components are extracted.
type Gauge int

const (
	GaugeTransverseTraceless Gauge = iota
	GaugeLorenz
)

// Tensor4 is a 4x4 tensor with index 0 as time and 1..3 as space.
type Tensor4 [4][4]float64

// SpatialTrace sums the diagonal spatial components.
func (t Tensor4) SpatialTrace() float64 { return t[1][1] + t[2][2] + t[3][3] }

// Minkowski returns η_μν = diag(-1, 1, 1, 1).
func Minkowski(mu, nu int) float64 {
	if mu != nu {
		return 0
	}
	if mu == 0 {
		return -1
	}
	return 1
}

// Config places the detector relative to the source.
type Config struct {
	ObserverPosition field.Vec3
	DetectorNormal   field.Vec3
	DetectorDistance float64
	Gauge            Gauge
}

// DefaultConfig observes from 1000 km out along z, looking back at the
// source.
func DefaultConfig() Config {
	return Config{
		ObserverPosition: field.Vec3{Z: 1e6},
		DetectorNormal:   field.Vec3{Z: -1},
		DetectorDistance: 1e6,
		Gauge:            GaugeTransverseTraceless,
	}
}

// Strain holds the two polarizations plus derived amplitude and phase.
type Strain struct {
	HPlus     float64
	HCross    float64
	Amplitude float64
	Phase     float64
}

// CausalFlow is the information-flow four-vector B_μ with the magnitude of
// its spatial part.
type CausalFlow struct {
	B0, B1, B2, B3 float64
	Magnitude      float64
}

// FullProjection bundles every observable at one grid point.
type FullProjection struct {
	PhiMode float64
	Stress  Tensor4
	Flow    CausalFlow
	Strain  Strain
}

// Operators evaluates projections for a fixed detector configuration.
type Operators struct {
	cfg Config
}

// New builds operators for a detector configuration. The detector normal is
// normalized; a zero normal stays zero.
func New(cfg Config) *Operators {
	cfg.DetectorNormal = cfg.DetectorNormal.Normalized()
	return &Operators{cfg: cfg}
}

func (p *Operators) Config() Config { return p.cfg }

// PhiMode is the scalar observable |δΦ|.
func (p *Operators) PhiMode(phi complex128) float64 { return cmplx.Abs(phi) }

// PhiModeField evaluates |δΦ| over the whole grid.
func (p *Operators) PhiModeField(f *field.SymmetryField) []float64 {
	phi := f.Phi()
	out := make([]float64, len(phi))
	for i, v := range phi {
		out[i] = cmplx.Abs(v)
	}
	return out
}

// StressTensor builds O_μν at a grid point. The spatial block is
// O_ij = ∂_i|δΦ| ∂_j|δΦ| - δ_ij L/3 with Lagrangian density
// L = |∇δΦ|² - V, and O_00 is the energy density |δΦ|² + |∇δΦ|² + V.
// Momentum flux components are zero.
func (p *Operators) StressTensor(f *field.SymmetryField, i, j, k int) (Tensor4, error) {
	var t Tensor4

	phi, err := f.At(i, j, k)
	if err != nil {
		return t, err
	}
	grad, err := f.Gradient(i, j, k)
	if err != nil {
		return t, err
	}
	potential, err := f.Potential(i, j, k)
	if err != nil {
		return t, err
	}

	gradSq := grad.Dot(grad)
	lagrangian := gradSq - potential

	comps := [3]float64{grad.X, grad.Y, grad.Z}
	for mu := 1; mu <= 3; mu++ {
		for nu := 1; nu <= 3; nu++ {
			t[mu][nu] = comps[mu-1] * comps[nu-1]
			if mu == nu {
				t[mu][nu] -= lagrangian / 3.0
			}
		}
	}

	normSq := real(phi)*real(phi) + imag(phi)*imag(phi)
	t[0][0] = normSq + gradSq + potential
	return t, nil
}

// ComputeStrain reduces a stress tensor to detector strain after the
// traceless extraction: h₊ = O₁₁-O₂₂, hₓ = 2O₁₂.
func (p *Operators) ComputeStrain(stress Tensor4) Strain {
	tt := tracelessSpatial(stress)
	s := Strain{
		HPlus:  tt[1][1] - tt[2][2],
		HCross: 2 * tt[1][2],
	}
	s.Amplitude = math.Hypot(s.HPlus, s.HCross)
	s.Phase = math.Atan2(s.HCross, s.HPlus)
	return s
}

// StrainAtObserver evaluates the strain at the grid point nearest the
// configured observer, clamped onto the grid when the observer sits
// outside it.
func (p *Operators) StrainAtObserver(f *field.SymmetryField) (Strain, error) {
	i, j, k := f.NearestIndices(p.cfg.ObserverPosition)
	cfg := f.Config()
	i = clamp(i, cfg.NX-1)
	j = clamp(j, cfg.NY-1)
	k = clamp(k, cfg.NZ-1)

	stress, err := p.StressTensor(f, i, j, k)
	if err != nil {
		return Strain{}, err
	}
	return p.ComputeStrain(stress), nil
}

// CausalFlowAt computes B_μ from the phase gradient, B_i = ∂_i|δΦ| / |δΦ|,
// with unit time flow. A vanishing field yields pure time flow.
func (p *Operators) CausalFlowAt(f *field.SymmetryField, i, j, k int) (CausalFlow, error) {
	phi, err := f.At(i, j, k)
	if err != nil {
		return CausalFlow{}, err
	}
	grad, err := f.Gradient(i, j, k)
	if err != nil {
		return CausalFlow{}, err
	}

	flow := CausalFlow{B0: 1}
	normSq := real(phi)*real(phi) + imag(phi)*imag(phi)
	if normSq > 1e-20 {
		norm := math.Sqrt(normSq)
		flow.B1 = grad.X / norm
		flow.B2 = grad.Y / norm
		flow.B3 = grad.Z / norm
	}
	flow.Magnitude = math.Sqrt(flow.B1*flow.B1 + flow.B2*flow.B2 + flow.B3*flow.B3)
	return flow, nil
}

// Project evaluates every observable at one grid point.
func (p *Operators) Project(f *field.SymmetryField, i, j, k int) (FullProjection, error) {
	phi, err := f.At(i, j, k)
	if err != nil {
		return FullProjection{}, err
	}
	stress, err := p.StressTensor(f, i, j, k)
	if err != nil {
		return FullProjection{}, err
	}
	flow, err := p.CausalFlowAt(f, i, j, k)
	if err != nil {
		return FullProjection{}, err
	}
	return FullProjection{
		PhiMode: cmplx.Abs(phi),
		Stress:  stress,
		Flow:    flow,
		Strain:  p.ComputeStrain(stress),
	}, nil
}

// TransformGauge re-expresses strain in another gauge. Polarizations are
// gauge scalars here, so only the derived quantities are recomputed.
func (p *Operators) TransformGauge(s Strain, target Gauge) Strain {
	if target == p.cfg.Gauge {
		return s
	}
	out := s
	out.Amplitude = math.Hypot(out.HPlus, out.HCross)
	out.Phase = math.Atan2(out.HCross, out.HPlus)
	return out
}

// tracelessSpatial keeps the spatial block with its trace removed and
// zeroes every time component.
func tracelessSpatial(t Tensor4) Tensor4 {
	var out Tensor4
	for i := 1; i <= 3; i++ {
		for j := 1; j <= 3; j++ {
			out[i][j] = t[i][j]
		}
	}
	trace := out.SpatialTrace() / 3.0
	out[1][1] -= trace
	out[2][2] -= trace
	out[3][3] -= trace
	return out
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
