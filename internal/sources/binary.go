// Package sources generates the driving terms of the field evolution: a
// binary merger pair of Gaussian concentrations on circular (optionally
// inspiraling) orbits, and a post-merger echo train timed by prime gaps.
package sources

import (
	"fmt"
	"math"

	"github.com/san-kum/gwecho/internal/field"
)

// Physical constants in SI units.
const (
	GravitationalConstant = 6.6743e-11  // m³ kg⁻¹ s⁻²
	SpeedOfLight          = 299792458.0 // m/s
	SolarMass             = 1.98847e30  // kg
)

// MergerConfig describes a binary system. Masses are in solar masses,
// lengths in meters.
type MergerConfig struct {
	Mass1 float64
	Mass2 float64

	InitialSeparation float64
	InitialPhase      float64 // radians
	Center            field.Vec3
	GaussianWidth     float64 // σ of each concentration
	SourceAmplitude   float64
	EnableInspiral    bool
	MergerThreshold   float64 // merger radius in Schwarzschild radii
}

// DefaultMergerConfig returns a GW150914-like equal-mass system on a fixed
// circular orbit.
func DefaultMergerConfig() MergerConfig {
	return MergerConfig{
		Mass1:             30.0,
		Mass2:             30.0,
		InitialSeparation: 200e3,
		GaussianWidth:     5e3,
		SourceAmplitude:   1.0,
		MergerThreshold:   3.0,
	}
}

func (c MergerConfig) Validate() error {
	if c.Mass1 <= 0 || c.Mass2 <= 0 {
		return fmt.Errorf("masses %g/%g must be positive: %w", c.Mass1, c.Mass2, ErrInvalidConfig)
	}
	if c.InitialSeparation <= 0 {
		return fmt.Errorf("initial separation %g must be positive: %w", c.InitialSeparation, ErrInvalidConfig)
	}
	if c.GaussianWidth <= 0 {
		return fmt.Errorf("gaussian width %g must be positive: %w", c.GaussianWidth, ErrInvalidConfig)
	}
	if c.SourceAmplitude < 0 {
		return fmt.Errorf("source amplitude %g must be non-negative: %w", c.SourceAmplitude, ErrInvalidConfig)
	}
	if c.MergerThreshold <= 0 {
		return fmt.Errorf("merger threshold %g must be positive: %w", c.MergerThreshold, ErrInvalidConfig)
	}
	return nil
}

// BinaryMerger evolves two point masses on a circular orbit in the xy-plane
// about the configured center, radiating per Peters & Mathews (1963) when
// inspiral is enabled, and emits a Gaussian source term at each mass.
type BinaryMerger struct {
	cfg MergerConfig

	separation float64
	phase      float64
	omega      float64

	pos1, pos2 field.Vec3
	r1, r2     float64 // orbital radii about the center of mass

	totalMass           float64 // kg
	reducedMass         float64 // kg
	schwarzschildRadius float64
	mergerRadius        float64

	energyRadiated float64
	merged         bool
}

// NewBinaryMerger validates the configuration and places both masses at
// their initial orbital positions.
func NewBinaryMerger(cfg MergerConfig) (*BinaryMerger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &BinaryMerger{cfg: cfg}
	b.initialize()
	return b, nil
}

func (b *BinaryMerger) initialize() {
	b.separation = b.cfg.InitialSeparation
	b.phase = b.cfg.InitialPhase
	b.energyRadiated = 0
	b.merged = false

	b.totalMass = (b.cfg.Mass1 + b.cfg.Mass2) * SolarMass
	b.reducedMass = b.cfg.Mass1 * b.cfg.Mass2 / (b.cfg.Mass1 + b.cfg.Mass2) * SolarMass
	b.schwarzschildRadius = 2 * GravitationalConstant * b.totalMass / (SpeedOfLight * SpeedOfLight)
	b.mergerRadius = b.cfg.MergerThreshold * b.schwarzschildRadius

	b.updateRadii()
	b.omega = b.orbitalFrequency(b.separation)
	b.updatePositions()
}

func (b *BinaryMerger) updateRadii() {
	massRatio := b.cfg.Mass2 / (b.cfg.Mass1 + b.cfg.Mass2)
	b.r1 = massRatio * b.separation
	b.r2 = (1 - massRatio) * b.separation
}

// orbitalFrequency applies Kepler's third law, ω = sqrt(GM/r³).
func (b *BinaryMerger) orbitalFrequency(separation float64) float64 {
	return math.Sqrt(GravitationalConstant * b.totalMass / (separation * separation * separation))
}

// inspiralRate is the Peters & Mathews quadrupole decay
// dr/dt = -(64/5) G³m₁m₂(m₁+m₂) / (c⁵r³).
func (b *BinaryMerger) inspiralRate() float64 {
	m1 := b.cfg.Mass1 * SolarMass
	m2 := b.cfg.Mass2 * SolarMass
	r3 := b.separation * b.separation * b.separation
	g3 := GravitationalConstant * GravitationalConstant * GravitationalConstant
	c5 := math.Pow(SpeedOfLight, 5)
	return -(64.0 / 5.0) * g3 * m1 * m2 * b.totalMass / (c5 * r3)
}

// gwLuminosity is L_GW = (32/5) G⁴/c⁵ (m₁m₂)² (m₁+m₂) / r⁵.
func (b *BinaryMerger) gwLuminosity() float64 {
	m1 := b.cfg.Mass1 * SolarMass
	m2 := b.cfg.Mass2 * SolarMass
	r5 := math.Pow(b.separation, 5)
	g4 := math.Pow(GravitationalConstant, 4)
	c5 := math.Pow(SpeedOfLight, 5)
	return (32.0 / 5.0) * g4 / c5 * (m1 * m2) * (m1 * m2) * b.totalMass / r5
}

func (b *BinaryMerger) updatePositions() {
	radial := field.Vec3{X: math.Cos(b.phase), Y: math.Sin(b.phase)}
	b.pos1 = b.cfg.Center.Add(radial.Scale(b.r1))
	b.pos2 = b.cfg.Center.Add(radial.Scale(-b.r2))
}

// EvolveOrbit advances the orbit by dt. With inspiral enabled, separation
// shrinks, the frequency chirps up, radiated energy accumulates, and the
// pair merges once separation reaches the merger radius. A merged binary
// no longer moves.
func (b *BinaryMerger) EvolveOrbit(dt float64) {
	if b.merged {
		return
	}

	b.phase += b.omega * dt
	for b.phase >= 2*math.Pi {
		b.phase -= 2 * math.Pi
	}

	if b.cfg.EnableInspiral {
		b.separation += b.inspiralRate() * dt
		b.updateRadii()
		b.omega = b.orbitalFrequency(b.separation)

		if b.separation <= b.mergerRadius {
			b.merged = true
		}

		b.energyRadiated += b.gwLuminosity() * dt
	}

	b.updatePositions()
}

// Reset restores the initial orbital state.
func (b *BinaryMerger) Reset() { b.initialize() }

// SourceTerms fills out with S₁+S₂ sampled at every grid point, where each
// S_i is a Gaussian centered on mass i with amplitude proportional to
// m_i/m₁. A merged binary yields all zeros. The slice length must match the
// grid.
func (b *BinaryMerger) SourceTerms(f *field.SymmetryField, out []complex128) error {
	total := f.TotalPoints()
	if len(out) != total {
		return fmt.Errorf("source buffer length %d for %d points: %w", len(out), total, field.ErrSizeMismatch)
	}
	for i := range out {
		out[i] = 0
	}
	if b.merged {
		return nil
	}

	cfg := f.Config()
	sigmaSq := b.cfg.GaussianWidth * b.cfg.GaussianWidth
	amp2 := b.cfg.Mass2 / b.cfg.Mass1

	for k := 0; k < cfg.NZ; k++ {
		for j := 0; j < cfg.NY; j++ {
			for i := 0; i < cfg.NX; i++ {
				pos := f.Position(i, j, k)
				s1 := gaussianAt(pos, b.pos1, 1.0, sigmaSq)
				s2 := gaussianAt(pos, b.pos2, amp2, sigmaSq)
				out[f.FlatIndex(i, j, k)] = complex((s1+s2)*b.cfg.SourceAmplitude, 0)
			}
		}
	}
	return nil
}

func gaussianAt(pos, center field.Vec3, amplitude, sigmaSq float64) float64 {
	d := pos.Sub(center)
	rSq := d.Dot(d)
	return amplitude * math.Exp(-rSq/(2*sigmaSq))
}

// TimeToMerger estimates the remaining inspiral time from Peters & Mathews,
// τ = (5/256) c⁵r⁴ / (G³m₁m₂M). Returns -1 when inspiral is disabled or the
// pair has already merged.
func (b *BinaryMerger) TimeToMerger() float64 {
	if !b.cfg.EnableInspiral || b.merged {
		return -1
	}
	m1 := b.cfg.Mass1 * SolarMass
	m2 := b.cfg.Mass2 * SolarMass
	c5 := math.Pow(SpeedOfLight, 5)
	g3 := GravitationalConstant * GravitationalConstant * GravitationalConstant
	r4 := math.Pow(b.separation, 4)
	return (5.0 / 256.0) * c5 * r4 / (g3 * m1 * m2 * b.totalMass)
}

func (b *BinaryMerger) Config() MergerConfig         { return b.cfg }
func (b *BinaryMerger) Position1() field.Vec3        { return b.pos1 }
func (b *BinaryMerger) Position2() field.Vec3        { return b.pos2 }
func (b *BinaryMerger) Separation() float64          { return b.separation }
func (b *BinaryMerger) OrbitalFrequency() float64    { return b.omega }
func (b *BinaryMerger) OrbitalPhase() float64        { return b.phase }
func (b *BinaryMerger) HasMerged() bool              { return b.merged }
func (b *BinaryMerger) SchwarzschildRadius() float64 { return b.schwarzschildRadius }
func (b *BinaryMerger) MergerRadius() float64        { return b.mergerRadius }
func (b *BinaryMerger) TotalEnergyRadiated() float64 { return b.energyRadiated }

// TotalMass returns m₁+m₂ in solar masses.
func (b *BinaryMerger) TotalMass() float64 { return b.cfg.Mass1 + b.cfg.Mass2 }

// ReducedMass returns m₁m₂/(m₁+m₂) in solar masses.
func (b *BinaryMerger) ReducedMass() float64 {
	return b.cfg.Mass1 * b.cfg.Mass2 / (b.cfg.Mass1 + b.cfg.Mass2)
}
