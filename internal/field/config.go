package field

import "fmt"

// maxGridElems caps the flat array size so that an oversized grid request
// fails with an error at construction instead of an OOM kill.
const maxGridElems = 1 << 31

// Config describes the 3D grid and the field's physical couplings.
type Config struct {
	NX, NY, NZ int     // grid dimensions
	DX, DY, DZ float64 // spacing (meters)

	Lambda float64 // quadratic potential coupling
	Kappa  float64 // quartic potential coupling

	AlphaMin float64 // maximum memory
	AlphaMax float64 // no memory (standard wave)

	Dt float64 // timestep (seconds)
}

func DefaultConfig() Config {
	return Config{
		NX: 64, NY: 64, NZ: 64,
		DX: 1000, DY: 1000, DZ: 1000,
		Lambda:   0.1,
		Kappa:    1.0,
		AlphaMin: 1.0,
		AlphaMax: 2.0,
		Dt:       0.001,
	}
}

// Validate checks dimensions, spacing, timestep, the CFL bound, and the
// fractional order range. All violations are fatal at construction.
func (c Config) Validate() error {
	if c.NX <= 0 || c.NY <= 0 || c.NZ <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%dx%d: %w",
			c.NX, c.NY, c.NZ, ErrInvalidConfig)
	}
	if c.DX <= 0 || c.DY <= 0 || c.DZ <= 0 {
		return fmt.Errorf("grid spacing must be positive, got (%g, %g, %g): %w",
			c.DX, c.DY, c.DZ, ErrInvalidConfig)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("timestep must be positive, got %g: %w", c.Dt, ErrInvalidConfig)
	}

	// Explicit wave update with unit wave speed.
	cflLimit := 0.5 * minSpacing(c)
	if c.Dt > cflLimit {
		return fmt.Errorf("dt=%g > 0.5·min(dx,dy,dz)=%g; reduce dt or widen the grid: %w",
			c.Dt, cflLimit, ErrCFLViolation)
	}

	if c.AlphaMin <= 0 || c.AlphaMin > 2 {
		return fmt.Errorf("alpha_min must be in (0, 2], got %g: %w", c.AlphaMin, ErrInvalidConfig)
	}
	if c.AlphaMax <= 0 || c.AlphaMax > 2 {
		return fmt.Errorf("alpha_max must be in (0, 2], got %g: %w", c.AlphaMax, ErrInvalidConfig)
	}
	if c.AlphaMin > c.AlphaMax {
		return fmt.Errorf("alpha_min %g > alpha_max %g: %w", c.AlphaMin, c.AlphaMax, ErrInvalidConfig)
	}

	total := int64(c.NX) * int64(c.NY) * int64(c.NZ)
	if total > maxGridElems {
		return fmt.Errorf("%dx%dx%d grid needs %d points: %w", c.NX, c.NY, c.NZ, total, ErrGridTooLarge)
	}
	return nil
}

func (c Config) TotalPoints() int {
	return c.NX * c.NY * c.NZ
}

func minSpacing(c Config) float64 {
	m := c.DX
	if c.DY < m {
		m = c.DY
	}
	if c.DZ < m {
		m = c.DZ
	}
	return m
}
