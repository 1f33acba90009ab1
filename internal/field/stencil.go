package field

import (
	"fmt"
	"math/cmplx"
)

// Gradient computes ∇δΦ with second-order centered differences in the
// interior and one-sided differences on boundary faces. Each component is
// the modulus of the complex derivative in that direction, a documented
// simplification, not a true complex gradient.
func (f *SymmetryField) Gradient(i, j, k int) (Vec3, error) {
	if !f.validIndex(i, j, k) {
		return Vec3{}, fmt.Errorf("index (%d, %d, %d): %w", i, j, k, ErrIndexRange)
	}
	return f.gradientAt(i, j, k), nil
}

func (f *SymmetryField) gradientAt(i, j, k int) Vec3 {
	center := f.phi[f.FlatIndex(i, j, k)]

	var dphidx complex128
	switch {
	case i == 0:
		dphidx = (f.phi[f.FlatIndex(i+1, j, k)] - center) / complex(f.cfg.DX, 0)
	case i == f.cfg.NX-1:
		dphidx = (center - f.phi[f.FlatIndex(i-1, j, k)]) / complex(f.cfg.DX, 0)
	default:
		dphidx = (f.phi[f.FlatIndex(i+1, j, k)] - f.phi[f.FlatIndex(i-1, j, k)]) / complex(2*f.cfg.DX, 0)
	}

	var dphidy complex128
	switch {
	case j == 0:
		dphidy = (f.phi[f.FlatIndex(i, j+1, k)] - center) / complex(f.cfg.DY, 0)
	case j == f.cfg.NY-1:
		dphidy = (center - f.phi[f.FlatIndex(i, j-1, k)]) / complex(f.cfg.DY, 0)
	default:
		dphidy = (f.phi[f.FlatIndex(i, j+1, k)] - f.phi[f.FlatIndex(i, j-1, k)]) / complex(2*f.cfg.DY, 0)
	}

	var dphidz complex128
	switch {
	case k == 0:
		dphidz = (f.phi[f.FlatIndex(i, j, k+1)] - center) / complex(f.cfg.DZ, 0)
	case k == f.cfg.NZ-1:
		dphidz = (center - f.phi[f.FlatIndex(i, j, k-1)]) / complex(f.cfg.DZ, 0)
	default:
		dphidz = (f.phi[f.FlatIndex(i, j, k+1)] - f.phi[f.FlatIndex(i, j, k-1)]) / complex(2*f.cfg.DZ, 0)
	}

	return Vec3{cmplx.Abs(dphidx), cmplx.Abs(dphidy), cmplx.Abs(dphidz)}
}

// Laplacian computes the 7-point stencil ∇²δΦ. On any boundary face it is
// defined as zero; downstream behavior depends on this, do not "fix" it.
func (f *SymmetryField) Laplacian(i, j, k int) (complex128, error) {
	if !f.validIndex(i, j, k) {
		return 0, fmt.Errorf("index (%d, %d, %d): %w", i, j, k, ErrIndexRange)
	}
	return f.laplacianAt(i, j, k), nil
}

func (f *SymmetryField) laplacianAt(i, j, k int) complex128 {
	if i == 0 || i == f.cfg.NX-1 || j == 0 || j == f.cfg.NY-1 || k == 0 || k == f.cfg.NZ-1 {
		return 0
	}

	center := f.phi[f.FlatIndex(i, j, k)]
	two := complex(2, 0)

	d2x := (f.phi[f.FlatIndex(i+1, j, k)] - two*center + f.phi[f.FlatIndex(i-1, j, k)]) /
		complex(f.cfg.DX*f.cfg.DX, 0)
	d2y := (f.phi[f.FlatIndex(i, j+1, k)] - two*center + f.phi[f.FlatIndex(i, j-1, k)]) /
		complex(f.cfg.DY*f.cfg.DY, 0)
	d2z := (f.phi[f.FlatIndex(i, j, k+1)] - two*center + f.phi[f.FlatIndex(i, j, k-1)]) /
		complex(f.cfg.DZ*f.cfg.DZ, 0)

	return d2x + d2y + d2z
}
