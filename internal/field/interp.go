package field

import "math"

// InterpolatePhi evaluates δΦ at an arbitrary physical position by
// trilinear interpolation. Positions whose interpolation cell falls outside
// the grid return zero.
func (f *SymmetryField) InterpolatePhi(pos Vec3) complex128 {
	i0, j0, k0, wx, wy, wz, ok := f.cell(pos)
	if !ok {
		return 0
	}

	c := func(di, dj, dk int) complex128 {
		return f.phi[f.FlatIndex(i0+di, j0+dj, k0+dk)]
	}
	w := func(di, dj, dk int) float64 {
		return pick(wx, di) * pick(wy, dj) * pick(wz, dk)
	}

	var sum complex128
	for di := 0; di <= 1; di++ {
		for dj := 0; dj <= 1; dj++ {
			for dk := 0; dk <= 1; dk++ {
				sum += c(di, dj, dk) * complex(w(di, dj, dk), 0)
			}
		}
	}
	return sum
}

// InterpolateAlpha evaluates the fractional order at an arbitrary position.
// Outside the grid it returns alpha_max (no memory).
func (f *SymmetryField) InterpolateAlpha(pos Vec3) float64 {
	i0, j0, k0, wx, wy, wz, ok := f.cell(pos)
	if !ok {
		return f.cfg.AlphaMax
	}

	sum := 0.0
	for di := 0; di <= 1; di++ {
		for dj := 0; dj <= 1; dj++ {
			for dk := 0; dk <= 1; dk++ {
				sum += f.alpha[f.FlatIndex(i0+di, j0+dj, k0+dk)] *
					pick(wx, di) * pick(wy, dj) * pick(wz, dk)
			}
		}
	}
	return sum
}

// NearestIndices maps a position to the closest grid indices, unclamped.
func (f *SymmetryField) NearestIndices(pos Vec3) (i, j, k int) {
	return int(pos.X/f.cfg.DX + 0.5), int(pos.Y/f.cfg.DY + 0.5), int(pos.Z/f.cfg.DZ + 0.5)
}

// cell locates the interpolation cell for a position and returns the lower
// corner plus the fractional weights toward the upper corner.
func (f *SymmetryField) cell(pos Vec3) (i0, j0, k0 int, wx, wy, wz float64, ok bool) {
	fx := pos.X / f.cfg.DX
	fy := pos.Y / f.cfg.DY
	fz := pos.Z / f.cfg.DZ

	i0 = int(math.Floor(fx))
	j0 = int(math.Floor(fy))
	k0 = int(math.Floor(fz))

	if i0 < 0 || i0+1 >= f.cfg.NX || j0 < 0 || j0+1 >= f.cfg.NY || k0 < 0 || k0+1 >= f.cfg.NZ {
		return 0, 0, 0, 0, 0, 0, false
	}
	return i0, j0, k0, fx - float64(i0), fy - float64(j0), fz - float64(k0), true
}

// pick returns the weight toward the upper corner when d is 1, away when 0.
func pick(w float64, d int) float64 {
	if d == 1 {
		return w
	}
	return 1 - w
}
