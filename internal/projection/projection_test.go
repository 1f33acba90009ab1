package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gwecho/internal/field"
)

func testField(t *testing.T) *field.SymmetryField {
	t.Helper()
	f, err := field.New(field.Config{
		NX: 8, NY: 8, NZ: 8,
		DX: 1, DY: 1, DZ: 1,
		Lambda: 0.1, Kappa: 1.0,
		AlphaMin: 1.0, AlphaMax: 2.0,
		Dt: 0.1,
	})
	if err != nil {
		t.Fatalf("field.New: %v", err)
	}
	return f
}

func TestPhiMode(t *testing.T) {
	p := New(DefaultConfig())
	if got := p.PhiMode(complex(3, 4)); math.Abs(got-5) > 1e-12 {
		t.Errorf("PhiMode(3+4i) = %g, want 5", got)
	}
	if got := p.PhiMode(0); got != 0 {
		t.Errorf("PhiMode(0) = %g", got)
	}
}

func TestPhiModeField(t *testing.T) {
	f := testField(t)
	if err := f.SetAt(2, 3, 4, complex(0, -2)); err != nil {
		t.Fatal(err)
	}
	p := New(DefaultConfig())
	modes := p.PhiModeField(f)
	if len(modes) != f.TotalPoints() {
		t.Fatalf("length %d, want %d", len(modes), f.TotalPoints())
	}
	if got := modes[f.FlatIndex(2, 3, 4)]; math.Abs(got-2) > 1e-12 {
		t.Errorf("mode = %g, want 2", got)
	}
}

func TestMinkowski(t *testing.T) {
	if Minkowski(0, 0) != -1 {
		t.Error("η_00 != -1")
	}
	for i := 1; i <= 3; i++ {
		if Minkowski(i, i) != 1 {
			t.Errorf("η_%d%d != 1", i, i)
		}
	}
	if Minkowski(0, 2) != 0 || Minkowski(3, 1) != 0 {
		t.Error("off-diagonal metric not zero")
	}
}

func TestStressTensorStructure(t *testing.T) {
	f := testField(t)
	for k := 0; k < 8; k++ {
		for j := 0; j < 8; j++ {
			for i := 0; i < 8; i++ {
				v := complex(0.1*float64(i)+0.05*float64(j), 0.02*float64(k))
				if err := f.SetAt(i, j, k, v); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	f.RefreshCaches()

	p := New(DefaultConfig())
	stress, err := p.StressTensor(f, 4, 4, 4)
	if err != nil {
		t.Fatalf("StressTensor: %v", err)
	}

	// Spatial block is symmetric by construction.
	for i := 1; i <= 3; i++ {
		for j := 1; j <= 3; j++ {
			if stress[i][j] != stress[j][i] {
				t.Errorf("asymmetric spatial block at (%d,%d)", i, j)
			}
		}
	}

	// The spatial trace reduces to the potential: Σ g_i² - L = V.
	potential, err := f.Potential(4, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got := stress.SpatialTrace(); math.Abs(got-potential) > 1e-12 {
		t.Errorf("spatial trace %g, want potential %g", got, potential)
	}

	if stress[0][0] <= 0 {
		t.Errorf("energy density %g, want positive", stress[0][0])
	}
	for i := 1; i <= 3; i++ {
		if stress[0][i] != 0 || stress[i][0] != 0 {
			t.Error("momentum flux components not zero")
		}
	}
}

func TestStressTensorBadIndex(t *testing.T) {
	p := New(DefaultConfig())
	if _, err := p.StressTensor(testField(t), 99, 0, 0); !errors.Is(err, field.ErrIndexRange) {
		t.Errorf("expected ErrIndexRange, got %v", err)
	}
}

func TestComputeStrainFromKnownTensor(t *testing.T) {
	var stress Tensor4
	stress[1][1] = 3
	stress[2][2] = 1
	stress[1][2] = 0.5
	stress[2][1] = 0.5
	stress[3][3] = 2

	p := New(DefaultConfig())
	s := p.ComputeStrain(stress)

	// The trace subtraction cancels in the polarization differences.
	if math.Abs(s.HPlus-2) > 1e-12 {
		t.Errorf("h+ = %g, want 2", s.HPlus)
	}
	if math.Abs(s.HCross-1) > 1e-12 {
		t.Errorf("hx = %g, want 1", s.HCross)
	}
	if math.Abs(s.Amplitude-math.Sqrt(5)) > 1e-12 {
		t.Errorf("amplitude = %g, want sqrt(5)", s.Amplitude)
	}
	if math.Abs(s.Phase-math.Atan2(1, 2)) > 1e-12 {
		t.Errorf("phase = %g", s.Phase)
	}
}

func TestTracelessSpatial(t *testing.T) {
	var stress Tensor4
	stress[0][0] = 9
	stress[0][1] = 4
	stress[1][0] = 4
	stress[1][1] = 1
	stress[2][2] = 2
	stress[3][3] = 3

	tt := tracelessSpatial(stress)
	if math.Abs(tt.SpatialTrace()) > 1e-12 {
		t.Errorf("spatial trace %g after extraction, want 0", tt.SpatialTrace())
	}
	for i := 0; i <= 3; i++ {
		if tt[0][i] != 0 || tt[i][0] != 0 {
			t.Error("time components survived extraction")
		}
	}
}

func TestStrainAtObserverClampsOutside(t *testing.T) {
	f := testField(t)
	if err := f.SetAt(7, 7, 7, complex(1, 0)); err != nil {
		t.Fatal(err)
	}
	f.RefreshCaches()

	// Observer a megameter away clamps onto the far grid corner.
	p := New(DefaultConfig())
	s, err := p.StrainAtObserver(f)
	if err != nil {
		t.Fatalf("StrainAtObserver: %v", err)
	}
	if math.IsNaN(s.Amplitude) {
		t.Error("strain amplitude is NaN")
	}

	// An observer inside the grid reads the same point directly.
	cfg := DefaultConfig()
	cfg.ObserverPosition = field.Vec3{X: 7, Y: 7, Z: 7}
	stress, err := New(cfg).StressTensor(f, 7, 7, 7)
	if err != nil {
		t.Fatal(err)
	}
	direct := New(cfg).ComputeStrain(stress)
	atObs, err := New(cfg).StrainAtObserver(f)
	if err != nil {
		t.Fatal(err)
	}
	if direct != atObs {
		t.Errorf("observer strain %+v, direct %+v", atObs, direct)
	}
}

func TestCausalFlow(t *testing.T) {
	f := testField(t)
	p := New(DefaultConfig())

	// Vanishing field: pure time flow.
	flow, err := p.CausalFlowAt(f, 4, 4, 4)
	if err != nil {
		t.Fatalf("CausalFlowAt: %v", err)
	}
	if flow.B0 != 1 || flow.Magnitude != 0 {
		t.Errorf("zero-field flow = %+v", flow)
	}

	for k := 0; k < 8; k++ {
		for j := 0; j < 8; j++ {
			for i := 0; i < 8; i++ {
				if err := f.SetAt(i, j, k, complex(1+0.3*float64(i), 0)); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	flow, err = p.CausalFlowAt(f, 4, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if flow.B1 <= 0 {
		t.Errorf("expected flow along x, got %+v", flow)
	}
	want := math.Sqrt(flow.B1*flow.B1 + flow.B2*flow.B2 + flow.B3*flow.B3)
	if math.Abs(flow.Magnitude-want) > 1e-12 {
		t.Errorf("magnitude %g, want %g", flow.Magnitude, want)
	}
}

func TestProjectBundle(t *testing.T) {
	f := testField(t)
	if err := f.SetAt(3, 3, 3, complex(0.5, 0.5)); err != nil {
		t.Fatal(err)
	}
	f.RefreshCaches()

	p := New(DefaultConfig())
	proj, err := p.Project(f, 3, 3, 3)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if math.Abs(proj.PhiMode-math.Sqrt(0.5)) > 1e-12 {
		t.Errorf("phi mode %g, want %g", proj.PhiMode, math.Sqrt(0.5))
	}
	if proj.Strain != p.ComputeStrain(proj.Stress) {
		t.Error("bundled strain disagrees with direct computation")
	}
	if _, err := p.Project(f, -1, 0, 0); !errors.Is(err, field.ErrIndexRange) {
		t.Errorf("expected ErrIndexRange, got %v", err)
	}
}

func TestTransformGauge(t *testing.T) {
	p := New(DefaultConfig())
	s := Strain{HPlus: 1, HCross: 1}

	same := p.TransformGauge(s, GaugeTransverseTraceless)
	if same != s {
		t.Error("same-gauge transform must be identity")
	}

	moved := p.TransformGauge(s, GaugeLorenz)
	if math.Abs(moved.Amplitude-math.Sqrt2) > 1e-12 {
		t.Errorf("amplitude %g, want sqrt(2)", moved.Amplitude)
	}
	if math.Abs(moved.Phase-math.Pi/4) > 1e-12 {
		t.Errorf("phase %g, want π/4", moved.Phase)
	}
}

func TestNewNormalizesDetectorNormal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DetectorNormal = field.Vec3{X: 0, Y: 0, Z: -5}

	p := New(cfg)
	n := p.Config().DetectorNormal
	if math.Abs(n.Norm()-1) > 1e-12 {
		t.Errorf("detector normal norm %g, want 1", n.Norm())
	}
	if n.Z >= 0 {
		t.Errorf("normalization flipped the normal: %+v", n)
	}

	cfg.DetectorNormal = field.Vec3{}
	if got := New(cfg).Config().DetectorNormal; got != (field.Vec3{}) {
		t.Errorf("zero normal should stay zero, got %+v", got)
	}
}
