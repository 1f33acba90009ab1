package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/gwecho/internal/field"
)

func testField(t *testing.T) *field.SymmetryField {
	t.Helper()
	f, err := field.New(field.Config{
		NX: 4, NY: 4, NZ: 4,
		DX: 1, DY: 1, DZ: 1,
		Dt: 0.1, AlphaMin: 0.5, AlphaMax: 2.0,
		Lambda: 0.1, Kappa: 1.0,
	})
	if err != nil {
		t.Fatalf("field.New: %v", err)
	}
	return f
}

func TestSliceSVG(t *testing.T) {
	f := testField(t)
	if err := f.SetAt(1, 2, 2, 3+4i); err != nil {
		t.Fatal(err)
	}

	svg, err := SliceSVG(f, 2, 8)
	if err != nil {
		t.Fatalf("SliceSVG: %v", err)
	}
	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing XML header")
	}
	if !strings.Contains(svg, "<rect x=") {
		t.Error("no cells rendered for nonzero slice")
	}
	if !strings.Contains(svg, `opacity="1.000"`) {
		t.Error("peak cell should render at full opacity")
	}

	// empty slice renders background only
	empty, err := SliceSVG(f, 0, 8)
	if err != nil {
		t.Fatalf("SliceSVG empty: %v", err)
	}
	if strings.Contains(empty, "<rect x=") {
		t.Error("empty slice rendered cells")
	}
}

func TestSliceSVGRange(t *testing.T) {
	f := testField(t)
	if _, err := SliceSVG(f, 4, 8); !errors.Is(err, field.ErrIndexRange) {
		t.Errorf("err = %v, want ErrIndexRange", err)
	}
	if _, err := SliceSVG(f, -1, 8); !errors.Is(err, field.ErrIndexRange) {
		t.Errorf("err = %v, want ErrIndexRange", err)
	}
}

func TestWaveformSVG(t *testing.T) {
	times := []float64{0, 0.1, 0.2, 0.3}
	values := []float64{0, 1, -1, 0}

	svg := WaveformSVG(times, values, 400, 200, "#00ff88")
	if !strings.Contains(svg, `stroke="#00ff88"`) {
		t.Error("stroke color not applied")
	}
	if !strings.Contains(svg, "M0.0,") {
		t.Error("path should start at x=0")
	}
	if strings.Count(svg, " L") != len(times)-1 {
		t.Errorf("got %d segments, want %d", strings.Count(svg, " L"), len(times)-1)
	}
}

func TestWaveformSVGDegenerate(t *testing.T) {
	if svg := WaveformSVG([]float64{0}, []float64{1}, 100, 100, "#fff"); svg != "" {
		t.Error("single point should render nothing")
	}
	if svg := WaveformSVG([]float64{0, 1}, []float64{1}, 100, 100, "#fff"); svg != "" {
		t.Error("length mismatch should render nothing")
	}
	// constant series must not divide by zero
	svg := WaveformSVG([]float64{0, 1, 2}, []float64{5, 5, 5}, 100, 100, "#fff")
	if !strings.Contains(svg, "<path") {
		t.Error("constant series should still render a path")
	}
}
