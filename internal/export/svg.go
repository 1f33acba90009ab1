package export

import (
	"fmt"
	"math/cmplx"
	"os"
	"strings"

	"github.com/san-kum/gwecho/internal/field"
)

// SliceSVG renders a z-slice of |δΦ| as an SVG heatmap, one rect per grid
// point, with opacity scaled to the slice maximum.
func SliceSVG(f *field.SymmetryField, k int, scale float64) (string, error) {
	cfg := f.Config()
	if k < 0 || k >= cfg.NZ {
		return "", fmt.Errorf("slice %d out of range [0, %d): %w", k, cfg.NZ, field.ErrIndexRange)
	}

	phi := f.Phi()
	base := cfg.NX * cfg.NY * k

	peak := 0.0
	for idx := base; idx < base+cfg.NX*cfg.NY; idx++ {
		if a := cmplx.Abs(phi[idx]); a > peak {
			peak = a
		}
	}

	width := float64(cfg.NX) * scale
	height := float64(cfg.NY) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ccff">
`, width, height, width, height))

	if peak > 0 {
		for j := 0; j < cfg.NY; j++ {
			for i := 0; i < cfg.NX; i++ {
				a := cmplx.Abs(phi[base+i+cfg.NX*j]) / peak
				if a < 0.01 {
					continue
				}
				sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" opacity="%.3f"/>
`, float64(i)*scale, float64(cfg.NY-1-j)*scale, scale, scale, a))
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String(), nil
}

// WaveformSVG draws a sampled time series as a single SVG path.
func WaveformSVG(times, values []float64, width, height int, strokeColor string) string {
	if len(times) < 2 || len(times) != len(values) {
		return ""
	}

	minT, maxT := times[0], times[len(times)-1]
	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	rangeT := maxT - minT
	rangeV := maxV - minV
	if rangeT == 0 {
		rangeT = 1
	}
	if rangeV == 0 {
		rangeV = 1
	}
	minV -= rangeV * 0.1
	maxV += rangeV * 0.1
	rangeV = maxV - minV

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range times {
		x := (times[i] - minT) / rangeT * float64(width)
		y := float64(height) - (values[i]-minV)/rangeV*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteFile saves rendered SVG markup to disk.
func WriteFile(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}
