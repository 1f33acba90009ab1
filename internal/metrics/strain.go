package metrics

import (
	"math"

	"github.com/san-kum/gwecho/internal/sim"
)

// PeakStrain records the largest strain amplitude seen at the observer.
type PeakStrain struct {
	name string
	peak float64
}

func NewPeakStrain() *PeakStrain {
	return &PeakStrain{name: "peak_strain"}
}

func (p *PeakStrain) Name() string { return p.name }

func (p *PeakStrain) Observe(s sim.Snapshot) {
	p.peak = math.Max(p.peak, s.Strain.Amplitude)
}

func (p *PeakStrain) Value() float64 { return p.peak }
func (p *PeakStrain) Reset()         { p.peak = 0 }

// MeanStrain averages the observer strain amplitude over the run.
type MeanStrain struct {
	name    string
	sum     float64
	samples int
}

func NewMeanStrain() *MeanStrain {
	return &MeanStrain{name: "mean_strain"}
}

func (m *MeanStrain) Name() string { return m.name }

func (m *MeanStrain) Observe(s sim.Snapshot) {
	m.sum += s.Strain.Amplitude
	m.samples++
}

func (m *MeanStrain) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanStrain) Reset() {
	m.sum = 0
	m.samples = 0
}
