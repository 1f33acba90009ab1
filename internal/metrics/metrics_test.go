package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/gwecho/internal/field"
	"github.com/san-kum/gwecho/internal/projection"
	"github.com/san-kum/gwecho/internal/sim"
)

func snapWithEnergy(e float64) sim.Snapshot {
	return sim.Snapshot{Stats: field.Stats{TotalEnergy: e}}
}

func TestMeanEnergy(t *testing.T) {
	m := NewMeanEnergy()
	if m.Value() != 0 {
		t.Error("expected zero before observations")
	}

	m.Observe(snapWithEnergy(2))
	m.Observe(snapWithEnergy(4))
	if math.Abs(m.Value()-3) > 1e-12 {
		t.Errorf("mean %g, want 3", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	d := NewEnergyDrift()
	d.Observe(snapWithEnergy(10))
	d.Observe(snapWithEnergy(11))
	d.Observe(snapWithEnergy(9))
	d.Observe(snapWithEnergy(10.5))

	if math.Abs(d.Value()-0.1) > 1e-12 {
		t.Errorf("max drift %g, want 0.1", d.Value())
	}

	d.Reset()
	d.Observe(snapWithEnergy(0))
	d.Observe(snapWithEnergy(100))
	if d.Value() != 0 {
		t.Error("drift undefined from zero initial energy, want 0")
	}
}

func TestPeakStrain(t *testing.T) {
	p := NewPeakStrain()
	for _, amp := range []float64{0.1, 0.5, 0.3} {
		p.Observe(sim.Snapshot{Strain: projection.Strain{Amplitude: amp}})
	}
	if p.Value() != 0.5 {
		t.Errorf("peak %g, want 0.5", p.Value())
	}
	p.Reset()
	if p.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestMeanStrain(t *testing.T) {
	m := NewMeanStrain()
	m.Observe(sim.Snapshot{Strain: projection.Strain{Amplitude: 1}})
	m.Observe(sim.Snapshot{Strain: projection.Strain{Amplitude: 3}})
	if math.Abs(m.Value()-2) > 1e-12 {
		t.Errorf("mean %g, want 2", m.Value())
	}
}

func TestStability(t *testing.T) {
	s := NewStability(1.0)
	if s.Value() != 1.0 {
		t.Error("expected 1.0 with no samples")
	}

	s.Observe(sim.Snapshot{Stats: field.Stats{MaxAmplitude: 0.5}})
	s.Observe(sim.Snapshot{Stats: field.Stats{MaxAmplitude: 2.0}})
	s.Observe(sim.Snapshot{Stats: field.Stats{MaxAmplitude: 0.9}})
	s.Observe(sim.Snapshot{Stats: field.Stats{MaxAmplitude: 3.0}})

	if math.Abs(s.Value()-0.5) > 1e-12 {
		t.Errorf("stability %g, want 0.5", s.Value())
	}
}

func TestEchoActivity(t *testing.T) {
	e := NewEchoActivity()
	e.Observe(sim.Snapshot{ActiveEchoes: 0})
	e.Observe(sim.Snapshot{ActiveEchoes: 2})
	e.Observe(sim.Snapshot{ActiveEchoes: 1})
	if e.Value() != 2 {
		t.Errorf("active steps %g, want 2", e.Value())
	}
	e.Reset()
	if e.Value() != 0 {
		t.Error("expected zero after reset")
	}
}
