package metrics

import (
	"github.com/san-kum/gwecho/internal/sim"
)

// Stability measures the fraction of steps whose peak field amplitude
// stayed below a threshold. 1.0 means the run never exceeded it.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{name: "stability", threshold: threshold}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Observe(snap sim.Snapshot) {
	s.samples++
	if snap.Stats.MaxAmplitude > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// EchoActivity counts the steps during which at least one echo was firing.
type EchoActivity struct {
	name  string
	steps int
}

func NewEchoActivity() *EchoActivity {
	return &EchoActivity{name: "echo_active_steps"}
}

func (e *EchoActivity) Name() string { return e.name }

func (e *EchoActivity) Observe(s sim.Snapshot) {
	if s.ActiveEchoes > 0 {
		e.steps++
	}
}

func (e *EchoActivity) Value() float64 { return float64(e.steps) }
func (e *EchoActivity) Reset()         { e.steps = 0 }
