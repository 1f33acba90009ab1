package sim

import (
	"errors"

	"github.com/san-kum/gwecho/internal/field"
	"github.com/san-kum/gwecho/internal/projection"
)

var (
	ErrMissingComponent = errors.New("missing engine component")
	ErrGridMismatch     = errors.New("solver and field grids disagree")
	ErrInvalidRun       = errors.New("invalid run parameters")
	ErrDiverged         = errors.New("field diverged")
)

// Snapshot captures the observables of one step.
type Snapshot struct {
	Step int
	Time float64

	Stats  field.Stats
	Strain projection.Strain

	Separation       float64
	OrbitalFrequency float64
	OrbitalPhase     float64
	EnergyRadiated   float64
	Merged           bool

	MergerDetected bool
	ActiveEchoes   int
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

// Observer receives every snapshot as the run progresses.
type Observer interface {
	OnStep(s Snapshot)
}

// Result summarizes a completed run.
type Result struct {
	Snapshots  []Snapshot
	Metrics    map[string]float64
	StepsTaken int

	MergerDetected bool
	MergerTime     float64
	FinalStats     field.Stats
}
