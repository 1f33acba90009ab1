// Package sim couples the field, the fractional memory solver, and the
// source generators into a stepped simulation with pluggable metrics and
// observers.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/gwecho/internal/field"
	"github.com/san-kum/gwecho/internal/fractional"
	"github.com/san-kum/gwecho/internal/projection"
	"github.com/san-kum/gwecho/internal/sources"
)

// Engine advances the coupled system one timestep at a time. Each step
// evolves the binary orbit, assembles merger and echo sources, feeds the
// field's second time derivative into the memory solver, and applies the
// resulting fractional derivative to the field update.
type Engine struct {
	field  *field.SymmetryField
	solver *fractional.Solver
	merger *sources.BinaryMerger
	echoes *sources.EchoGenerator
	ops    *projection.Operators

	metrics   []Metric
	observers []Observer

	dt          float64
	step        int
	recordEvery int

	srcBuf      []complex128
	secondDeriv []complex128
	phiPrev     []complex128
	phiPrev2    []complex128
}

// New wires the components together. The solver must be sized to the
// field's grid.
func New(f *field.SymmetryField, solver *fractional.Solver, merger *sources.BinaryMerger,
	echoes *sources.EchoGenerator, ops *projection.Operators) (*Engine, error) {
	if f == nil || solver == nil || merger == nil || echoes == nil || ops == nil {
		return nil, ErrMissingComponent
	}
	total := f.TotalPoints()
	if solver.NumPoints() != total {
		return nil, fmt.Errorf("solver sized for %d points, field has %d: %w",
			solver.NumPoints(), total, ErrGridMismatch)
	}

	return &Engine{
		field:       f,
		solver:      solver,
		merger:      merger,
		echoes:      echoes,
		ops:         ops,
		dt:          f.Config().Dt,
		recordEvery: 1,
		srcBuf:      make([]complex128, total),
		secondDeriv: make([]complex128, total),
		phiPrev:     make([]complex128, total),
		phiPrev2:    make([]complex128, total),
	}, nil
}

func (e *Engine) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// SetRecordEvery thins the snapshots kept in a Result to every nth step.
func (e *Engine) SetRecordEvery(n int) {
	if n > 0 {
		e.recordEvery = n
	}
}

func (e *Engine) Field() *field.SymmetryField    { return e.field }
func (e *Engine) Solver() *fractional.Solver     { return e.solver }
func (e *Engine) Merger() *sources.BinaryMerger  { return e.merger }
func (e *Engine) Echoes() *sources.EchoGenerator { return e.echoes }
func (e *Engine) Dt() float64                    { return e.dt }
func (e *Engine) StepCount() int                 { return e.step }
func (e *Engine) Time() float64                  { return e.field.Time() }

// Step advances the whole system by one timestep and returns the resulting
// snapshot.
func (e *Engine) Step() (Snapshot, error) {
	t := e.field.Time()

	e.merger.EvolveOrbit(e.dt)
	if err := e.merger.SourceTerms(e.field, e.srcBuf); err != nil {
		return Snapshot{}, err
	}

	e.echoes.DetectMerger(e.field.TotalEnergy(), t)
	if e.echoes.MergerDetected() && e.echoes.EchoActive(t) {
		e.addEchoSources(t)
	}

	phi := e.field.Phi()
	if e.step >= 2 {
		invDt2 := complex(1.0/(e.dt*e.dt), 0)
		for i := range e.secondDeriv {
			e.secondDeriv[i] = (phi[i] - 2*e.phiPrev[i] + e.phiPrev2[i]) * invDt2
		}
	} else {
		for i := range e.secondDeriv {
			e.secondDeriv[i] = 0
		}
	}

	alphas := e.field.AlphaValues()
	if err := e.solver.UpdateHistory(phi, e.secondDeriv, alphas, e.dt); err != nil {
		return Snapshot{}, err
	}
	derivs, err := e.solver.ComputeDerivatives(alphas)
	if err != nil {
		return Snapshot{}, err
	}

	copy(e.phiPrev2, e.phiPrev)
	copy(e.phiPrev, phi)

	if err := e.field.EvolveStep(derivs, e.srcBuf); err != nil {
		return Snapshot{}, err
	}
	e.step++

	snap, err := e.snapshot()
	if err != nil {
		return snap, err
	}
	for _, m := range e.metrics {
		m.Observe(snap)
	}
	for _, o := range e.observers {
		o.OnStep(snap)
	}
	return snap, nil
}

// addEchoSources accumulates the echo train onto the source buffer. Echoes
// radiate from the merger center.
func (e *Engine) addEchoSources(t float64) {
	center := e.merger.Config().Center
	cfg := e.field.Config()
	for k := 0; k < cfg.NZ; k++ {
		for j := 0; j < cfg.NY; j++ {
			for i := 0; i < cfg.NX; i++ {
				idx := e.field.FlatIndex(i, j, k)
				e.srcBuf[idx] += e.echoes.SourceAt(t, e.field.Position(i, j, k), center)
			}
		}
	}
}

func (e *Engine) snapshot() (Snapshot, error) {
	stats := e.field.Statistics()
	strain, err := e.ops.StrainAtObserver(e.field)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Step:             e.step,
		Time:             e.field.Time(),
		Stats:            stats,
		Strain:           strain,
		Separation:       e.merger.Separation(),
		OrbitalFrequency: e.merger.OrbitalFrequency(),
		OrbitalPhase:     e.merger.OrbitalPhase(),
		EnergyRadiated:   e.merger.TotalEnergyRadiated(),
		Merged:           e.merger.HasMerged(),
		MergerDetected:   e.echoes.MergerDetected(),
		ActiveEchoes:     len(e.echoes.ActiveEchoes(e.field.Time(), 3.0)),
	}

	if math.IsNaN(stats.MaxAmplitude) || math.IsInf(stats.MaxAmplitude, 0) {
		return snap, fmt.Errorf("step %d at t=%g: %w", e.step, snap.Time, ErrDiverged)
	}
	return snap, nil
}

// Run executes a fixed number of steps, honoring context cancellation.
// Snapshots are recorded per the record interval; metrics are reset at the
// start and summarized at the end.
func (e *Engine) Run(ctx context.Context, steps int) (*Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps %d must be positive: %w", steps, ErrInvalidRun)
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	result := &Result{
		Snapshots: make([]Snapshot, 0, steps/e.recordEvery+1),
		Metrics:   make(map[string]float64),
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		snap, err := e.Step()
		if err != nil {
			return result, err
		}
		result.StepsTaken++
		if snap.Step%e.recordEvery == 0 {
			result.Snapshots = append(result.Snapshots, snap)
		}
	}

	result.MergerDetected = e.echoes.MergerDetected()
	result.MergerTime = e.echoes.MergerTime()
	result.FinalStats = e.field.Statistics()
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

// RunWithCallback steps until the callback returns false or the step count
// is exhausted.
func (e *Engine) RunWithCallback(ctx context.Context, steps int, callback func(Snapshot) bool) error {
	if steps <= 0 {
		return fmt.Errorf("steps %d must be positive: %w", steps, ErrInvalidRun)
	}
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		snap, err := e.Step()
		if err != nil {
			return err
		}
		if !callback(snap) {
			return nil
		}
	}
	return nil
}
