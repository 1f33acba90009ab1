package optim

import (
	"context"
	"testing"

	"github.com/san-kum/gwecho/internal/field"
	"github.com/san-kum/gwecho/internal/fractional"
	"github.com/san-kum/gwecho/internal/metrics"
	"github.com/san-kum/gwecho/internal/projection"
	"github.com/san-kum/gwecho/internal/sim"
	"github.com/san-kum/gwecho/internal/sources"
)

func buildTestEngine(t *testing.T, amplitude float64) (*sim.Engine, error) {
	t.Helper()

	f, err := field.New(field.Config{
		NX: 6, NY: 6, NZ: 6,
		DX: 1, DY: 1, DZ: 1,
		Dt: 0.1, AlphaMin: 0.5, AlphaMax: 2.0,
		Lambda: 0.1, Kappa: 1.0,
	})
	if err != nil {
		return nil, err
	}
	solver, err := fractional.NewSolver(fractional.Config{
		TMax: 10, Rank: 6, Dt: 0.1, AlphaMin: 0.5, AlphaMax: 2.0,
	}, f.TotalPoints())
	if err != nil {
		return nil, err
	}

	mcfg := sources.DefaultMergerConfig()
	mcfg.SourceAmplitude = amplitude
	merger, err := sources.NewBinaryMerger(mcfg)
	if err != nil {
		return nil, err
	}
	echoes, err := sources.NewEchoGenerator(sources.DefaultEchoConfig())
	if err != nil {
		return nil, err
	}

	engine, err := sim.New(f, solver, merger, echoes, projection.New(projection.DefaultConfig()))
	if err != nil {
		return nil, err
	}
	engine.AddMetric(metrics.NewMeanEnergy())
	return engine, nil
}

func TestMaximizePicksStrongestSource(t *testing.T) {
	gs := NewGridSearch([]string{"amplitude"}, [][]float64{{0.5, 1.0, 2.0}}, 3)

	params, best, err := gs.Maximize(context.Background(), func(p map[string]float64) (*sim.Engine, error) {
		return buildTestEngine(t, p["amplitude"])
	}, "mean_field_energy")
	if err != nil {
		t.Fatalf("Maximize: %v", err)
	}
	if params["amplitude"] != 2.0 {
		t.Errorf("amplitude = %v, want 2.0", params["amplitude"])
	}
	if best <= 0 {
		t.Errorf("best metric = %v, want positive", best)
	}
}

func TestMinimizePicksWeakestSource(t *testing.T) {
	gs := NewGridSearch([]string{"amplitude"}, [][]float64{{0.5, 1.0, 2.0}}, 3)

	params, _, err := gs.Minimize(context.Background(), func(p map[string]float64) (*sim.Engine, error) {
		return buildTestEngine(t, p["amplitude"])
	}, "mean_field_energy")
	if err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if params["amplitude"] != 0.5 {
		t.Errorf("amplitude = %v, want 0.5", params["amplitude"])
	}
}

func TestSearchSkipsFailedBuilds(t *testing.T) {
	gs := NewGridSearch([]string{"amplitude"}, [][]float64{{-1.0, 1.0}}, 2)

	params, _, err := gs.Maximize(context.Background(), func(p map[string]float64) (*sim.Engine, error) {
		return buildTestEngine(t, p["amplitude"])
	}, "mean_field_energy")
	if err != nil {
		t.Fatalf("Maximize: %v", err)
	}
	// negative amplitude fails MergerConfig validation, so the survivor wins
	if params["amplitude"] != 1.0 {
		t.Errorf("amplitude = %v, want 1.0", params["amplitude"])
	}
}

func TestTwoParameterGrid(t *testing.T) {
	gs := NewGridSearch([]string{"amplitude", "unused"}, [][]float64{{0.5, 1.0}, {0, 1}}, 2)

	calls := 0
	params, _, err := gs.Maximize(context.Background(), func(p map[string]float64) (*sim.Engine, error) {
		calls++
		return buildTestEngine(t, p["amplitude"])
	}, "mean_field_energy")
	if err != nil {
		t.Fatalf("Maximize: %v", err)
	}
	if calls != 4 {
		t.Errorf("evaluated %d combinations, want 4", calls)
	}
	if params["amplitude"] != 1.0 {
		t.Errorf("amplitude = %v, want 1.0", params["amplitude"])
	}
}
