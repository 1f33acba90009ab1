// Package automation runs scripted simulation campaigns: YAML scenarios,
// parameter sweeps, and Monte Carlo stability studies.
package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gwecho/internal/sim"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Params are applied on top of
// the preset by the engine builder.
type ScenarioStep struct {
	Label  string             `yaml:"label"`
	Preset string             `yaml:"preset"`
	Steps  int                `yaml:"steps"`
	Params map[string]float64 `yaml:"params"`
}

// StepBuilder turns one scenario step into a ready engine.
type StepBuilder func(step ScenarioStep) (*sim.Engine, error)

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// RunScenario executes all steps in order, stopping at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, build StepBuilder) ([]*sim.Result, error) {
	results := make([]*sim.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		engine, err := build(step)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Label, err)
		}

		result, err := engine.Run(ctx, step.Steps)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, step.Label, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// ParameterSweep varies one named parameter over a linear range.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumValues int
	Steps     int
}

// SweepBuilder builds an engine with the named parameter set to value.
type SweepBuilder func(name string, value float64) (*sim.Engine, error)

// SweepResult holds the outcome for one parameter value.
type SweepResult struct {
	ParamValue     float64
	Metrics        map[string]float64
	MergerDetected bool
	FinalEnergy    float64
}

// RunSweep runs the sweep sequentially. Individual diverged runs are
// reported with their partial state rather than aborting the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, build SweepBuilder) ([]SweepResult, error) {
	if sweep.NumValues < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 values, got %d", sweep.NumValues)
	}

	results := make([]SweepResult, 0, sweep.NumValues)
	span := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumValues-1)

	for i := 0; i < sweep.NumValues; i++ {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		value := sweep.ParamMin + float64(i)*span
		engine, err := build(sweep.ParamName, value)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, value, err)
		}

		result, err := engine.Run(ctx, sweep.Steps)
		if err != nil {
			results = append(results, SweepResult{ParamValue: value})
			continue
		}

		results = append(results, SweepResult{
			ParamValue:     value,
			Metrics:        result.Metrics,
			MergerDetected: result.MergerDetected,
			FinalEnergy:    result.FinalStats.TotalEnergy,
		})
	}

	return results, nil
}

// MonteCarloConfig randomizes runs around a base configuration.
type MonteCarloConfig struct {
	Trials int
	Seed   int64
	Steps  int

	StabilityThreshold float64 // max amplitude above which a trial counts as unstable
}

// TrialBuilder builds an engine for one randomized trial.
type TrialBuilder func(rng *rand.Rand) (*sim.Engine, error)

// MonteCarloResult summarizes one trial.
type MonteCarloResult struct {
	Trial          int
	Stable         bool
	MergerDetected bool
	MaxAmplitude   float64
	FinalEnergy    float64
}

// RunMonteCarlo runs randomized trials sequentially with a deterministic
// seed. A trial that diverges counts as unstable.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, build TrialBuilder) ([]MonteCarloResult, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.Trials)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	results := make([]MonteCarloResult, 0, cfg.Trials)

	for trial := 0; trial < cfg.Trials; trial++ {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		engine, err := build(rng)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		result, err := engine.Run(ctx, cfg.Steps)
		if err != nil {
			results = append(results, MonteCarloResult{Trial: trial, Stable: false})
			continue
		}

		results = append(results, MonteCarloResult{
			Trial:          trial,
			Stable:         result.FinalStats.MaxAmplitude <= cfg.StabilityThreshold,
			MergerDetected: result.MergerDetected,
			MaxAmplitude:   result.FinalStats.MaxAmplitude,
			FinalEnergy:    result.FinalStats.TotalEnergy,
		})
	}

	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return stableCount, unstableCount
}
