// Package optim tunes simulation parameters by exhaustive grid search over
// a recorded run metric.
package optim

import (
	"context"
	"math"

	"github.com/san-kum/gwecho/internal/sim"
)

// BuildFunc constructs an engine for one parameter combination.
type BuildFunc func(params map[string]float64) (*sim.Engine, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	steps      int
}

// NewGridSearch enumerates all combinations of the given parameter ranges.
// Each candidate engine runs for the given number of steps.
func NewGridSearch(params []string, ranges [][]float64, steps int) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, steps: steps}
}

// Minimize returns the parameter combination with the smallest value of the
// named metric. Combinations whose runs fail are skipped.
func (g *GridSearch) Minimize(ctx context.Context, build BuildFunc, metricName string) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, 1, &best, &bestParams)
	return bestParams, best, nil
}

// Maximize returns the combination with the largest metric value.
func (g *GridSearch) Maximize(ctx context.Context, build BuildFunc, metricName string) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, -1, &best, &bestParams)
	return bestParams, -best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build BuildFunc,
	metricName string,
	sign float64,
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}

	if depth == len(g.paramNames) {
		engine, err := build(current)
		if err != nil {
			return
		}

		result, err := engine.Run(ctx, g.steps)
		if err != nil {
			return
		}

		val := sign * result.Metrics[metricName]
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, build, metricName, sign, best, bestParams)
	}
}
