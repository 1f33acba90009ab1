package sim

import (
	"context"
	"sync"
)

// EngineFactory builds a fresh engine for one ensemble member. The run
// index lets a factory vary a parameter per member.
type EngineFactory func(run int) (*Engine, error)

// Ensemble runs independent engines concurrently, one goroutine per
// member. Engines share nothing, so members never contend.
type Ensemble struct {
	factory EngineFactory
	runs    int
}

func NewEnsemble(factory EngineFactory, runs int) *Ensemble {
	return &Ensemble{factory: factory, runs: runs}
}

func (e *Ensemble) Run(ctx context.Context, steps int) ([]*Result, error) {
	results := make([]*Result, e.runs)
	errs := make([]error, e.runs)

	var wg sync.WaitGroup
	for i := 0; i < e.runs; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			eng, err := e.factory(idx)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = eng.Run(ctx, steps)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
