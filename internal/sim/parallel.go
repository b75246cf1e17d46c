package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/quantasim/internal/engine"
)

// Builder makes a fresh engine for one ensemble member.
type Builder func(seed int64) (*engine.Engine, error)

// Ensemble runs the same setup over consecutive seeds in parallel.
type Ensemble struct {
	build      Builder
	newMetrics func() []Metric
	numRuns    int
	seedStart  int64
}

// NewEnsemble prepares numRuns runs seeded from seedStart upwards. Metrics
// are stateful, so each run gets its own set from newMetrics, which may be
// nil.
func NewEnsemble(build Builder, newMetrics func() []Metric, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, newMetrics: newMetrics, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			eng, err := e.build(cfgCopy.Seed)
			if err != nil {
				errs[idx] = fmt.Errorf("seed %d: %w", cfgCopy.Seed, err)
				return
			}

			s := New()
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, eng, cfgCopy)
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

// MeanMetrics averages each metric across results.
func MeanMetrics(results []*Result) map[string]float64 {
	out := make(map[string]float64)
	if len(results) == 0 {
		return out
	}
	for _, r := range results {
		for k, v := range r.Metrics {
			out[k] += v
		}
	}
	for k := range out {
		out[k] /= float64(len(results))
	}
	return out
}
