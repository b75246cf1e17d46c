// Package sim drives an engine headlessly at a fixed time step and records
// its statistics.
package sim

import (
	"context"
	"math"

	"github.com/san-kum/quantasim/internal/engine"
)

type Simulator struct {
	metrics   []Metric
	observers []Observer
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances e by cfg.Dt until cfg.Duration of simulated time has passed.
// On cancellation the partial result is returned with the context error.
func (s *Simulator) Run(ctx context.Context, e *engine.Engine, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	every := cfg.SampleEvery
	if every == 0 {
		every = 1
	}

	result := &Result{
		Seed:    cfg.Seed,
		Samples: make([]Sample, 0, steps/every+2),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	result.Samples = append(result.Samples, sample(e, t))

	var err error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
		default:
		}
		if err != nil {
			break
		}

		e.Advance(cfg.Dt)
		t += cfg.Dt
		result.StepsTaken++

		stats := e.Stats()
		for _, m := range s.metrics {
			m.Observe(stats, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(stats, t)
		}

		if (i+1)%every == 0 || i == steps-1 {
			result.Samples = append(result.Samples, Sample{Time: t, Stats: stats, Counts: e.CountByType()})
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Reactions = make(map[string]int)
	for r, n := range e.ReactionCounts() {
		result.Reactions[r.String()] = n
	}
	result.Final = e.Particles()
	result.Wells = e.GravityWells()

	return result, err
}

// RunWithCallback steps e until the duration elapses or callback returns
// false. It records nothing.
func (s *Simulator) RunWithCallback(ctx context.Context, e *engine.Engine, cfg Config, callback func(engine.Stats, float64) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	t := 0.0
	for t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(e.Stats(), t) {
			return nil
		}

		e.Advance(cfg.Dt)
		t += cfg.Dt
	}

	return nil
}

func sample(e *engine.Engine, t float64) Sample {
	return Sample{Time: t, Stats: e.Stats(), Counts: e.CountByType()}
}
