package sim

import (
	"fmt"

	"github.com/san-kum/quantasim/internal/engine"
	"github.com/san-kum/quantasim/internal/particle"
)

// Metric reduces the per-step stats of a run to one number.
type Metric interface {
	Name() string
	Observe(s engine.Stats, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s engine.Stats, t float64)
}

type Config struct {
	Dt       float64
	Duration float64
	Seed     int64
	// SampleEvery keeps every n-th step in the result series; 0 keeps all.
	SampleEvery int
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("sample interval must be non-negative, got %d", c.SampleEvery)
	}
	return nil
}

// Sample is one row of a run's time series.
type Sample struct {
	Time   float64
	Stats  engine.Stats
	Counts map[particle.Type]int
}

type Result struct {
	Seed       int64
	Samples    []Sample
	Metrics    map[string]float64
	Reactions  map[string]int
	Final      []particle.Particle
	Wells      []particle.GravityWell
	StepsTaken int
}

// Times returns the sample times in order.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Time
	}
	return out
}

// Series extracts one stat per sample.
func (r *Result) Series(f func(engine.Stats) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = f(s.Stats)
	}
	return out
}

// Last returns the final sample, or the zero Sample for an empty result.
func (r *Result) Last() Sample {
	if len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}
