// Package experiment assembles an engine and a headless simulator from a
// declarative run description.
package experiment

import (
	"context"
	"fmt"
	"log"

	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/engine"
	"github.com/san-kum/quantasim/internal/sim"
)

type Config struct {
	// Scenario is a preset name or scenario file. Empty runs Simulation as
	// given.
	Scenario   string
	Simulation config.SimulationConfig
	// Params override tunables after the scenario is applied.
	Params      map[string]float64
	Metrics     []string
	Dt          float64
	Duration    float64
	Seed        int64
	SampleEvery int
	Width       float64
	Height      float64
}

type Experiment struct {
	cfg       Config
	engine    *engine.Engine
	simulator *sim.Simulator
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the engine, loads the scenario and applies parameter
// overrides.
func (e *Experiment) Setup(reg *Registry, logger *log.Logger) error {
	eng, err := Build(reg, e.cfg, e.cfg.Seed, logger)
	if err != nil {
		return err
	}

	ms, err := reg.Metrics(e.cfg.Metrics)
	if err != nil {
		return err
	}

	e.engine = eng
	e.simulator = sim.New()
	for _, m := range ms {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	return e.simulator.Run(ctx, e.engine, e.SimConfig())
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:          e.cfg.Dt,
		Duration:    e.cfg.Duration,
		Seed:        e.cfg.Seed,
		SampleEvery: e.cfg.SampleEvery,
	}
}

// Engine returns the engine built by Setup.
func (e *Experiment) Engine() *engine.Engine { return e.engine }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// Build makes an engine for cfg seeded with seed.
func Build(reg *Registry, cfg Config, seed int64, logger *log.Logger) (*engine.Engine, error) {
	opts := []engine.Option{engine.WithSeed(seed), engine.WithLogger(logger)}
	if cfg.Width > 0 && cfg.Height > 0 {
		opts = append(opts, engine.WithField(cfg.Width, cfg.Height))
	}

	base := cfg.Simulation
	if base.ParticleCount == nil && cfg.Scenario != "" {
		base = config.SimulationConfig{}
	}
	eng, err := engine.New(base, opts...)
	if err != nil {
		return nil, err
	}

	if cfg.Scenario != "" {
		s, err := reg.GetScenario(cfg.Scenario)
		if err != nil {
			return nil, err
		}
		if err := eng.LoadScenario(s); err != nil {
			return nil, err
		}
	}

	if len(cfg.Params) > 0 {
		next := eng.Config()
		for name, v := range cfg.Params {
			if err := SetParam(&next, name, v); err != nil {
				return nil, err
			}
		}
		if err := eng.UpdateConfig(next.Full()); err != nil {
			return nil, err
		}
	}
	return eng, nil
}
