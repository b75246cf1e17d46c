package automation

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/san-kum/quantasim/internal/engine"
	"github.com/san-kum/quantasim/internal/experiment"
	"github.com/san-kum/quantasim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Batch is a scripted sequence of headless runs.
type Batch struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Steps       []BatchStep `yaml:"steps"`
}

// BatchStep is a single run in a batch.
type BatchStep struct {
	Scenario    string             `yaml:"scenario"`
	Duration    float64            `yaml:"duration"`
	Dt          float64            `yaml:"dt"`
	Seed        int64              `yaml:"seed"`
	SampleEvery int                `yaml:"sample_every"`
	Params      map[string]float64 `yaml:"params"`
	Metrics     []string           `yaml:"metrics"`
	SaveAs      string             `yaml:"save_as"`
}

func (s BatchStep) config() experiment.Config {
	return experiment.Config{
		Scenario:    s.Scenario,
		Params:      s.Params,
		Metrics:     s.Metrics,
		Dt:          s.Dt,
		Duration:    s.Duration,
		Seed:        s.Seed,
		SampleEvery: s.SampleEvery,
	}
}

// LoadBatch loads a batch from a YAML file
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, err
	}
	for i := range batch.Steps {
		if batch.Steps[i].Dt == 0 {
			batch.Steps[i].Dt = 1.0 / 60.0
		}
	}

	return &batch, nil
}

func quiet(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return logger
}

// RunBatch executes all steps in order and stops at the first failure,
// returning the results gathered so far.
func RunBatch(ctx context.Context, batch *Batch, registry *experiment.Registry, logger *log.Logger) ([]*sim.Result, error) {
	logger = quiet(logger)
	results := make([]*sim.Result, 0, len(batch.Steps))

	for i, step := range batch.Steps {
		logger.Printf("batch %s: step %d/%d: %s", batch.Name, i+1, len(batch.Steps), step.Scenario)

		exp := experiment.New(step.config())
		if err := exp.Setup(registry, logger); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, result)
	}

	return results, nil
}

// ParameterSweep runs one scenario across evenly spaced values of a
// tunable.
type ParameterSweep struct {
	Scenario  string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Duration  float64
	Dt        float64
	Seed      int64
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	FinalCount int
	MaxEnergy  float64
	MinEnergy  float64
	Collisions int
	Metrics    map[string]float64
}

// RunSweep executes a parameter sweep. Every point uses the same seed so
// only the parameter differs between runs.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *log.Logger) ([]SweepResult, error) {
	logger = quiet(logger)
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		exp := experiment.New(experiment.Config{
			Scenario: sweep.Scenario,
			Params:   map[string]float64{sweep.ParamName: paramVal},
			Dt:       sweep.Dt,
			Duration: sweep.Duration,
			Seed:     sweep.Seed,
		})
		if err := exp.Setup(registry, logger); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		energy := result.Series(func(s engine.Stats) float64 { return s.TotalEnergy })
		minE, maxE := math.Inf(1), math.Inf(-1)
		for _, e := range energy {
			minE = math.Min(minE, e)
			maxE = math.Max(maxE, e)
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			FinalCount: len(result.Final),
			MaxEnergy:  maxE,
			MinEnergy:  minE,
			Collisions: result.Last().Stats.TotalCollisions,
			Metrics:    result.Metrics,
		})

		logger.Printf("sweep %d/%d: %s=%.4f", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Scenario string
	// Perturbation is the relative jitter applied to temperature, gravity
	// and EM strength per trial.
	Perturbation float64
	NumTrials    int
	Duration     float64
	Dt           float64
	Seed         int64
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID    int
	Seed       int64
	Params     map[string]float64
	FinalCount int
	Metrics    map[string]float64
	Stable     bool // no particle crossed the relativistic clamp
}

// RunMonteCarlo executes trials in parallel, each with its own seed and
// perturbed tunables.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger *log.Logger) ([]MonteCarloResult, error) {
	logger = quiet(logger)
	base := experiment.Config{Scenario: cfg.Scenario, Dt: cfg.Dt, Duration: cfg.Duration}

	params := make([]map[string]float64, cfg.NumTrials)
	build := func(seed int64) (*engine.Engine, error) {
		eng, err := experiment.Build(registry, base, seed, nil)
		if err != nil {
			return nil, err
		}
		p := perturb(eng, seed, cfg.Perturbation)
		params[seed-cfg.Seed] = p

		next := eng.Config()
		for name, v := range p {
			if err := experiment.SetParam(&next, name, v); err != nil {
				return nil, err
			}
		}
		return eng, eng.UpdateConfig(next.Full())
	}
	newMetrics := func() []sim.Metric {
		ms, _ := registry.Metrics([]string{"stability", "survival", "energy_drift"})
		return ms
	}

	runs, err := sim.NewEnsemble(build, newMetrics, cfg.NumTrials, cfg.Seed).Run(ctx, sim.Config{Dt: cfg.Dt, Duration: cfg.Duration})
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for trial, r := range runs {
		results[trial] = MonteCarloResult{
			TrialID:    trial,
			Seed:       r.Seed,
			Params:     params[trial],
			FinalCount: len(r.Final),
			Metrics:    r.Metrics,
			Stable:     r.Metrics["stability"] == 1,
		}
	}
	logger.Printf("monte carlo: %d trials complete", len(results))

	return results, nil
}

// perturb draws jittered tunables from a source seeded independently of the
// engine's own.
func perturb(eng *engine.Engine, seed int64, amount float64) map[string]float64 {
	rng := rand.New(rand.NewSource(seed ^ 0x5eed))
	c := eng.Config()
	jitter := func(v float64) float64 {
		return v * (1 + (rng.Float64()-0.5)*2*amount)
	}
	return map[string]float64{
		"temperature":      math.Max(0, jitter(c.Temperature)),
		"gravity_strength": jitter(c.GravityStrength),
		"em_force":         jitter(c.EMForce),
	}
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
