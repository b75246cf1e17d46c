package experiment

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/forces"
	"github.com/san-kum/quantasim/internal/metrics"
	"github.com/san-kum/quantasim/internal/sim"
)

// Registry resolves scenario and metric names used by batch files and the
// command line.
type Registry struct {
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() sim.Metric),
	}

	r.metrics["energy"] = func() sim.Metric { return metrics.NewEnergy() }
	r.metrics["energy_drift"] = func() sim.Metric { return metrics.NewEnergyDrift() }
	r.metrics["entropy"] = func() sim.Metric { return metrics.NewEntropy() }
	r.metrics["collision_rate"] = func() sim.Metric { return metrics.NewCollisions() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(forces.C * forces.ClampFraction) }
	r.metrics["survival"] = func() sim.Metric { return metrics.NewSurvival() }

	return r
}

// GetScenario resolves a preset name, or a path to a scenario YAML file.
func (r *Registry) GetScenario(name string) (*config.Scenario, error) {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return config.LoadScenarioFile(name)
	}
	return config.GetScenario(name)
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

// Metrics builds the named metrics, or every registered metric when names
// is empty.
func (r *Registry) Metrics(names []string) ([]sim.Metric, error) {
	if len(names) == 0 {
		names = r.MetricNames()
	}
	out := make([]sim.Metric, 0, len(names))
	for _, n := range names {
		m, err := r.GetMetric(n)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) MetricNames() []string {
	names := make([]string, 0, len(r.metrics))
	for n := range r.metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
