package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/quantasim/internal/experiment"
)

const batchYAML = `name: smoke
steps:
  - scenario: galaxy
    duration: 0.05
    dt: 0.025
    seed: 1
    params:
      temperature: 0
    metrics: [survival]
  - scenario: nowhere
    duration: 0.05
`

func TestLoadAndRunBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	if err := os.WriteFile(path, []byte(batchYAML), 0644); err != nil {
		t.Fatal(err)
	}

	batch, err := LoadBatch(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Steps) != 2 || batch.Steps[1].Dt != 1.0/60.0 {
		t.Fatalf("unexpected batch %+v", batch)
	}

	results, err := RunBatch(context.Background(), batch, experiment.NewRegistry(), nil)
	if err == nil {
		t.Fatal("expected the unknown scenario to fail")
	}
	if len(results) != 1 {
		t.Fatalf("expected the first step to complete, got %d results", len(results))
	}
	if results[0].StepsTaken != 2 {
		t.Errorf("expected 2 steps, got %d", results[0].StepsTaken)
	}
	if _, ok := results[0].Metrics["survival"]; !ok {
		t.Error("requested metric missing")
	}
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Scenario:  "galaxy",
		ParamName: "temperature",
		ParamMin:  0,
		ParamMax:  1000,
		NumSteps:  3,
		Duration:  0.02,
		Dt:        0.01,
		Seed:      5,
	}

	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 points, got %d", len(results))
	}
	for i, want := range []float64{0, 500, 1000} {
		if results[i].ParamValue != want {
			t.Errorf("point %d: expected %g, got %g", i, want, results[i].ParamValue)
		}
		if results[i].MinEnergy > results[i].MaxEnergy {
			t.Errorf("point %d: energy range inverted", i)
		}
	}

	sweep.ParamName = "mass"
	if _, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), nil); err == nil {
		t.Error("expected unknown parameter to fail")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	cfg := &MonteCarloConfig{
		Scenario:     "galaxy",
		Perturbation: 0.1,
		NumTrials:    3,
		Duration:     0.02,
		Dt:           0.01,
		Seed:         10,
	}

	results, err := RunMonteCarlo(context.Background(), cfg, experiment.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(results))
	}
	for i, r := range results {
		if r.Seed != 10+int64(i) {
			t.Errorf("trial %d: expected seed %d, got %d", i, 10+i, r.Seed)
		}
		temp := r.Params["temperature"]
		if temp < 3000*0.9 || temp > 3000*1.1 {
			t.Errorf("trial %d: temperature %g outside jitter band", i, temp)
		}
	}

	stable, unstable := MonteCarloStats(results)
	if stable+unstable != 3 {
		t.Errorf("expected 3 classified trials, got %d", stable+unstable)
	}
}
