package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/engine"
	"github.com/san-kum/quantasim/internal/particle"
)

func quietConfig(photons int) config.SimulationConfig {
	return config.SimulationConfig{
		CollisionDetection: true,
		ParticleCount:      map[particle.Type]int{particle.Photon: photons},
	}
}

func newEngine(t *testing.T, seed int64) *engine.Engine {
	t.Helper()
	e, err := engine.New(quietConfig(20), engine.WithSeed(seed))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

func TestSimulatorRun(t *testing.T) {
	sim := New()

	cfg := Config{Dt: 0.1, Duration: 1.0}
	result, err := sim.Run(context.Background(), newEngine(t, 1), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Samples) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Samples))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}

	last := result.Last()
	if math.Abs(last.Time-1.0) > 1e-9 {
		t.Errorf("expected final time 1.0, got %f", last.Time)
	}
	if last.Stats.ParticleCount != 20 || len(result.Final) != 20 {
		t.Errorf("photons should all survive, got %d", last.Stats.ParticleCount)
	}
	if last.Counts[particle.Photon] != 20 {
		t.Errorf("expected 20 photons counted, got %d", last.Counts[particle.Photon])
	}
}

func TestSimulatorSampleEvery(t *testing.T) {
	sim := New()

	result, err := sim.Run(context.Background(), newEngine(t, 1), Config{Dt: 0.01, Duration: 1.0, SampleEvery: 25})
	if err != nil {
		t.Fatal(err)
	}

	// initial sample plus steps 25, 50, 75 and 100
	if len(result.Samples) != 5 {
		t.Errorf("expected 5 samples, got %d", len(result.Samples))
	}
	if got := result.Times(); math.Abs(got[1]-0.25) > 1e-9 {
		t.Errorf("expected second sample at 0.25, got %f", got[1])
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"negative sampling", Config{Dt: 0.1, Duration: 1.0, SampleEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), newEngine(t, 1), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().Run(ctx, newEngine(t, 1), Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Error("expected an empty partial result")
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(s engine.Stats, time float64) {
	t.count++
	t.sum += float64(s.ParticleCount)
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New()

	metric := &testMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), newEngine(t, 1), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if v, ok := result.Metrics["test"]; !ok || v != 20 {
		t.Errorf("expected metric 20, got %v (present %v)", v, ok)
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	calls := 0
	err := New().RunWithCallback(context.Background(), newEngine(t, 1), Config{Dt: 0.1, Duration: 1.0}, func(s engine.Stats, time float64) bool {
		calls++
		return calls < 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("expected 3 callbacks, got %d", calls)
	}
}

func TestEnsemble(t *testing.T) {
	build := func(seed int64) (*engine.Engine, error) {
		return engine.New(quietConfig(10), engine.WithSeed(seed))
	}
	metrics := func() []Metric { return []Metric{&testMetric{}} }

	results, err := NewEnsemble(build, metrics, 4, 100).Run(context.Background(), Config{Dt: 0.05, Duration: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Seed != 100+int64(i) {
			t.Errorf("run %d: expected seed %d, got %d", i, 100+i, r.Seed)
		}
	}
	if mean := MeanMetrics(results)["test"]; mean != 10 {
		t.Errorf("expected mean 10, got %f", mean)
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	build := func(seed int64) (*engine.Engine, error) { return nil, boom }

	_, err := NewEnsemble(build, nil, 2, 0).Run(context.Background(), Config{Dt: 0.1, Duration: 1})
	if !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}
