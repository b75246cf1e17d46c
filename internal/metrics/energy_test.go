package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/quantasim/internal/engine"
)

func TestEnergyMean(t *testing.T) {
	m := NewEnergy()

	m.Observe(engine.Stats{TotalEnergy: 2}, 0.1)
	m.Observe(engine.Stats{TotalEnergy: 4}, 0.2)

	if got := m.Value(); got != 3 {
		t.Errorf("expected mean energy 3, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	tests := []struct {
		name     string
		energies []float64
		want     float64
	}{
		{"constant", []float64{5, 5, 5}, 0},
		{"peak drift kept", []float64{10, 15, 11}, 0.5},
		{"loss", []float64{10, 2}, 0.8},
		{"zero start", []float64{0, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewEnergyDrift()
			for i, e := range tt.energies {
				m.Observe(engine.Stats{TotalEnergy: e}, float64(i))
			}
			if got := m.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected drift %f, got %f", tt.want, got)
			}
		})
	}
}

func TestEntropyMean(t *testing.T) {
	m := NewEntropy()
	m.Observe(engine.Stats{Entropy: 1}, 0)
	m.Observe(engine.Stats{Entropy: 2}, 0)
	if m.Value() != 1.5 {
		t.Errorf("expected 1.5, got %f", m.Value())
	}
}

func TestCollisions(t *testing.T) {
	m := NewCollisions()
	if m.Value() != 0 {
		t.Error("expected zero before any step")
	}

	m.Observe(engine.Stats{TotalCollisions: 3}, 0.5)
	m.Observe(engine.Stats{TotalCollisions: 8}, 2)

	if got := m.Value(); got != 4 {
		t.Errorf("expected 4 collisions/s, got %f", got)
	}
}

func TestStability(t *testing.T) {
	m := NewStability(100)
	if m.Value() != 1 {
		t.Error("empty run should be stable")
	}

	for _, v := range []float64{10, 200, 50, 300} {
		m.Observe(engine.Stats{MaxVelocity: v}, 0)
	}
	if got := m.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestSurvival(t *testing.T) {
	m := NewSurvival()
	m.Observe(engine.Stats{ParticleCount: 40}, 0)
	m.Observe(engine.Stats{ParticleCount: 30}, 1)

	if got := m.Value(); got != 0.75 {
		t.Errorf("expected 0.75, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestStandardNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Standard() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
