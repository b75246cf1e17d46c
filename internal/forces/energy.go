package forces

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/quantasim/internal/particle"
)

const entropyEpsilon = 1e-10

// Summary is the population bookkeeping the engine turns into stats.
type Summary struct {
	TotalEnergy  float64
	Entropy      float64
	AverageSpeed float64
	MaxSpeed     float64
}

// Summarize reduces the tracked per-particle energies and speeds. An empty
// population summarizes to zero.
func Summarize(ps []particle.Particle) Summary {
	if len(ps) == 0 {
		return Summary{}
	}
	energies := make([]float64, len(ps))
	speeds := make([]float64, len(ps))
	for i := range ps {
		energies[i] = ps[i].Energy
		speeds[i] = ps[i].Speed()
	}
	total := floats.Sum(energies)
	return Summary{
		TotalEnergy:  total,
		Entropy:      entropy(energies, total),
		AverageSpeed: floats.Sum(speeds) / float64(len(speeds)),
		MaxSpeed:     floats.Max(speeds),
	}
}

// Entropy is Σ -r·ln(r+ε) with r each energy relative to the mean. It is 0
// when the population is empty or carries no energy.
func Entropy(ps []particle.Particle) float64 {
	if len(ps) == 0 {
		return 0
	}
	energies := make([]float64, len(ps))
	for i := range ps {
		energies[i] = ps[i].Energy
	}
	return entropy(energies, floats.Sum(energies))
}

func entropy(energies []float64, total float64) float64 {
	mean := total / float64(len(energies))
	if mean == 0 || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return 0
	}
	s := 0.0
	for _, e := range energies {
		r := e / mean
		s -= r * math.Log(r+entropyEpsilon)
	}
	return s
}
