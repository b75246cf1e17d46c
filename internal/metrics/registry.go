package metrics

import (
	"github.com/san-kum/quantasim/internal/forces"
	"github.com/san-kum/quantasim/internal/sim"
)

// Standard returns a fresh set of the metrics every headless run records.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewEntropy(),
		NewCollisions(),
		NewStability(forces.C * forces.ClampFraction),
		NewSurvival(),
	}
}
