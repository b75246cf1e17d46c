package engine

import (
	"github.com/san-kum/quantasim/internal/forces"
)

// Stats is a point-in-time summary of the live population.
type Stats struct {
	ParticleCount   int     `json:"particleCount"`
	TotalEnergy     float64 `json:"totalEnergy"`
	KineticEnergy   float64 `json:"kineticEnergy"`
	PotentialEnergy float64 `json:"potentialEnergy"`
	Temperature     float64 `json:"temperature"`
	Entropy         float64 `json:"entropy"`
	TotalCollisions int     `json:"totalCollisions"`
	CollisionRate   float64 `json:"collisionsPerSec"`
	AvgVelocity     float64 `json:"avgVelocity"`
	MaxVelocity     float64 `json:"maxVelocity"`
	SystemAge       float64 `json:"systemAge"`
	SimulatedTime   float64 `json:"simulatedTime"`
	Steps           int     `json:"steps"`
}

// Stats summarizes the tracked particle energies. Only kinetic energy is
// tracked, so the potential share is always zero.
func (e *Engine) Stats() Stats {
	sum := forces.Summarize(e.particles)
	kinetic := sum.TotalEnergy
	return Stats{
		ParticleCount:   len(e.particles),
		TotalEnergy:     sum.TotalEnergy,
		KineticEnergy:   kinetic,
		PotentialEnergy: sum.TotalEnergy - kinetic,
		Temperature:     e.cfg.Temperature,
		Entropy:         sum.Entropy,
		TotalCollisions: e.collisions,
		CollisionRate:   e.collisionRate(),
		AvgVelocity:     sum.AverageSpeed,
		MaxVelocity:     sum.MaxSpeed,
		SystemAge:       e.now().Sub(e.startTime).Seconds(),
		SimulatedTime:   e.simTime,
		Steps:           e.steps,
	}
}
