// Package forces accumulates the per-particle forces of the sandbox and
// integrates one particle forward by one time step.
//
// Particles are updated in place, one after another, so a particle later in
// the slice sees the already-advanced positions of the ones before it.
package forces

import (
	"math"

	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/particle"
)

const (
	G         = 6.67430e-11 // gravitational constant
	K         = 8.9875e9    // Coulomb constant
	C         = 299792458.0 // speed of light
	Boltzmann = 1.380649e-23

	// DistanceFloor is the separation below which pair forces vanish.
	DistanceFloor = 1e-10
	// WellMinDistance is the separation below which a well exerts nothing.
	WellMinDistance = 1.0
	ThermalDamping  = 0.1
	// ClampFraction of C above which the speed clamp engages.
	ClampFraction = 0.1
)

// Gravity returns the attraction of q on p, directed from p towards q.
func Gravity(p, q *particle.Particle) (fx, fy float64) {
	dx := q.X - p.X
	dy := q.Y - p.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d < DistanceFloor {
		return 0, 0
	}
	f := G * p.Mass * q.Mass / (d * d)
	return f * dx / d, f * dy / d
}

// Electromagnetic returns the Coulomb force of q on p. Like charges push p
// away from q; either charge being zero yields nothing.
func Electromagnetic(p, q *particle.Particle) (fx, fy float64) {
	if p.Charge == 0 || q.Charge == 0 {
		return 0, 0
	}
	dx := q.X - p.X
	dy := q.Y - p.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d < DistanceFloor {
		return 0, 0
	}
	f := K * p.Charge * q.Charge / (d * d)
	return -f * dx / d, -f * dy / d
}

// Well returns the pull of w on p. Inactive wells, and particles closer than
// WellMinDistance or beyond the well radius, feel nothing.
func Well(p *particle.Particle, w *particle.GravityWell) (fx, fy float64) {
	if !w.Active {
		return 0, 0
	}
	dx := w.X - p.X
	dy := w.Y - p.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d < WellMinDistance || d > w.Radius {
		return 0, 0
	}
	f := w.Strength * p.Mass / (d * d)
	return f * dx / d, f * dy / d
}

// ThermalScale is sqrt(2·k_B·T/m), or 0 for massless particles.
func ThermalScale(mass, temperature float64) float64 {
	if mass <= 0 || temperature <= 0 {
		return 0
	}
	return math.Sqrt(2 * Boltzmann * temperature / mass)
}

// Calculator integrates particles under the configured forces. It is not
// safe for concurrent use.
type Calculator struct {
	rng  particle.Rand
	tree *tree
}

func New(rng particle.Rand) *Calculator {
	return &Calculator{rng: rng, tree: newTree()}
}

// Prepare must be called once per step before the Update calls of that
// step. It rebuilds the gravity tree when the Barnes-Hut approximation is
// selected.
func (c *Calculator) Prepare(ps []particle.Particle, cfg config.SimulationConfig) {
	if cfg.Approximation != config.ApproxBarnesHut || cfg.GravityStrength == 0 {
		c.tree.disable()
		return
	}
	c.tree.rebuild(ps)
}

// Update advances ps[i] by dt seconds in place.
func (c *Calculator) Update(ps []particle.Particle, i int, wells []particle.GravityWell, cfg config.SimulationConfig, dt float64) {
	p := &ps[i]
	var fx, fy float64

	if c.tree.active() {
		gx, gy := c.tree.forceOn(i, theta(cfg))
		fx += gx * cfg.GravityStrength
		fy += gy * cfg.GravityStrength
	}

	for j := range ps {
		if j == i {
			continue
		}
		q := &ps[j]
		if !c.tree.active() {
			gx, gy := Gravity(p, q)
			fx += gx * cfg.GravityStrength
			fy += gy * cfg.GravityStrength
		}
		ex, ey := Electromagnetic(p, q)
		fx += ex * cfg.EMForce
		fy += ey * cfg.EMForce
	}

	for k := range wells {
		wx, wy := Well(p, &wells[k])
		fx += wx
		fy += wy
	}

	// massless particles drift
	if p.Mass > 0 {
		vt := ThermalScale(p.Mass, cfg.Temperature)
		fx += (c.rng.Float64() - 0.5) * vt * ThermalDamping
		fy += (c.rng.Float64() - 0.5) * vt * ThermalDamping

		p.VX += fx / p.Mass * dt
		p.VY += fy / p.Mass * dt
	}

	Clamp(p)

	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Energy = p.KineticEnergy()
	p.Age += dt
}

// Clamp divides the velocity by the Lorentz factor of the current speed when
// it exceeds ClampFraction of C. At or above C the result is NaN.
func Clamp(p *particle.Particle) {
	speed := p.Speed()
	if speed <= C*ClampFraction {
		return
	}
	gamma := 1 / math.Sqrt(1-(speed*speed)/(C*C))
	p.VX /= gamma
	p.VY /= gamma
}

func theta(cfg config.SimulationConfig) float64 {
	if cfg.Theta <= 0 {
		return config.DefaultTheta
	}
	return cfg.Theta
}
