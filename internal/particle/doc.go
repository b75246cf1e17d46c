// Package particle defines the particle catalog and the data model shared by
// the simulation kernel.
//
//   - [Type]: closed enumeration of particle species
//   - [Constants]: immutable per-type physical constants and render hints
//   - [Particle]: mutable simulation entity with a bounded, faded trail
//   - [GravityWell]: operator-placed attractor or repeller
//
// Particles are created with [New], which draws the identifier from the
// caller's random source so that a seeded run is fully reproducible:
//
//	rng := rand.New(rand.NewSource(42))
//	p := particle.New(rng, particle.Electron, 100, 200, 0, 0)
package particle
