package engine

import (
	"github.com/san-kum/quantasim/internal/collision"
)

// collisionWindow is the trailing simulated span the collision rate covers.
const collisionWindow = 1.0

// Step advances the simulation to timestampMs, a monotonic millisecond
// clock supplied by the driver. It does nothing when the timestamp has not
// moved forward. While paused the timestamp is recorded but nothing moves,
// so resuming does not replay the paused interval.
func (e *Engine) Step(timestampMs float64) {
	delta := timestampMs - e.lastUpdate
	if !(delta > 0) {
		return
	}
	e.lastUpdate = timestampMs
	if e.state == Paused {
		return
	}
	e.Advance(delta * 0.001)
}

// Advance runs one step of dt seconds regardless of the driver clock.
// Non-positive dt is ignored.
func (e *Engine) Advance(dt float64) {
	if !(dt > 0) {
		return
	}

	e.calc.Prepare(e.particles, e.cfg)
	for i := range e.particles {
		e.calc.Update(e.particles, i, e.wells, e.cfg, dt)
		e.particles[i].PushTrail()
	}

	collisions := 0
	if e.cfg.CollisionDetection {
		batch := e.resolver.Resolve(e.particles, e.rng)
		e.apply(batch)
		collisions = batch.Collisions
	}

	e.wrap()
	culled := e.cull()

	e.steps++
	e.simTime += dt
	e.recordCollisions(collisions)

	if culled > 0 {
		e.log.Printf("step %d: culled %d, %d remain", e.steps, culled, len(e.particles))
	}
	if len(e.observers) > 0 {
		s := e.Stats()
		for _, o := range e.observers {
			o.OnStep(s, dt)
		}
	}
}

func (e *Engine) apply(b collision.Batch) {
	e.collisions += b.Collisions
	for r, n := range b.Reactions {
		e.reactions[r] += n
	}
	if len(b.Removed) > 0 {
		gone := make(map[string]struct{}, len(b.Removed))
		for _, id := range b.Removed {
			gone[id] = struct{}{}
		}
		kept := e.particles[:0]
		for _, p := range e.particles {
			if _, ok := gone[p.ID]; ok {
				continue
			}
			kept = append(kept, p)
		}
		clearTail(e.particles, len(kept))
		e.particles = kept
	}
	e.particles = append(e.particles, b.Added...)
}

// wrap moves particles that left the field to the opposite edge.
// Non-finite particles are left alone for cull.
func (e *Engine) wrap() {
	for i := range e.particles {
		p := &e.particles[i]
		if !p.Finite() {
			continue
		}
		if p.X < 0 {
			p.X = e.width
		} else if p.X > e.width {
			p.X = 0
		}
		if p.Y < 0 {
			p.Y = e.height
		} else if p.Y > e.height {
			p.Y = 0
		}
	}
}

// cull drops expired and non-finite particles.
func (e *Engine) cull() int {
	kept := e.particles[:0]
	for _, p := range e.particles {
		if p.Expired() || !p.Finite() {
			continue
		}
		kept = append(kept, p)
	}
	n := len(e.particles) - len(kept)
	clearTail(e.particles, len(kept))
	e.particles = kept
	return n
}

func (e *Engine) recordCollisions(n int) {
	e.window = append(e.window, collisionSample{at: e.simTime, n: n})
	drop := 0
	for drop < len(e.window) && e.window[drop].at <= e.simTime-collisionWindow {
		drop++
	}
	if drop > 0 {
		e.window = append(e.window[:0], e.window[drop:]...)
	}
}

// collisionRate is collisions per simulated second over the trailing window.
func (e *Engine) collisionRate() float64 {
	if e.simTime <= 0 {
		return 0
	}
	span := e.simTime
	if span > collisionWindow {
		span = collisionWindow
	}
	total := 0
	for _, s := range e.window {
		total += s.n
	}
	return float64(total) / span
}
