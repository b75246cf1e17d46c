// Package collision finds touching particle pairs with a uniform grid and
// resolves each pair through a fixed, priority-ordered reaction table.
package collision

import (
	"math"

	"github.com/san-kum/quantasim/internal/particle"
)

const (
	// MassDefect is the fraction of the summed mass a fusion product keeps.
	MassDefect = 0.95
	// DecayAgeFraction of lifespan past which a collision decays.
	DecayAgeFraction = 0.8
	MinDecayPhotons  = 2
	MaxDecayPhotons  = 4
	MaxDecaySpeed    = 1e6
)

type Reaction int

const (
	Elastic Reaction = iota
	Annihilation
	Fusion
	Decay
)

func (r Reaction) String() string {
	switch r {
	case Annihilation:
		return "annihilation"
	case Fusion:
		return "fusion"
	case Decay:
		return "decay"
	default:
		return "elastic"
	}
}

type rule struct {
	reaction Reaction
	match    func(a, b *particle.Particle) bool
}

// rules is evaluated top to bottom; the first match wins.
var rules = []rule{
	{Annihilation, annihilates},
	{Fusion, fuses},
	{Decay, decays},
	{Elastic, func(a, b *particle.Particle) bool { return true }},
}

func annihilates(a, b *particle.Particle) bool {
	return a.Charge != 0 && b.Charge != 0 && a.Charge == -b.Charge
}

func fuses(a, b *particle.Particle) bool {
	switch {
	case a.Type == particle.Quark && b.Type == particle.Quark:
		return true
	case a.Type == particle.Electron && b.Type == particle.Boson:
		return true
	case a.Type == particle.Boson && b.Type == particle.Electron:
		return true
	}
	return false
}

func decays(a, b *particle.Particle) bool {
	return a.Age > a.Lifespan*DecayAgeFraction || b.Age > b.Lifespan*DecayAgeFraction
}

// Classify returns the reaction two colliding particles undergo.
func Classify(a, b *particle.Particle) Reaction {
	for _, r := range rules {
		if r.match(a, b) {
			return r.reaction
		}
	}
	return Elastic
}

// Collides reports whether the centres are closer than the mean size.
func Collides(a, b *particle.Particle) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx+dy*dy) < (a.Size+b.Size)/2
}

// Batch is the outcome of one collision pass. Removed and Added are applied
// by the caller once the pass is over.
type Batch struct {
	Collisions int
	Removed    []string
	Added      []particle.Particle
	Reactions  map[Reaction]int
}

type pairKey struct {
	lo, hi string
}

func keyOf(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Resolver holds the buffers reused between passes. It is not safe for
// concurrent use.
type Resolver struct {
	grid       *grid
	seen       map[pairKey]struct{}
	consumed   []bool
	candidates []int
}

func NewResolver() *Resolver {
	return &Resolver{
		grid: newGrid(CellSize),
		seen: make(map[pairKey]struct{}),
	}
}

// Resolve runs one pass over ps. Elastic outcomes update velocities and
// positions in place; every other outcome is reported in the batch. A
// particle consumed by a reaction takes no further part in the pass.
func (r *Resolver) Resolve(ps []particle.Particle, rng particle.Rand) Batch {
	batch := Batch{Reactions: make(map[Reaction]int)}

	r.grid.rebuild(ps)
	clear(r.seen)
	if cap(r.consumed) < len(ps) {
		r.consumed = make([]bool, len(ps))
	}
	r.consumed = r.consumed[:len(ps)]
	clear(r.consumed)

	for i := range ps {
		if r.consumed[i] || !ps[i].Finite() {
			continue
		}
		r.candidates = r.grid.neighbors(ps[i].X, ps[i].Y, r.candidates[:0])

		for _, j := range r.candidates {
			if r.consumed[i] {
				break
			}
			if j == i || r.consumed[j] {
				continue
			}
			a, b := &ps[i], &ps[j]
			key := keyOf(a.ID, b.ID)
			if _, ok := r.seen[key]; ok {
				continue
			}
			if !Collides(a, b) {
				continue
			}
			r.seen[key] = struct{}{}
			batch.Collisions++

			reaction := Classify(a, b)
			batch.Reactions[reaction]++

			switch reaction {
			case Annihilation:
			case Fusion:
				batch.Added = append(batch.Added, FusionProduct(a, b, rng))
			case Decay:
				batch.Added = append(batch.Added, DecayProducts(a, b, rng)...)
			default:
				Bounce(a, b)
				continue
			}
			r.consumed[i], r.consumed[j] = true, true
			batch.Removed = append(batch.Removed, a.ID, b.ID)
		}
	}
	return batch
}

// FusionProduct merges a and b into one boson at the midpoint of the pair
// carrying their combined momentum.
func FusionProduct(a, b *particle.Particle, rng particle.Rand) particle.Particle {
	total := a.Mass + b.Mass
	x, y := (a.X+b.X)/2, (a.Y+b.Y)/2
	vx, vy := (a.VX+b.VX)/2, (a.VY+b.VY)/2
	if total != 0 {
		vx = (a.Mass*a.VX + b.Mass*b.VX) / total
		vy = (a.Mass*a.VY + b.Mass*b.VY) / total
	}

	boson := particle.ConstantsFor(particle.Boson)
	return particle.Particle{
		ID:       particle.NewID(rng),
		Type:     particle.Boson,
		X:        x,
		Y:        y,
		VX:       vx,
		VY:       vy,
		Mass:     total * MassDefect,
		Charge:   a.Charge + b.Charge,
		Energy:   a.Energy + b.Energy,
		Lifespan: boson.Lifespan,
		Size:     boson.Size,
		Color:    boson.Color,
	}
}

// DecayProducts emits between MinDecayPhotons and MaxDecayPhotons photons
// from a's position, evenly spaced in direction, sharing the pair's energy.
func DecayProducts(a, b *particle.Particle, rng particle.Rand) []particle.Particle {
	n := rng.Intn(MaxDecayPhotons-MinDecayPhotons+1) + MinDecayPhotons
	photon := particle.ConstantsFor(particle.Photon)
	share := (a.Energy + b.Energy) / float64(n)

	out := make([]particle.Particle, n)
	for k := range out {
		angle := 2 * math.Pi * float64(k) / float64(n)
		speed := rng.Float64() * MaxDecaySpeed
		out[k] = particle.Particle{
			ID:       particle.NewID(rng),
			Type:     particle.Photon,
			X:        a.X,
			Y:        a.Y,
			VX:       math.Cos(angle) * speed,
			VY:       math.Sin(angle) * speed,
			Mass:     photon.Mass,
			Energy:   share,
			Lifespan: photon.Lifespan,
			Size:     photon.Size,
			Color:    photon.Color,
		}
	}
	return out
}

// Bounce applies the one-dimensional elastic formula on each axis, then
// pushes the pair apart by half the overlap each.
func Bounce(a, b *particle.Particle) {
	m1, m2 := a.Mass, b.Mass
	if m1+m2 == 0 {
		a.VX, b.VX = b.VX, a.VX
		a.VY, b.VY = b.VY, a.VY
	} else {
		v1x, v1y, v2x, v2y := a.VX, a.VY, b.VX, b.VY
		a.VX = ((m1-m2)*v1x + 2*m2*v2x) / (m1 + m2)
		a.VY = ((m1-m2)*v1y + 2*m2*v2y) / (m1 + m2)
		b.VX = ((m2-m1)*v2x + 2*m1*v1x) / (m1 + m2)
		b.VY = ((m2-m1)*v2y + 2*m1*v1y) / (m1 + m2)
	}

	dx := a.X - b.X
	dy := a.Y - b.Y
	d := math.Sqrt(dx*dx + dy*dy)
	overlap := (a.Size+b.Size)/2 - d
	if overlap <= 0 {
		return
	}
	if d == 0 {
		a.X += overlap / 2
		b.X -= overlap / 2
		return
	}
	sx := dx / d * overlap / 2
	sy := dy / d * overlap / 2
	a.X += sx
	a.Y += sy
	b.X -= sx
	b.Y -= sy
}
