package particle

import (
	"math"

	"github.com/google/uuid"
)

// Constants are the immutable properties of a particle type.
type Constants struct {
	Mass        float64 // kg, may be 0
	Charge      float64 // elementary charge units
	Color       string
	Size        float64
	MaxSpeed    float64
	Lifespan    float64 // seconds, +Inf when unbounded
	TrailLength int
	Glow        float64
}

var catalog = map[Type]Constants{
	Photon: {
		Mass: 0, Charge: 0, Color: "#10FF10", Size: 2,
		MaxSpeed: 299792458, Lifespan: math.Inf(1), TrailLength: 8, Glow: 0.8,
	},
	Electron: {
		Mass: 9.109e-31, Charge: -1, Color: "#8B5CF6", Size: 3,
		MaxSpeed: 2e8, Lifespan: math.Inf(1), TrailLength: 6, Glow: 0.6,
	},
	Quark: {
		Mass: 2.3e-30, Charge: 2.0 / 3.0, Color: "#00FFFF", Size: 2.5,
		MaxSpeed: 1.5e8, Lifespan: 1e-24, TrailLength: 4, Glow: 0.7,
	},
	Boson: {
		Mass: 1.25e-25, Charge: 0, Color: "#FF6B35", Size: 4,
		MaxSpeed: 1e8, Lifespan: 1e-22, TrailLength: 5, Glow: 0.9,
	},
	DarkMatter: {
		Mass: 5e-27, Charge: 0, Color: "#888888", Size: 1.5,
		MaxSpeed: 5e7, Lifespan: math.Inf(1), TrailLength: 3, Glow: 0.3,
	},
	Neutrino: {
		Mass: 2e-36, Charge: 0, Color: "#FFE66D", Size: 1,
		MaxSpeed: 2.9e8, Lifespan: math.Inf(1), TrailLength: 10, Glow: 0.4,
	},
}

// ConstantsFor returns the catalog entry for t. Callers must pass a valid
// type; an unknown type yields the zero Constants.
func ConstantsFor(t Type) Constants {
	return catalog[t]
}

// Rand is the random source the kernel draws from. *math/rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Read(p []byte) (int, error)
}

// NewID draws a UUID from rng. A seeded rng produces a reproducible sequence.
func NewID(rng Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		// math/rand readers never fail
		return uuid.NewString()
	}
	return id.String()
}

// New stamps a fresh particle of type t at (x, y) moving with (vx, vy).
func New(rng Rand, t Type, x, y, vx, vy float64) Particle {
	c := ConstantsFor(t)
	return Particle{
		ID:       NewID(rng),
		Type:     t,
		X:        x,
		Y:        y,
		VX:       vx,
		VY:       vy,
		Mass:     c.Mass,
		Charge:   c.Charge,
		Energy:   0.5 * c.Mass * (vx*vx + vy*vy),
		Lifespan: c.Lifespan,
		Size:     c.Size,
		Color:    c.Color,
	}
}
