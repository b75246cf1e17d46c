package metrics

import "github.com/san-kum/quantasim/internal/engine"

// Collisions is the average collision rate over the run, in collisions per
// simulated second.
type Collisions struct {
	name  string
	total int
	last  float64
}

func NewCollisions() *Collisions {
	return &Collisions{name: "collision_rate"}
}

func (c *Collisions) Name() string {
	return c.name
}

func (c *Collisions) Observe(s engine.Stats, t float64) {
	c.total = s.TotalCollisions
	c.last = t
}

func (c *Collisions) Value() float64 {
	if c.last <= 0 {
		return 0
	}
	return float64(c.total) / c.last
}

func (c *Collisions) Reset() {
	c.total = 0
	c.last = 0
}
