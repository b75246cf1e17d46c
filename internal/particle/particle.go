package particle

import "math"

// TrailPoint is one sample of a particle's recent path.
type TrailPoint struct {
	X, Y    float64
	Opacity float64
}

// Particle is a simulated entity. Charge is copied from the catalog at
// creation but may differ afterwards for reaction products.
type Particle struct {
	ID       string
	Type     Type
	X, Y     float64
	VX, VY   float64
	Mass     float64
	Charge   float64
	Energy   float64
	Age      float64
	Lifespan float64
	Size     float64
	Color    string
	Trail    []TrailPoint // most recent first
}

// Clone returns a deep copy; the trail slice is not shared.
func (p Particle) Clone() Particle {
	c := p
	if p.Trail != nil {
		c.Trail = make([]TrailPoint, len(p.Trail))
		copy(c.Trail, p.Trail)
	}
	return c
}

func (p *Particle) Speed() float64 {
	return math.Sqrt(p.VX*p.VX + p.VY*p.VY)
}

// KineticEnergy computes ½·m·v² from the current velocity.
func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.Mass * (p.VX*p.VX + p.VY*p.VY)
}

// Finite reports whether the position is a real number.
func (p *Particle) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Expired reports whether the particle has reached its lifespan.
func (p *Particle) Expired() bool {
	return p.Age >= p.Lifespan
}

// PushTrail records the current position at the head of the trail, evicts
// samples beyond the type's trail length and re-fades opacity linearly.
func (p *Particle) PushTrail() {
	limit := ConstantsFor(p.Type).TrailLength
	if limit <= 0 {
		p.Trail = p.Trail[:0]
		return
	}
	if len(p.Trail) < limit {
		p.Trail = append(p.Trail, TrailPoint{})
	}
	copy(p.Trail[1:], p.Trail[:len(p.Trail)-1])
	p.Trail[0] = TrailPoint{X: p.X, Y: p.Y}
	for i := range p.Trail {
		p.Trail[i].Opacity = 1.0 - float64(i)/float64(limit)
	}
}

// GravityWell is a point attractor (positive strength) or repeller
// (negative strength) acting within Radius.
type GravityWell struct {
	ID       string
	X, Y     float64
	Strength float64
	Radius   float64
	Active   bool
}
