// Package engine owns the particle population and gravity wells of the
// sandbox and drives the step pipeline over them.
//
// An Engine is single-threaded: every method must be called from the same
// goroutine, normally the host's render or tick loop. Snapshots returned by
// Particles, GravityWells and Stats are copies.
package engine

import (
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/quantasim/internal/collision"
	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/forces"
	"github.com/san-kum/quantasim/internal/particle"
)

const (
	DefaultWellStrength = 1000.0
	DefaultWellRadius   = 200.0

	// ScatterMaxSpeed bounds the speed of uniformly scattered particles.
	ScatterMaxSpeed = 1e5
	// BurstJitter is the side of the square a located burst spreads over.
	BurstJitter = 50.0
)

type State int

const (
	Running State = iota
	Paused
)

func (s State) String() string {
	if s == Paused {
		return "paused"
	}
	return "running"
}

// Observer is notified after every step that advanced the simulation.
type Observer interface {
	OnStep(s Stats, dt float64)
}

type Engine struct {
	cfg           config.SimulationConfig
	width, height float64

	particles []particle.Particle
	wells     []particle.GravityWell

	rng      particle.Rand
	calc     *forces.Calculator
	resolver *collision.Resolver
	now      func() time.Time
	log      *log.Logger

	state      State
	lastUpdate float64 // ms
	simTime    float64 // s
	steps      int
	startTime  time.Time

	collisions int
	window     []collisionSample
	reactions  map[collision.Reaction]int

	observers []Observer
}

type collisionSample struct {
	at float64
	n  int
}

// New builds an engine and populates it from cfg.
func New(cfg config.SimulationConfig, opts ...Option) (*Engine, error) {
	e := &Engine{
		width:     config.DefaultFieldWidth,
		height:    config.DefaultFieldHeight,
		now:       time.Now,
		log:       log.New(io.Discard, "", 0),
		resolver:  collision.NewResolver(),
		reactions: make(map[collision.Reaction]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.calc = forces.New(e.rng)

	if err := e.Initialize(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Initialize replaces the configuration and repopulates from it.
func (e *Engine) Initialize(cfg config.SimulationConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	e.cfg = cfg.Clone()
	e.Reset()
	return nil
}

// Reset drops every particle and well, zeroes the counters, restarts the
// system-age clock and repopulates from the configured counts.
func (e *Engine) Reset() {
	e.particles = e.particles[:0]
	e.wells = e.wells[:0]
	e.resetCounters()
	e.startTime = e.now()

	for _, t := range particle.Types {
		e.AddParticles(t, e.cfg.ParticleCount[t])
	}
	e.log.Printf("reset: %d particles (preset %q)", len(e.particles), e.cfg.Preset)
}

// Clear empties particles and wells without repopulating.
func (e *Engine) Clear() {
	e.particles = e.particles[:0]
	e.wells = e.wells[:0]
	e.resetCounters()
	e.log.Printf("clear")
}

func (e *Engine) resetCounters() {
	e.collisions = 0
	e.window = e.window[:0]
	e.simTime = 0
	e.steps = 0
	clear(e.reactions)
}

// UpdateConfig merges p into the live configuration. The change applies from
// the next step; particle counts only matter at the next Reset.
func (e *Engine) UpdateConfig(p config.Patch) error {
	next := e.cfg.Merge(p)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	e.cfg = next
	return nil
}

func (e *Engine) Config() config.SimulationConfig { return e.cfg.Clone() }

// LoadScenario applies the scenario configuration, resets, then runs the
// setup actions in order. An empty approximation keeps the current one.
func (e *Engine) LoadScenario(s *config.Scenario) error {
	if s == nil {
		return ErrNilScenario
	}
	patch := s.Config.Full()
	if s.Config.Approximation == "" {
		patch.Approximation = nil
		patch.Theta = nil
	}
	if err := e.UpdateConfig(patch); err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	e.Reset()

	for _, a := range s.Actions {
		switch a.Kind {
		case config.ActionGravityWell:
			e.AddGravityWell(a.X, a.Y, a.Strength)
		case config.ActionParticleBurst:
			e.AddParticlesAt(a.Type, a.Count, a.X, a.Y)
		}
	}
	e.log.Printf("scenario %s: %d particles, %d wells", s.Name, len(e.particles), len(e.wells))
	return nil
}

func (e *Engine) Pause()                 { e.state = Paused }
func (e *Engine) Resume()                { e.state = Running }
func (e *Engine) State() State           { return e.state }
func (e *Engine) Running() bool          { return e.state == Running }
func (e *Engine) Bounds() (w, h float64) { return e.width, e.height }

// AddGravityWell places an active well with the default radius.
func (e *Engine) AddGravityWell(x, y, strength float64) particle.GravityWell {
	w := particle.GravityWell{
		ID:       particle.NewID(e.rng),
		X:        x,
		Y:        y,
		Strength: strength,
		Radius:   DefaultWellRadius,
		Active:   true,
	}
	e.wells = append(e.wells, w)
	return w
}

// UpdateGravityWell moves a well. Unknown ids are ignored.
func (e *Engine) UpdateGravityWell(id string, x, y float64) bool {
	for i := range e.wells {
		if e.wells[i].ID == id {
			e.wells[i].X, e.wells[i].Y = x, y
			return true
		}
	}
	return false
}

// RemoveGravityWell deletes a well. Unknown ids are ignored.
func (e *Engine) RemoveGravityWell(id string) {
	for i := range e.wells {
		if e.wells[i].ID == id {
			e.wells = append(e.wells[:i], e.wells[i+1:]...)
			return
		}
	}
}

// AddParticles scatters n particles of type t uniformly over the field with
// a uniform direction and a speed up to ScatterMaxSpeed.
func (e *Engine) AddParticles(t particle.Type, n int) {
	if !t.Valid() {
		return
	}
	for i := 0; i < n; i++ {
		x := e.rng.Float64() * e.width
		y := e.rng.Float64() * e.height
		angle := e.rng.Float64() * 2 * math.Pi
		speed := e.rng.Float64() * ScatterMaxSpeed
		e.particles = append(e.particles, particle.New(e.rng, t, x, y, math.Cos(angle)*speed, math.Sin(angle)*speed))
	}
}

// AddParticlesAt drops n resting particles of type t within ±BurstJitter/2
// of (x, y).
func (e *Engine) AddParticlesAt(t particle.Type, n int, x, y float64) {
	if !t.Valid() {
		return
	}
	for i := 0; i < n; i++ {
		px := x + (e.rng.Float64()-0.5)*BurstJitter
		py := y + (e.rng.Float64()-0.5)*BurstJitter
		e.particles = append(e.particles, particle.New(e.rng, t, px, py, 0, 0))
	}
}

// InsertParticle adds p as given, stamping an id when it has none.
func (e *Engine) InsertParticle(p particle.Particle) string {
	p = p.Clone()
	if p.ID == "" {
		p.ID = particle.NewID(e.rng)
	}
	e.particles = append(e.particles, p)
	return p.ID
}

// RemoveParticlesInArea destroys every particle whose centre lies within
// radius of (x, y) and returns how many went.
func (e *Engine) RemoveParticlesInArea(x, y, radius float64) int {
	kept := e.particles[:0]
	for _, p := range e.particles {
		dx, dy := p.X-x, p.Y-y
		if math.Sqrt(dx*dx+dy*dy) <= radius {
			continue
		}
		kept = append(kept, p)
	}
	removed := len(e.particles) - len(kept)
	clearTail(e.particles, len(kept))
	e.particles = kept
	return removed
}

// Particles returns a deep copy of the population.
func (e *Engine) Particles() []particle.Particle {
	out := make([]particle.Particle, len(e.particles))
	for i := range e.particles {
		out[i] = e.particles[i].Clone()
	}
	return out
}

func (e *Engine) GravityWells() []particle.GravityWell {
	out := make([]particle.GravityWell, len(e.wells))
	copy(out, e.wells)
	return out
}

// CountByType reports the population per type, including absent types.
func (e *Engine) CountByType() map[particle.Type]int {
	counts := make(map[particle.Type]int, len(particle.Types))
	for _, t := range particle.Types {
		counts[t] = 0
	}
	for i := range e.particles {
		counts[e.particles[i].Type]++
	}
	return counts
}

// ReactionCounts reports the cumulative collision outcomes since the last
// reset or clear.
func (e *Engine) ReactionCounts() map[collision.Reaction]int {
	out := make(map[collision.Reaction]int, len(e.reactions))
	for r, n := range e.reactions {
		out[r] = n
	}
	return out
}

// clearTail zeroes ps[from:] so dropped trails can be collected.
func clearTail(ps []particle.Particle, from int) {
	for i := from; i < len(ps); i++ {
		ps[i] = particle.Particle{}
	}
}
