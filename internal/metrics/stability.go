package metrics

import (
	"github.com/san-kum/quantasim/internal/engine"
)

// Stability is the fraction of steps whose fastest particle stayed at or
// below threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(st engine.Stats, t float64) {
	s.samples++
	if st.MaxVelocity > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Survival is the population at the last step relative to the first.
type Survival struct {
	name    string
	initial int
	current int
	seen    bool
}

func NewSurvival() *Survival {
	return &Survival{name: "survival"}
}

func (s *Survival) Name() string { return s.name }

func (s *Survival) Observe(st engine.Stats, t float64) {
	if !s.seen {
		s.initial = st.ParticleCount
		s.seen = true
	}
	s.current = st.ParticleCount
}

func (s *Survival) Value() float64 {
	if s.initial == 0 {
		return 0
	}
	return float64(s.current) / float64(s.initial)
}

func (s *Survival) Reset() {
	s.initial, s.current = 0, 0
	s.seen = false
}
