package engine

import (
	"log"
	"math/rand"
	"time"

	"github.com/san-kum/quantasim/internal/particle"
)

type Option func(*Engine)

// WithRand sets the random source used for scatter, thermal jitter, decay
// products and identifiers.
func WithRand(rng particle.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithSeed is WithRand over a math/rand source seeded with seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock replaces time.Now for the system-age clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithField sets the wrap-around field size. Non-positive sizes are ignored.
func WithField(width, height float64) Option {
	return func(e *Engine) {
		if width > 0 && height > 0 {
			e.width, e.height = width, height
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}
