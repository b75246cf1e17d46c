package config

import (
	"fmt"
	"os"

	"github.com/san-kum/quantasim/internal/particle"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 1.0 / 60.0
	DefaultDuration    = 10.0
	DefaultFieldWidth  = 1920.0
	DefaultFieldHeight = 1080.0
	DefaultTheta       = 0.5

	ApproxPairwise  = "pairwise"
	ApproxBarnesHut = "barneshut"
)

// SimulationConfig holds the kernel tunables. A step always sees one
// consistent value; updates replace it wholesale.
type SimulationConfig struct {
	GravityStrength    float64               `yaml:"gravity_strength" json:"gravityStrength"`
	EMForce            float64               `yaml:"em_force" json:"emForce"`
	Temperature        float64               `yaml:"temperature" json:"temperature"`
	CollisionDetection bool                  `yaml:"collision_detection" json:"collisionDetection"`
	EnergyConservation bool                  `yaml:"energy_conservation" json:"energyConservation"`
	ParticleCount      map[particle.Type]int `yaml:"particle_count" json:"particleCount"`
	Preset             string                `yaml:"preset,omitempty" json:"preset,omitempty"`
	Approximation      string                `yaml:"approximation,omitempty" json:"approximation,omitempty"`
	Theta              float64               `yaml:"theta,omitempty" json:"theta,omitempty"`
}

// Patch is a partial update; nil fields keep their current value.
type Patch struct {
	GravityStrength    *float64
	EMForce            *float64
	Temperature        *float64
	CollisionDetection *bool
	EnergyConservation *bool
	ParticleCount      map[particle.Type]int
	Preset             *string
	Approximation      *string
	Theta              *float64
}

// Field is the simulated area; particles wrap at its edges.
type Field struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Config is the file-level run configuration.
type Config struct {
	Scenario   string           `yaml:"scenario"`
	Dt         float64          `yaml:"dt"`
	Duration   float64          `yaml:"duration"`
	Seed       int64            `yaml:"seed"`
	Field      Field            `yaml:"field"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// DefaultSimulation mirrors the sandbox defaults of the interactive client.
func DefaultSimulation() SimulationConfig {
	return SimulationConfig{
		GravityStrength:    0.75,
		EMForce:            1.2,
		Temperature:        2847,
		CollisionDetection: true,
		EnergyConservation: false,
		ParticleCount: map[particle.Type]int{
			particle.Photon:     342,
			particle.Electron:   186,
			particle.Quark:      98,
			particle.Boson:      73,
			particle.DarkMatter: 548,
			particle.Neutrino:   1394,
		},
		Approximation: ApproxPairwise,
		Theta:         DefaultTheta,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Field: Field{
			Width:  DefaultFieldWidth,
			Height: DefaultFieldHeight,
		},
		Simulation: DefaultSimulation(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the kernel cannot run with.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		return fmt.Errorf("field must have positive size, got %gx%g", c.Field.Width, c.Field.Height)
	}
	return c.Simulation.Validate()
}

func (s SimulationConfig) Validate() error {
	for t, n := range s.ParticleCount {
		if !t.Valid() {
			return fmt.Errorf("%w: %q", particle.ErrUnknownType, string(t))
		}
		if n < 0 {
			return fmt.Errorf("particle count for %s must be non-negative, got %d", t, n)
		}
	}
	switch s.Approximation {
	case "", ApproxPairwise, ApproxBarnesHut:
	default:
		return fmt.Errorf("unknown force approximation: %s", s.Approximation)
	}
	if s.Temperature < 0 {
		return fmt.Errorf("temperature must be non-negative, got %f", s.Temperature)
	}
	return nil
}

// Clone returns a copy that does not share the particle count map.
func (s SimulationConfig) Clone() SimulationConfig {
	c := s
	if s.ParticleCount != nil {
		c.ParticleCount = make(map[particle.Type]int, len(s.ParticleCount))
		for k, v := range s.ParticleCount {
			c.ParticleCount[k] = v
		}
	}
	return c
}

// Merge applies p on top of s and returns the result. A non-nil particle
// count map replaces the current one.
func (s SimulationConfig) Merge(p Patch) SimulationConfig {
	out := s.Clone()
	if p.GravityStrength != nil {
		out.GravityStrength = *p.GravityStrength
	}
	if p.EMForce != nil {
		out.EMForce = *p.EMForce
	}
	if p.Temperature != nil {
		out.Temperature = *p.Temperature
	}
	if p.CollisionDetection != nil {
		out.CollisionDetection = *p.CollisionDetection
	}
	if p.EnergyConservation != nil {
		out.EnergyConservation = *p.EnergyConservation
	}
	if p.ParticleCount != nil {
		out.ParticleCount = make(map[particle.Type]int, len(p.ParticleCount))
		for k, v := range p.ParticleCount {
			out.ParticleCount[k] = v
		}
	}
	if p.Preset != nil {
		out.Preset = *p.Preset
	}
	if p.Approximation != nil {
		out.Approximation = *p.Approximation
	}
	if p.Theta != nil {
		out.Theta = *p.Theta
	}
	return out
}

// Full turns a complete config into a patch that overwrites every field.
func (s SimulationConfig) Full() Patch {
	c := s.Clone()
	return Patch{
		GravityStrength:    &c.GravityStrength,
		EMForce:            &c.EMForce,
		Temperature:        &c.Temperature,
		CollisionDetection: &c.CollisionDetection,
		EnergyConservation: &c.EnergyConservation,
		ParticleCount:      c.ParticleCount,
		Preset:             &c.Preset,
		Approximation:      &c.Approximation,
		Theta:              &c.Theta,
	}
}

// TotalParticles sums the configured per-type counts.
func (s SimulationConfig) TotalParticles() int {
	n := 0
	for _, c := range s.ParticleCount {
		n += c
	}
	return n
}
