package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/quantasim/internal/particle"
	"gopkg.in/yaml.v3"
)

var ErrUnknownScenario = errors.New("config: unknown scenario")

type ActionKind string

const (
	ActionGravityWell   ActionKind = "gravity_well"
	ActionParticleBurst ActionKind = "particle_burst"
)

// Action is one setup step applied after a scenario resets the engine.
type Action struct {
	Kind     ActionKind    `yaml:"kind"`
	X        float64       `yaml:"x"`
	Y        float64       `yaml:"y"`
	Strength float64       `yaml:"strength,omitempty"`
	Type     particle.Type `yaml:"type,omitempty"`
	Count    int           `yaml:"count,omitempty"`
}

// Scenario is a named configuration plus ordered setup actions.
type Scenario struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Config      SimulationConfig `yaml:"config"`
	Actions     []Action         `yaml:"actions"`
}

func well(x, y, strength float64) Action {
	return Action{Kind: ActionGravityWell, X: x, Y: y, Strength: strength}
}

func burst(x, y float64, t particle.Type, count int) Action {
	return Action{Kind: ActionParticleBurst, X: x, Y: y, Type: t, Count: count}
}

func counts(photon, electron, quark, boson, dark, neutrino int) map[particle.Type]int {
	return map[particle.Type]int{
		particle.Photon:     photon,
		particle.Electron:   electron,
		particle.Quark:      quark,
		particle.Boson:      boson,
		particle.DarkMatter: dark,
		particle.Neutrino:   neutrino,
	}
}

var Scenarios = map[string]*Scenario{
	"bigbang": {
		Name: "Big Bang", Description: "Universal expansion from a singularity",
		Config: SimulationConfig{
			GravityStrength: 0.1, EMForce: 2.0, Temperature: 15000,
			CollisionDetection: true, EnergyConservation: true,
			ParticleCount: counts(1000, 200, 150, 50, 300, 800),
		},
		Actions: []Action{well(960, 540, -5000)},
	},
	"blackhole": {
		Name: "Black Hole", Description: "Gravitational collapse and event horizon",
		Config: SimulationConfig{
			GravityStrength: 3.0, EMForce: 0.5, Temperature: 2000,
			CollisionDetection: true, EnergyConservation: false,
			ParticleCount: counts(300, 100, 50, 20, 500, 200),
		},
		Actions: []Action{well(960, 540, 15000)},
	},
	"accelerator": {
		Name: "Particle Accelerator", Description: "High-energy particle collisions",
		Config: SimulationConfig{
			GravityStrength: 0.1, EMForce: 3.0, Temperature: 50000,
			CollisionDetection: true, EnergyConservation: true,
			ParticleCount: counts(100, 500, 300, 100, 50, 150),
		},
		Actions: []Action{
			burst(200, 540, particle.Electron, 50),
			burst(1720, 540, particle.Electron, 50),
		},
	},
	"galaxy": {
		Name: "Galaxy Formation", Description: "Cosmic structure formation over time",
		Config: SimulationConfig{
			GravityStrength: 1.5, EMForce: 0.3, Temperature: 3000,
			CollisionDetection: false, EnergyConservation: true,
			ParticleCount: counts(400, 150, 100, 30, 800, 500),
		},
		Actions: []Action{
			well(480, 270, 8000),
			well(1440, 270, 6000),
			well(960, 810, 7000),
		},
	},
	"quantum_foam": {
		Name: "Quantum Foam", Description: "Virtual particle creation and annihilation",
		Config: SimulationConfig{
			GravityStrength: 0.05, EMForce: 4.0, Temperature: 100000,
			CollisionDetection: true, EnergyConservation: false,
			ParticleCount: counts(2000, 300, 500, 200, 100, 1000),
		},
	},
	"neutron_star": {
		Name: "Neutron Star", Description: "Ultra-dense matter under extreme gravity",
		Config: SimulationConfig{
			GravityStrength: 5.0, EMForce: 1.0, Temperature: 1000000,
			CollisionDetection: true, EnergyConservation: true,
			ParticleCount: counts(200, 800, 1000, 50, 200, 1500),
		},
		Actions: []Action{well(960, 540, 25000)},
	},
}

// GetScenario returns a copy of the named preset with Config.Preset set.
func GetScenario(name string) (*Scenario, error) {
	s, ok := Scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownScenario, name, ListScenarios())
	}
	out := *s
	out.Config = s.Config.Clone()
	out.Config.Preset = name
	out.Actions = append([]Action(nil), s.Actions...)
	return &out, nil
}

// ListScenarios returns the preset names in sorted order.
func ListScenarios() []string {
	names := make([]string, 0, len(Scenarios))
	for name := range Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadScenarioFile reads a user-defined scenario from YAML.
func LoadScenarioFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) Validate() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	for i, a := range s.Actions {
		switch a.Kind {
		case ActionGravityWell:
		case ActionParticleBurst:
			if !a.Type.Valid() {
				return fmt.Errorf("action %d: %w: %q", i+1, particle.ErrUnknownType, string(a.Type))
			}
			if a.Count < 0 {
				return fmt.Errorf("action %d: count must be non-negative", i+1)
			}
		default:
			return fmt.Errorf("action %d: unknown kind %q", i+1, a.Kind)
		}
	}
	return nil
}
