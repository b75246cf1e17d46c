package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/quantasim/internal/config"
)

var ErrUnknownParam = errors.New("experiment: unknown parameter")

var setters = map[string]func(c *config.SimulationConfig, v float64){
	"gravity_strength": func(c *config.SimulationConfig, v float64) { c.GravityStrength = v },
	"em_force":         func(c *config.SimulationConfig, v float64) { c.EMForce = v },
	"temperature":      func(c *config.SimulationConfig, v float64) { c.Temperature = v },
	"theta":            func(c *config.SimulationConfig, v float64) { c.Theta = v },
}

// SetParam assigns one tunable by its config-file name.
func SetParam(c *config.SimulationConfig, name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%w: %s (available: %v)", ErrUnknownParam, name, ParamNames())
	}
	set(c, v)
	return nil
}

func ParamNames() []string {
	names := make([]string, 0, len(setters))
	for n := range setters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
