package engine

import "errors"

var (
	// ErrInvalidConfig wraps a configuration the engine refuses to run.
	ErrInvalidConfig = errors.New("engine: invalid configuration")

	// ErrNilScenario is returned by LoadScenario when given nothing to load.
	ErrNilScenario = errors.New("engine: nil scenario")
)
