// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"github.com/samuelfneumann/robogym/timestep"
)

// Environment implements a simulated environment with discrete actions
type Environment interface {
	// Reset starts a new episode and returns its first timestep
	Reset() (timestep.TimeStep, error)

	// Step takes an action in the environment and returns the next
	// timestep and whether the episode is over
	Step(action int) (timestep.TimeStep, bool, error)

	ObservationSpec() Spec
	ActionSpec() Spec
}

// Ender determines when episodes should be ended
type Ender interface {
	// End returns whether the episode should end at timestep t,
	// setting t to a timestep.Last if so
	End(t *timestep.TimeStep) bool
}
