// Package timestep implements timesteps of the agent-environment
// interaction and the transitions built from them.
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either the
// first environmental step (returned by a reset), a middle step, or the
// last step of an episode.
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single tick of an environment: the
// reward received for the previous action and the observation built
// after the tick was processed.
type TimeStep struct {
	stepType    StepType
	Reward      float64
	Observation *mat.VecDense
	Number      int
}

// New returns a new TimeStep
func New(t StepType, r float64, o *mat.VecDense, n int) TimeStep {
	return TimeStep{t, r, o, n}
}

// StepType returns the type of the TimeStep
func (t TimeStep) StepType() StepType {
	return t.stepType
}

// First returns whether a TimeStep is the first in an episode
func (t TimeStep) First() bool {
	return t.stepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t TimeStep) Mid() bool {
	return t.stepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t TimeStep) Last() bool {
	return t.stepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Step Number:  %v"

	return fmt.Sprintf(str, t.stepType, t.Reward, t.Number)
}
