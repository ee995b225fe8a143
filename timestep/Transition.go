package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Transition is a single (s, a, r, s') tuple. The Action is the
// continuous action vector proposed by the agent, not the discrete
// action index sent to the environment.
type Transition struct {
	State     *mat.VecDense
	Action    *mat.VecDense
	Reward    float64
	NextState *mat.VecDense
}

// NewTransition creates a Transition from the TimeStep an action was
// taken on and the TimeStep that action led to. The vectors are copied
// so that the Transition does not alias environment state.
func NewTransition(step TimeStep, action mat.Vector,
	next TimeStep) Transition {
	var state, nextState, act mat.VecDense
	state.CloneFromVec(step.Observation)
	nextState.CloneFromVec(next.Observation)
	act.CloneFromVec(action)

	return Transition{
		State:     &state,
		Action:    &act,
		Reward:    next.Reward,
		NextState: &nextState,
	}
}

func (t Transition) String() string {
	return fmt.Sprintf("Transition | Reward: %.2f | State: %v | Action: %v",
		t.Reward, mat.Formatted(t.State.T()), mat.Formatted(t.Action.T()))
}
