package robot

import (
	"fmt"

	env "github.com/samuelfneumann/robogym/environment"
	"github.com/samuelfneumann/robogym/environment/world"
	ts "github.com/samuelfneumann/robogym/timestep"
	"gonum.org/v1/gonum/mat"
)

// Env adapts a Robot acting in a world.Simulation to the
// environment.Environment interface. Every call to Reset or Step
// advances the simulation by exactly one tick.
type Env struct {
	generator world.Generator
	config    Config

	sim   *world.Simulation
	state *State
	robot *Robot
	steps int
}

// NewEnv returns a new Env whose episodes run in simulations created
// by gen, along with the first timestep of its first episode.
func NewEnv(gen world.Generator, c Config) (*Env, ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newEnv: %w", err)
	}

	e := &Env{generator: gen, config: c}
	step, err := e.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newEnv: %w", err)
	}
	return e, step, nil
}

// Reset implements the environment.Environment interface. A fresh
// simulation, State and Robot are created and the Robot's setup tick
// is run.
func (e *Env) Reset() (ts.TimeStep, error) {
	sim, err := e.generator.Generate()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	e.sim = sim
	e.state = NewState()
	e.robot = New(e.state, e.config)
	e.steps = 0

	if err := e.sim.Tick(e.robot); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	return ts.New(ts.First, 0, e.state.Observation(), 0), nil
}

// Step implements the environment.Environment interface
func (e *Env) Step(action int) (ts.TimeStep, bool, error) {
	if action < 0 || action >= NumActions {
		return ts.TimeStep{}, false, fmt.Errorf("step: action must be in "+
			"[0, %v), have %v", NumActions, action)
	}

	e.state.Action = action
	if err := e.sim.Tick(e.robot); err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}
	e.steps++

	stepType := ts.Mid
	if e.state.Done {
		stepType = ts.Last
	}
	step := ts.New(stepType, e.state.Reward, e.state.Observation(), e.steps)

	return step, e.state.Done, nil
}

// State returns a copy of the current episode's state
func (e *Env) State() State {
	return e.state.Copy()
}

// Simulation returns the simulation of the current episode
func (e *Env) Simulation() *world.Simulation {
	return e.sim
}

// ObservationSpec implements the environment.Environment interface
func (e *Env) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(NumObservations, nil)
	lowerBound := mat.NewVecDense(NumObservations, nil)
	upperBound := mat.NewVecDense(NumObservations, nil)
	for i := 0; i < NumObservations; i++ {
		upperBound.SetVec(i, 1.0)
	}

	return env.NewSpec(shape, env.Observation, lowerBound, upperBound,
		env.Discrete)
}

// ActionSpec implements the environment.Environment interface
func (e *Env) ActionSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{0})
	upperBound := mat.NewVecDense(1, []float64{NumActions - 1})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Discrete)
}

var _ env.Environment = (*Env)(nil)
