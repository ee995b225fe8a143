package ddpg

import (
	"fmt"

	"github.com/samuelfneumann/robogym/agent"
	"github.com/samuelfneumann/robogym/expreplay"
	"github.com/samuelfneumann/robogym/initwfn"
	"github.com/samuelfneumann/robogym/noise"
	"github.com/samuelfneumann/robogym/solver"
)

// Config implements a configuration of the DDPG agent
type Config struct {
	ActorLayers  []int // Hidden layer sizes of the actor
	CriticLayers []int // Hidden layer sizes of the critic

	ActorSolver  *solver.Solver
	CriticSolver *solver.Solver

	// Initialization algorithm for weights
	InitWFn *initwfn.InitWFn

	Gamma     float64 // Discount
	Tau       float64 // Polyak averaging constant for target networks
	BatchSize int     // Maximum number of transitions per update

	ExpReplay expreplay.Config
	Noise     noise.Config
}

// DefaultConfig returns the configuration the robot is trained with
// unless told otherwise.
func DefaultConfig() Config {
	actorSolver, err := solver.NewDefaultAdam(1e-4, 1)
	if err != nil {
		panic(fmt.Sprintf("defaultConfig: could not create actor solver: %v",
			err))
	}
	criticSolver, err := solver.NewDefaultAdam(4e-4, 1)
	if err != nil {
		panic(fmt.Sprintf("defaultConfig: could not create critic "+
			"solver: %v", err))
	}

	return Config{
		ActorLayers:  []int{1000, 600},
		CriticLayers: []int{1000, 600},
		ActorSolver:  actorSolver,
		CriticSolver: criticSolver,
		InitWFn:      initwfn.NewGlorotU(1.0),
		Gamma:        0.99,
		Tau:          0.001,
		BatchSize:    30,
		ExpReplay:    expreplay.Config{MaxReplayCapacity: 100_000},
		Noise:        noise.Config{Theta: 0.15, Sigma: 0.2, Mu: 0.0},
	}
}

// Validate checks a Config for errors
func (c Config) Validate() error {
	if len(c.ActorLayers) == 0 {
		return fmt.Errorf("validate: actor must have at least one hidden " +
			"layer")
	}
	if len(c.CriticLayers) == 0 {
		return fmt.Errorf("validate: critic must have at least one hidden " +
			"layer")
	}
	for _, size := range append(append([]int{}, c.ActorLayers...),
		c.CriticLayers...) {
		if size < 1 {
			return fmt.Errorf("validate: layer sizes must be positive, "+
				"have %v", size)
		}
	}

	if c.ActorSolver == nil || c.CriticSolver == nil {
		return fmt.Errorf("validate: actor and critic solvers required")
	}
	if c.InitWFn == nil {
		return fmt.Errorf("validate: weight initializer required")
	}

	if c.Gamma < 0 || c.Gamma >= 1 {
		return fmt.Errorf("validate: γ must be in [0, 1), have %v", c.Gamma)
	}
	if c.Tau < 0 || c.Tau > 1 {
		return fmt.Errorf("validate: τ must be in [0, 1], have %v", c.Tau)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("validate: batch size must be positive, have %v",
			c.BatchSize)
	}
	if c.ExpReplay.MaxReplayCapacity < expreplay.MinSamples {
		return fmt.Errorf("validate: replay capacity must be at least %v, "+
			"have %v", expreplay.MinSamples, c.ExpReplay.MaxReplayCapacity)
	}

	if err := c.Noise.Validate(); err != nil {
		return fmt.Errorf("validate: noise: %w", err)
	}
	return nil
}

// CreateAgent creates the DDPG agent that the Config describes
func (c Config) CreateAgent(features, actions int,
	seed uint64) (agent.Agent, error) {
	d, err := New(c, features, actions, seed)
	if err != nil {
		return nil, fmt.Errorf("createAgent: %w", err)
	}
	return d, nil
}

var (
	_ agent.Config       = Config{}
	_ agent.Agent        = (*DDPG)(nil)
	_ agent.Checkpointer = (*DDPG)(nil)
)
