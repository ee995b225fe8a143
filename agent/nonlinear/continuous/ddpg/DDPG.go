// Package ddpg implements the Deep Deterministic Policy Gradient
// algorithm with Ornstein-Uhlenbeck exploration noise.
package ddpg

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/robogym/expreplay"
	"github.com/samuelfneumann/robogym/network"
	"github.com/samuelfneumann/robogym/noise"
	ts "github.com/samuelfneumann/robogym/timestep"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// DDPG implements the Deep Deterministic Policy Gradient algorithm.
//
// The agent keeps four computational graphs:
//
//	behaviour:	μ(s) on a single state, used for action selection
//	actorTrain:	Q(s, μ(s)) on a batch, differentiated w.r.t. μ
//	criticTrain:	Q(s, a) on a batch, differentiated w.r.t. Q
//	target:		Q'(s', μ'(s')) on a batch, providing the update target
//
// The critic in the actorTrain graph is a copy of the learned critic
// whose weights are synced before each actor update. The behaviour
// actor is synced to the learned actor after each update.
type DDPG struct {
	behaviour   *network.MLP
	behaviourVM G.VM

	actor       *network.MLP
	actorCritic *network.MLP // Copy of the critic reading μ(s)
	actorVM     G.VM
	actorSolver G.Solver
	actorRowW   *G.Node

	critic        *network.MLP
	criticState   *G.Node
	criticAction  *G.Node
	criticVM      G.VM
	criticSolver  G.Solver
	criticTargets *G.Node
	criticRowW    *G.Node
	criticLoss    G.Value

	targetActor  *network.MLP
	targetCritic *network.MLP
	targetVM     G.VM

	gamma     float64
	tau       float64
	batchSize int

	replay expreplay.ExperienceReplayer
	noise  *noise.OrnsteinUhlenbeck

	// Keep track of the previous step to add transitions to the replay
	// buffer when observing
	prevStep   ts.TimeStep
	hasPrev    bool
	features   int
	numActions int

	eval   bool
	logger zerolog.Logger
}

// New creates and returns a new DDPG agent for an environment with the
// given number of observation features and action dimensions.
func New(c Config, features, actions int, seed uint64) (*DDPG, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if features < 1 || actions < 1 {
		return nil, fmt.Errorf("new: features (%v) and actions (%v) must "+
			"be positive", features, actions)
	}
	batch := c.BatchSize
	init := c.InitWFn.InitWFn()

	// Behaviour policy selecting a single action at a time
	behaviour, err := network.NewMLP(features, 1, actions, G.NewGraph(),
		c.ActorLayers, init, network.TanH(), "behaviour/")
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour actor: %w",
			err)
	}

	// Actor training graph: loss = -Σ wᵢ Q(sᵢ, μ(sᵢ))
	gActor := G.NewGraph()
	actorState := G.NewMatrix(gActor, tensor.Float64,
		G.WithShape(batch, features), G.WithName("actor/state"),
		G.WithInit(G.Zeroes()))
	actor, err := behaviour.CloneTo([]*G.Node{actorState}, "actor/")
	if err != nil {
		return nil, fmt.Errorf("new: could not create actor: %w", err)
	}

	// The critic is created in its own graph first so that all critics
	// share its initial weights.
	gCritic := G.NewGraph()
	criticState := G.NewMatrix(gCritic, tensor.Float64,
		G.WithShape(batch, features), G.WithName("critic/state"),
		G.WithInit(G.Zeroes()))
	criticAction := G.NewMatrix(gCritic, tensor.Float64,
		G.WithShape(batch, actions), G.WithName("critic/action"),
		G.WithInit(G.Zeroes()))
	critic, err := network.NewMLPFromInputs(
		[]*G.Node{criticAction, criticState}, 1, c.CriticLayers, init,
		network.Identity(), "critic/")
	if err != nil {
		return nil, fmt.Errorf("new: could not create critic: %w", err)
	}

	actorCritic, err := critic.CloneTo(
		[]*G.Node{actor.Prediction(), actorState}, "actorCritic/")
	if err != nil {
		return nil, fmt.Errorf("new: could not create critic of actor "+
			"graph: %w", err)
	}
	actorRowW := G.NewMatrix(gActor, tensor.Float64, G.WithShape(batch, 1),
		G.WithName("actor/rowWeights"), G.WithInit(G.Zeroes()))
	actorLoss := G.Must(G.HadamardProd(actorCritic.Prediction(), actorRowW))
	actorLoss = G.Must(G.Neg(G.Must(G.Sum(actorLoss))))
	if _, err := G.Grad(actorLoss, actor.Learnables()...); err != nil {
		return nil, fmt.Errorf("new: could not compute actor gradient: %w",
			err)
	}
	actorVM := G.NewTapeMachine(gActor,
		G.BindDualValues(actor.Learnables()...))

	// Critic training graph: loss = Σ wᵢ (Q(sᵢ, aᵢ) - yᵢ)²
	criticTargets := G.NewMatrix(gCritic, tensor.Float64,
		G.WithShape(batch, 1), G.WithName("critic/targets"),
		G.WithInit(G.Zeroes()))
	criticRowW := G.NewMatrix(gCritic, tensor.Float64, G.WithShape(batch, 1),
		G.WithName("critic/rowWeights"), G.WithInit(G.Zeroes()))
	criticLoss := G.Must(G.Sub(critic.Prediction(), criticTargets))
	criticLoss = G.Must(G.Square(criticLoss))
	criticLoss = G.Must(G.HadamardProd(criticLoss, criticRowW))
	criticLoss = G.Must(G.Sum(criticLoss))
	if _, err := G.Grad(criticLoss, critic.Learnables()...); err != nil {
		return nil, fmt.Errorf("new: could not compute critic gradient: %w",
			err)
	}

	// Target graph: Q'(s', μ'(s'))
	gTarget := G.NewGraph()
	nextState := G.NewMatrix(gTarget, tensor.Float64,
		G.WithShape(batch, features), G.WithName("target/nextState"),
		G.WithInit(G.Zeroes()))
	targetActor, err := actor.CloneTo([]*G.Node{nextState}, "targetActor/")
	if err != nil {
		return nil, fmt.Errorf("new: could not create target actor: %w", err)
	}
	targetCritic, err := critic.CloneTo(
		[]*G.Node{targetActor.Prediction(), nextState}, "targetCritic/")
	if err != nil {
		return nil, fmt.Errorf("new: could not create target critic: %w",
			err)
	}

	replay, err := c.ExpReplay.Create(features, actions, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create experience replay "+
			"buffer: %w", err)
	}

	ou, err := noise.NewOrnsteinUhlenbeck(c.Noise, actions, seed+1)
	if err != nil {
		return nil, fmt.Errorf("new: could not create noise: %w", err)
	}

	d := &DDPG{
		behaviour:     behaviour,
		behaviourVM:   G.NewTapeMachine(behaviour.Graph()),
		actor:         actor,
		actorCritic:   actorCritic,
		actorVM:       actorVM,
		actorSolver:   c.ActorSolver.Fresh(),
		actorRowW:     actorRowW,
		critic:        critic,
		criticState:   criticState,
		criticAction:  criticAction,
		criticSolver:  c.CriticSolver.Fresh(),
		criticTargets: criticTargets,
		criticRowW:    criticRowW,
		targetActor:   targetActor,
		targetCritic:  targetCritic,
		targetVM:      G.NewTapeMachine(gTarget),
		gamma:         c.Gamma,
		tau:           c.Tau,
		batchSize:     batch,
		replay:        replay,
		noise:         ou,
		features:      features,
		numActions:    actions,
		logger:        zerolog.Nop(),
	}
	G.Read(criticLoss, &d.criticLoss)
	d.criticVM = G.NewTapeMachine(gCritic,
		G.BindDualValues(critic.Learnables()...))

	return d, nil
}

// SetLogger sets the logger that learning diagnostics are written to
func (d *DDPG) SetLogger(l zerolog.Logger) {
	d.logger = l
}

// SelectAction returns the actor's action proposal in the state of t.
// In training mode, a single sample of the exploration noise is added
// to the proposal.
func (d *DDPG) SelectAction(t ts.TimeStep) *mat.VecDense {
	if t.Observation == nil || t.Observation.Len() != d.features {
		panic(fmt.Sprintf("selectAction: observation must have %v features",
			d.features))
	}

	obs := append([]float64{}, t.Observation.RawVector().Data...)
	if err := d.behaviour.SetInput(obs); err != nil {
		panic(fmt.Sprintf("selectAction: could not set input: %v", err))
	}
	if err := d.behaviourVM.RunAll(); err != nil {
		panic(fmt.Sprintf("selectAction: could not run behaviour "+
			"policy: %v", err))
	}

	proposal := d.behaviour.Output().Data().([]float64)
	action := mat.NewVecDense(d.numActions, append([]float64{}, proposal...))
	d.behaviourVM.Reset()

	if !d.eval {
		action.AddVec(action, d.noise.Sample())
	}

	return action
}

// Remember adds a transition to the replay buffer
func (d *DDPG) Remember(t ts.Transition) error {
	if err := d.replay.Add(t); err != nil {
		return fmt.Errorf("remember: %w", err)
	}
	return nil
}

// ObserveFirst records the first timestep in an episode
func (d *DDPG) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: timestep %v is not the first "+
			"in the episode", t.Number)
	}
	d.prevStep = t
	d.hasPrev = true
	return nil
}

// Observe records that action lead to the next timestep and adds the
// resulting transition to the replay buffer.
func (d *DDPG) Observe(action mat.Vector, next ts.TimeStep) error {
	if !d.hasPrev {
		return fmt.Errorf("observe: no previous timestep, call " +
			"ObserveFirst first")
	}
	if err := d.Remember(ts.NewTransition(d.prevStep, action, next)); err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	d.prevStep = next
	return nil
}

// EndEpisode forgets the last observed timestep. The exploration noise
// process keeps its state across episodes.
func (d *DDPG) EndEpisode() {
	d.prevStep = ts.TimeStep{}
	d.hasPrev = false
}

// Step performs a single learning step on a batch sampled from the
// replay buffer. If the buffer holds too few transitions, Step returns
// nil without learning.
func (d *DDPG) Step() error {
	S, A, R, NextS, err := d.replay.Sample(d.batchSize)
	if expreplay.IsInsufficientSamples(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("step: %w", err)
	}
	n := len(R)

	// Batches smaller than the graph batch size are padded with zero
	// rows that carry zero weight in the losses
	rowW := make([]float64, d.batchSize)
	for i := 0; i < n; i++ {
		rowW[i] = 1 / float64(n)
	}
	S = pad(S, d.batchSize*d.features)
	A = pad(A, d.batchSize*d.numActions)
	NextS = pad(NextS, d.batchSize*d.features)

	// Update target: y = r + γQ'(s', μ'(s'))
	if err := d.targetActor.SetInput(NextS); err != nil {
		return fmt.Errorf("step: could not set target input: %w", err)
	}
	if err := d.targetVM.RunAll(); err != nil {
		return fmt.Errorf("step: could not compute update target: %w", err)
	}
	nextQ := d.targetCritic.Output().Data().([]float64)
	targets := make([]float64, d.batchSize)
	for i := 0; i < n; i++ {
		targets[i] = R[i] + d.gamma*nextQ[i]
	}
	d.targetVM.Reset()

	// Critic update
	if err := d.let(d.criticTargets, targets, d.batchSize, 1); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	if err := d.let(d.criticRowW, rowW, d.batchSize, 1); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	if err := d.let(d.criticAction, A, d.batchSize, d.numActions); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	if err := d.let(d.criticState, S, d.batchSize, d.features); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	if err := d.criticVM.RunAll(); err != nil {
		return fmt.Errorf("step: could not run critic update: %w", err)
	}
	if err := d.criticSolver.Step(d.critic.Model()); err != nil {
		return fmt.Errorf("step: could not step critic solver: %w", err)
	}
	if loss, ok := d.criticLoss.Data().(float64); ok {
		d.logger.Debug().Int("batch", n).Float64("criticLoss", loss).
			Msg("critic updated")
	}
	d.criticVM.Reset()

	// Actor update using the updated critic
	if err := d.actorCritic.Set(d.critic); err != nil {
		return fmt.Errorf("step: could not sync critic: %w", err)
	}
	if err := d.actor.SetInput(S); err != nil {
		return fmt.Errorf("step: could not set actor input: %w", err)
	}
	if err := d.let(d.actorRowW, rowW, d.batchSize, 1); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	if err := d.actorVM.RunAll(); err != nil {
		return fmt.Errorf("step: could not run actor update: %w", err)
	}
	if err := d.actorSolver.Step(d.actor.Model()); err != nil {
		return fmt.Errorf("step: could not step actor solver: %w", err)
	}
	d.actorVM.Reset()

	// Soft target updates
	if err := d.targetCritic.Polyak(d.critic, d.tau); err != nil {
		return fmt.Errorf("step: could not update target critic: %w", err)
	}
	if err := d.targetActor.Polyak(d.actor, d.tau); err != nil {
		return fmt.Errorf("step: could not update target actor: %w", err)
	}

	if err := d.behaviour.Set(d.actor); err != nil {
		return fmt.Errorf("step: could not sync behaviour policy: %w", err)
	}
	return nil
}

// let sets the value of an input node of shape (rows, cols)
func (d *DDPG) let(node *G.Node, data []float64, rows, cols int) error {
	t := tensor.New(tensor.WithBacking(data), tensor.WithShape(rows, cols))
	if err := G.Let(node, t); err != nil {
		return fmt.Errorf("could not set %v: %w", node.Name(), err)
	}
	return nil
}

// pad returns data extended with zeros to length n
func pad(data []float64, n int) []float64 {
	if len(data) >= n {
		return data
	}
	return append(data, make([]float64, n-len(data))...)
}

// Checkpoint saves the behaviour actor to a file at path
func (d *DDPG) Checkpoint(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("checkpoint: could not create file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(d.behaviour); err != nil {
		return fmt.Errorf("checkpoint: could not encode actor: %w", err)
	}
	return file.Close()
}

// LoadPolicy replaces the weights of every actor of the agent with the
// weights of the actor checkpointed at path.
func (d *DDPG) LoadPolicy(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("loadPolicy: could not open file: %w", err)
	}
	defer file.Close()

	loaded := &network.MLP{}
	if err := gob.NewDecoder(file).Decode(loaded); err != nil {
		return fmt.Errorf("loadPolicy: could not decode actor: %w", err)
	}

	for _, net := range []*network.MLP{d.behaviour, d.actor, d.targetActor} {
		if err := net.Set(loaded); err != nil {
			return fmt.Errorf("loadPolicy: incompatible actor: %w", err)
		}
	}
	return nil
}

// Eval sets the agent into evaluation mode, where no noise is added to
// selected actions.
func (d *DDPG) Eval() { d.eval = true }

// Train sets the agent into training mode
func (d *DDPG) Train() { d.eval = false }

// IsEval returns whether the agent is in evaluation mode
func (d *DDPG) IsEval() bool { return d.eval }
