package experiment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/robogym/agent/nonlinear/continuous/ddpg"
	env "github.com/samuelfneumann/robogym/environment"
	"github.com/samuelfneumann/robogym/environment/robot"
	"github.com/samuelfneumann/robogym/environment/world"
	"github.com/samuelfneumann/robogym/experiment/checkpointer"
	"github.com/samuelfneumann/robogym/experiment/tracker"
	ts "github.com/samuelfneumann/robogym/timestep"
	"github.com/samuelfneumann/robogym/utils/progressbar"
	"gonum.org/v1/gonum/floats"
)

// Worker trains or evaluates a single agent on its own environment.
// Workers share no mutable state, so any number of them can run
// concurrently.
type Worker struct {
	id     int
	config Config

	env   *robot.Env
	agent *ddpg.DDPG
	ender env.Ender

	// First timestep of an episode the environment has already been
	// reset for
	first *ts.TimeStep

	returns *tracker.Return
	logger  zerolog.Logger
	bar     *progressbar.Bar
}

// NewWorker creates worker id of the Config. The worker's environment
// and agent are seeded with the Config's seed plus id.
func NewWorker(id int, c Config, logger zerolog.Logger) (*Worker, error) {
	if id < 0 || id >= len(c.Workers) {
		return nil, fmt.Errorf("newWorker: no worker %v in config with %v "+
			"workers", id, len(c.Workers))
	}
	seed := c.Seed + uint64(id)

	gen, err := c.generator(id)
	if err != nil {
		return nil, fmt.Errorf("newWorker: %w", err)
	}
	e, first, err := robot.NewEnv(gen, c.Task)
	if err != nil {
		return nil, fmt.Errorf("newWorker: could not create "+
			"environment: %w", err)
	}

	features := e.ObservationSpec().Shape.Len()
	actions := int(e.ActionSpec().UpperBound.AtVec(0)) + 1
	agent, err := ddpg.New(c.Agent, features, actions, seed)
	if err != nil {
		return nil, fmt.Errorf("newWorker: could not create agent: %w", err)
	}
	agent.SetLogger(logger)

	return &Worker{
		id:     id,
		config: c,
		env:    e,
		agent:  agent,
		ender:  env.NewStepLimit(c.MaxEpisodeSteps),
		first:  &first,
		logger: logger,
	}, nil
}

// generator returns the map generator of worker i
func (c Config) generator(i int) (world.Generator, error) {
	path := c.Workers[i].Scenario
	if path == "" {
		return world.Random(c.Generator, c.Seed+uint64(i))
	}

	s, err := world.LoadScenario(path)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	return world.FromScenario(s)
}

// SetProgress sets the progress bar the worker reports to
func (w *Worker) SetProgress(bar *progressbar.Bar) {
	w.bar = bar
}

// Returns returns the episodic returns of every training episode run
// so far
func (w *Worker) Returns() []float64 {
	if w.returns == nil {
		return nil
	}
	return w.returns.Returns()
}

// RunEpisode runs a single episode and returns its return. Every tick
// of the episode is sent to the trackers. If learn is true, the agent
// remembers each transition and learns according to the Config's
// schedule.
func (w *Worker) RunEpisode(learn bool, trackers ...tracker.Tracker) (float64,
	error) {
	step, err := w.reset()
	if err != nil {
		return 0, fmt.Errorf("runEpisode: %w", err)
	}
	if err := w.agent.ObserveFirst(step); err != nil {
		return 0, fmt.Errorf("runEpisode: %w", err)
	}

	ret := 0.0
	for !step.Last() {
		action := w.agent.SelectAction(step)
		index := floats.MaxIdx(action.RawVector().Data)

		next, _, err := w.env.Step(index)
		if err != nil {
			return ret, fmt.Errorf("runEpisode: %w", err)
		}
		w.ender.End(&next)

		tick := tracker.NewTick(next, index, ret, w.env.State())
		for _, t := range trackers {
			t.Track(tick)
		}
		ret = tick.Return

		if learn {
			if err := w.agent.Observe(action, next); err != nil {
				return ret, fmt.Errorf("runEpisode: %w", err)
			}
			if w.config.LearnEvery == PerStep {
				if err := w.learn(); err != nil {
					return ret, fmt.Errorf("runEpisode: %w", err)
				}
			}
		}
		step = next
	}
	w.agent.EndEpisode()

	return ret, nil
}

// reset starts a new episode. The first episode uses the simulation
// created along with the environment.
func (w *Worker) reset() (ts.TimeStep, error) {
	if w.first != nil {
		step := *w.first
		w.first = nil
		return step, nil
	}
	return w.env.Reset()
}

// learn updates the agent LearnIterations times
func (w *Worker) learn() error {
	for i := 0; i < w.config.LearnIterations; i++ {
		if err := w.agent.Step(); err != nil {
			return fmt.Errorf("learn: %w", err)
		}
	}
	return nil
}

// Train runs every training episode of the worker. The actor is saved
// whenever an episode beats the best return so far. The telemetry of
// the best episode and the return of every episode are written to the
// worker's output directory once training ends.
func (w *Worker) Train(ctx context.Context) error {
	out := w.config.Output(w.id)
	model := w.config.Model(w.id)
	for _, dir := range []string{out, filepath.Dir(model)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("train: %w", err)
		}
	}

	w.agent.Train()
	w.returns = tracker.NewReturn(filepath.Join(out, "returns.bin"))
	best := tracker.NewBestEpisode(
		filepath.Join(out, "train.log"),
		filepath.Join(out, "train_state.log"),
		filepath.Join(out, "train.png"),
	)

	bestCheckpoint := checkpointer.NewBest(w.agent, model)
	var snapshots checkpointer.Checkpointer
	if w.config.SnapshotEvery > 0 {
		var err error
		snapshots, err = checkpointer.NewNEpisode(w.config.SnapshotEvery,
			w.agent, checkpointer.FilenameEnumerator(0,
				filepath.Join(out, "model-"), ".bin"))
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}
	}

	for episode := 0; episode < w.config.Episodes; episode++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("train: %w", err)
		}

		ret, err := w.RunEpisode(true, w.returns, best)
		if err != nil {
			return fmt.Errorf("train: episode %v: %w", episode, err)
		}
		w.logger.Info().
			Int("episode", episode).
			Float64("return", ret).
			Msgf("T: %d, episode: %d with a total reward of %.4f", w.id,
				episode, ret)

		saved, err := bestCheckpoint.Checkpoint(episode, ret)
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}
		if saved {
			w.logger.Info().Str("model", model).
				Msgf("T: %d, found new best", w.id)
		}
		if snapshots != nil {
			if _, err := snapshots.Checkpoint(episode, ret); err != nil {
				return fmt.Errorf("train: %w", err)
			}
		}

		if w.config.LearnEvery == PerEpisode {
			if err := w.learn(); err != nil {
				return fmt.Errorf("train: episode %v: %w", episode, err)
			}
		}

		if w.bar != nil {
			bestReturn, _ := best.Best()
			w.bar.Increment()
			w.bar.SetStatus("return %.4f | best %.4f", ret, bestReturn)
		}
	}

	for _, t := range []tracker.Tracker{w.returns, best} {
		if err := t.Save(); err != nil {
			return fmt.Errorf("train: %w", err)
		}
	}
	return nil
}

// Evaluate loads the worker's saved actor and runs a single greedy
// episode with it. The telemetry of the episode is written to the
// worker's output directory.
func (w *Worker) Evaluate(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("evaluate: %w", err)
	}

	out := w.config.Output(w.id)
	if err := os.MkdirAll(out, 0o755); err != nil {
		return 0, fmt.Errorf("evaluate: %w", err)
	}

	if err := w.agent.LoadPolicy(w.config.Model(w.id)); err != nil {
		return 0, fmt.Errorf("evaluate: %w", err)
	}
	w.agent.Eval()

	trace := tracker.NewBestEpisode(
		filepath.Join(out, "eval.log"),
		filepath.Join(out, "eval_state.log"),
		filepath.Join(out, "eval.png"),
	)
	ret, err := w.RunEpisode(false, trace)
	if err != nil {
		return ret, fmt.Errorf("evaluate: %w", err)
	}
	w.logger.Info().Float64("return", ret).
		Msgf("T: %d, evaluation: %.4f", w.id, ret)

	if err := trace.Save(); err != nil {
		return ret, fmt.Errorf("evaluate: %w", err)
	}
	if w.bar != nil {
		w.bar.Increment()
		w.bar.SetStatus("return %.4f", ret)
	}
	return ret, nil
}
