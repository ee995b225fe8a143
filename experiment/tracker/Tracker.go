// Package tracker implements Trackers, which record the telemetry of
// training and evaluation runs and save it to disk
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/robogym/environment/robot"
	ts "github.com/samuelfneumann/robogym/timestep"
)

// Tick is the telemetry of a single environment step
type Tick struct {
	Number int
	Action int
	Reward float64
	Done   bool // The episode reached its target

	// Last is true for the last tick of an episode, whether it reached
	// its target or hit the step limit
	Last bool

	// Return is the reward accumulated in the episode up to and
	// including this tick
	Return float64

	Danger  robot.Features
	CoinDir robot.Features
	CoinAdj robot.Features
	BankDir robot.Features
	BankAdj robot.Features
}

// NewTick returns the telemetry of step, which was produced by taking
// action in an environment that is now in state s. ret is the return
// accumulated before step.
func NewTick(step ts.TimeStep, action int, ret float64, s robot.State) Tick {
	return Tick{
		Number:  step.Number,
		Action:  action,
		Reward:  step.Reward,
		Done:    s.Done,
		Last:    step.Last(),
		Return:  ret + step.Reward,
		Danger:  s.Danger,
		CoinDir: s.CoinDir,
		CoinAdj: s.CoinAdj,
		BankDir: s.BankDir,
		BankAdj: s.BankAdj,
	}
}

// Interface Tracker keeps track of run data and saves the data
// after the run has finished
type Tracker interface {
	Track(t Tick)
	Save() error
}

// LoadReturns loads and returns the episodic returns saved by a
// Return Tracker
func LoadReturns(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadReturns: could not open data file: %w",
			err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var data []float64
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("loadReturns: could not decode data: %w",
			err)
	}

	return data, nil
}
