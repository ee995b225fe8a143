// Package robot implements a coin collecting robot as a reinforcement
// learning environment. The Robot is a state machine that runs inside
// a world.Simulation, and the Env adapts it to the reset/step
// interface that agents learn from.
package robot

import (
	"fmt"

	"github.com/samuelfneumann/robogym/environment/world"
	"gonum.org/v1/gonum/mat"
)

const (
	// NumActions is the number of discrete actions: 4 verbs in each of
	// 4 directions
	NumActions = 16

	// NumObservations is the length of an observation: 5 feature
	// groups with one element per direction
	NumObservations = 20
)

// Features holds one value per direction, indexed by world.Direction
type Features [4]float64

// State is the per-episode record shared between the Env and the
// Robot. The Env writes Action only. The Robot writes every other
// field.
type State struct {
	Action int     // Last action chosen
	Reward float64 // Reward of the last tick
	Done   bool

	Danger  Features
	CoinDir Features // Direction of the tracked coin
	BankDir Features // Direction of the tracked bank
	CoinAdj Features // Tracked coin is adjacent
	BankAdj Features // Tracked bank is adjacent

	ClosestCoin *world.Coord
	ClosestBank *world.Coord

	Consumed  int // Coins consumed this episode
	Deposited int // Coins deposited this episode
}

// NewState returns the state at the start of an episode
func NewState() *State {
	return &State{Action: -1}
}

// Observation builds the observation of the state:
//
//	danger ++ coinDir ++ bankDir ++ coinAdj ++ bankAdj
func (s *State) Observation() *mat.VecDense {
	obs := make([]float64, 0, NumObservations)
	for _, group := range []Features{s.Danger, s.CoinDir, s.BankDir,
		s.CoinAdj, s.BankAdj} {
		obs = append(obs, group[:]...)
	}
	return mat.NewVecDense(NumObservations, obs)
}

// Copy returns a deep copy of the state
func (s *State) Copy() State {
	c := *s
	if s.ClosestCoin != nil {
		coin := *s.ClosestCoin
		c.ClosestCoin = &coin
	}
	if s.ClosestBank != nil {
		bank := *s.ClosestBank
		c.ClosestBank = &bank
	}
	return c
}

func (s *State) String() string {
	return fmt.Sprintf("State{Action: %v, Reward: %.4f, Done: %v, "+
		"Danger: %v, CoinDir: %v, CoinAdj: %v, BankDir: %v, BankAdj: %v}",
		s.Action, s.Reward, s.Done, s.Danger, s.CoinDir, s.CoinAdj,
		s.BankDir, s.BankAdj)
}

// adjacentToGoal returns whether any adjacency bit is set
func (s *State) adjacentToGoal() bool {
	for i := range s.CoinAdj {
		if s.CoinAdj[i] != 0 || s.BankAdj[i] != 0 {
			return true
		}
	}
	return false
}
