package robot

import (
	"errors"
	"testing"

	"github.com/samuelfneumann/robogym/environment/world"
	"gonum.org/v1/gonum/mat"
)

func newTestEnv(t *testing.T, c Config) *Env {
	t.Helper()
	s := &world.Scenario{
		Tiles: [][]world.Tile{
			{grass(), coin(1), grass(), bank(5)},
			{grass(), grass(), grass(), grass()},
		},
		Start:    world.Coord{Row: 0, Col: 0},
		Energy:   100,
		Recharge: 1,
		Capacity: 10,
	}
	gen, err := world.FromScenario(s)
	if err != nil {
		t.Fatal(err)
	}

	e, first, err := NewEnv(gen, c)
	if err != nil {
		t.Fatal(err)
	}
	if !first.First() || first.Observation.Len() != NumObservations {
		t.Fatalf("first timestep: %v", first)
	}
	return e
}

func TestResetThenIllegalStep(t *testing.T) {
	e := newTestEnv(t, DefaultConfig())
	c := DefaultConfig()

	reset, err := e.Reset()
	if err != nil {
		t.Fatal(err)
	}

	// Up is out of bounds
	step, done, err := e.Step(EncodeAction(Move, world.Up))
	if err != nil {
		t.Fatal(err)
	}
	if step.Reward != c.Rewards.Illegal || done {
		t.Errorf("illegal step: reward %v done %v", step.Reward, done)
	}

	// Direction and adjacency features follow the danger group
	want := reset.Observation.SliceVec(4, NumObservations)
	have := step.Observation.SliceVec(4, NumObservations)
	if !mat.Equal(want, have) {
		t.Errorf("goal features changed:\n\twant(%v)\n\thave(%v)",
			mat.Formatted(want.T()), mat.Formatted(have.T()))
	}
}

func TestObservationLayout(t *testing.T) {
	e := newTestEnv(t, DefaultConfig())
	s := e.State()
	obs := s.Observation()

	// Coin to the right and adjacent, up and left are out of bounds
	wantDanger := []float64{1, 0, 0, 1}
	wantCoinDir := []float64{0, 1, 0, 0}
	wantCoinAdj := []float64{0, 1, 0, 0}
	for i := 0; i < 4; i++ {
		if obs.AtVec(i) != wantDanger[i] {
			t.Errorf("danger[%v] = %v", i, obs.AtVec(i))
		}
		if obs.AtVec(4+i) != wantCoinDir[i] {
			t.Errorf("coinDir[%v] = %v", i, obs.AtVec(4+i))
		}
		if obs.AtVec(12+i) != wantCoinAdj[i] {
			t.Errorf("coinAdj[%v] = %v", i, obs.AtVec(12+i))
		}
	}

	// The bank is not discovered yet
	for i := 8; i < 12; i++ {
		if obs.AtVec(i) != 0 {
			t.Errorf("bankDir[%v] = %v", i-8, obs.AtVec(i))
		}
	}
}

func TestStepEndsEpisodeOnTarget(t *testing.T) {
	c := DefaultConfig()
	c.ConsumedTarget = 1
	e := newTestEnv(t, c)

	step, done, err := e.Step(EncodeAction(Consume, world.Right))
	if err != nil {
		t.Fatal(err)
	}
	if !done || !step.Last() || step.Reward != 0 || step.Number != 1 {
		t.Errorf("terminal step: %v done %v", step, done)
	}

	// A reset starts from a fresh map
	if _, err := e.Reset(); err != nil {
		t.Fatal(err)
	}
	if s := e.State(); s.Done || s.Consumed != 0 {
		t.Errorf("state after reset: %v", &s)
	}
	if tile, _ := e.Simulation().Grid().At(world.Coord{Row: 0, Col: 1}); tile.Amount != 1 {
		t.Error("coin missing after reset")
	}
}

func TestStepInvalidAction(t *testing.T) {
	e := newTestEnv(t, DefaultConfig())
	if _, _, err := e.Step(NumActions); err == nil {
		t.Error("out of range action accepted")
	}
}

type failingGenerator struct{}

var errNoMap = errors.New("no map")

func (failingGenerator) Generate() (*world.Simulation, error) {
	return nil, errNoMap
}

func TestGeneratorFailurePropagates(t *testing.T) {
	if _, _, err := NewEnv(failingGenerator{}, DefaultConfig()); !errors.Is(
		err, errNoMap) {
		t.Errorf("want generator error have %v", err)
	}
}

func TestSpecs(t *testing.T) {
	e := newTestEnv(t, DefaultConfig())
	if n := e.ObservationSpec().Shape.Len(); n != NumObservations {
		t.Errorf("observation spec has %v features", n)
	}
	if max := e.ActionSpec().UpperBound.AtVec(0); max != NumActions-1 {
		t.Errorf("action spec upper bound %v", max)
	}
}
