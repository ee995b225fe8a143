package robot

import (
	"errors"
	"math"
	"testing"

	"github.com/samuelfneumann/robogym/environment/world"
)

func TestSaturatingRewardIsNegativeAndIncreasing(t *testing.T) {
	for _, s := range []Saturating{DefaultConfig().Rewards.Coins,
		DefaultConfig().Rewards.Scan} {
		prev := math.Inf(-1)
		for n := 1; n <= 100; n++ {
			r := s.Reward(n)
			if math.IsNaN(r) || math.IsInf(r, 0) || r >= 0 {
				t.Fatalf("%+v: f(%v) = %v", s, n, r)
			}
			if r <= prev {
				t.Fatalf("%+v: f(%v) = %v not above f(%v) = %v", s, n, r,
					n-1, prev)
			}
			prev = r
		}
	}
}

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		action int
		verb   Verb
		dir    world.Direction
	}{
		{0, Move, world.Up},
		{5, Consume, world.Right},
		{10, Deposit, world.Down},
		{13, Scan, world.Right},
		{15, Scan, world.Left},
	}
	for _, test := range tests {
		verb, dir, err := DecodeAction(test.action)
		if err != nil {
			t.Fatal(err)
		}
		if verb != test.verb || dir != test.dir {
			t.Errorf("decode(%v): want (%v, %v) have (%v, %v)", test.action,
				test.verb, test.dir, verb, dir)
		}
		if EncodeAction(verb, dir) != test.action {
			t.Errorf("encode(%v, %v) != %v", verb, dir, test.action)
		}
	}

	for _, action := range []int{-1, NumActions} {
		if _, _, err := DecodeAction(action); err == nil {
			t.Errorf("decode(%v) succeeded", action)
		}
	}
}

func grass() world.Tile { return world.Tile{Type: world.Grass} }

func coin(n int) world.Tile {
	return world.Tile{Type: world.Grass, Content: world.Coin, Amount: n}
}

func bank(n int) world.Tile {
	return world.Tile{Type: world.Grass, Content: world.Bank, Amount: n}
}

func newSim(t *testing.T, tiles [][]world.Tile, start world.Coord,
	energy int) *world.Simulation {
	t.Helper()
	s := &world.Scenario{
		Tiles:    tiles,
		Start:    start,
		Energy:   energy,
		Capacity: 100,
	}
	grid, err := s.NewGrid()
	if err != nil {
		t.Fatal(err)
	}
	return world.NewSimulation(grid)
}

// tick sets the action of the state and runs a single tick
func tick(t *testing.T, sim *world.Simulation, r *Robot, s *State,
	action int) {
	t.Helper()
	s.Action = action
	if err := sim.Tick(r); err != nil {
		t.Fatal(err)
	}
}

func TestDangerAllOutOfBounds(t *testing.T) {
	sim := newSim(t, [][]world.Tile{{grass()}}, world.Coord{}, 10)
	state := NewState()
	r := New(state, DefaultConfig())

	if err := sim.Tick(r); err != nil {
		t.Fatal(err)
	}
	if want := (Features{1, 1, 1, 1}); state.Danger != want {
		t.Errorf("danger: want %v have %v", want, state.Danger)
	}
}

func TestDangerTerrainAndEnergy(t *testing.T) {
	tiles := [][]world.Tile{
		{grass(), {Type: world.Lava}, grass()},
		{{Type: world.Mountain, Elevation: 1}, grass(), grass()},
		{grass(), {Type: world.Sand}, grass()},
	}
	// Left costs 6+1, Down costs 2, Right costs 1
	sim := newSim(t, tiles, world.Coord{Row: 1, Col: 1}, 5)
	state := NewState()
	r := New(state, DefaultConfig())

	if err := sim.Tick(r); err != nil {
		t.Fatal(err)
	}
	if want := (Features{1, 0, 0, 1}); state.Danger != want {
		t.Errorf("danger: want %v have %v", want, state.Danger)
	}
}

func TestConsumeUntilTarget(t *testing.T) {
	tiles := [][]world.Tile{
		{grass(), coin(1), grass()},
		{grass(), grass(), coin(1)},
		{grass(), coin(1), grass()},
	}
	sim := newSim(t, tiles, world.Coord{Row: 1, Col: 1}, 100)
	c := DefaultConfig()
	c.ConsumedTarget = 3
	c.DepositedTarget = 0
	state := NewState()
	r := New(state, c)

	if err := sim.Tick(r); err != nil {
		t.Fatal(err)
	}
	if state.CoinAdj == (Features{}) {
		t.Fatal("no coin adjacent after setup")
	}

	for i, dir := range []world.Direction{world.Up, world.Right} {
		tick(t, sim, r, state, EncodeAction(Consume, dir))
		if want := c.Rewards.Coins.Reward(1); state.Reward != want {
			t.Errorf("consume %v: want reward %v have %v", i, want,
				state.Reward)
		}
		if state.Done {
			t.Fatalf("done after %v coins", i+1)
		}
	}

	tick(t, sim, r, state, EncodeAction(Consume, world.Down))
	if !state.Done || state.Reward != 0 {
		t.Errorf("final consume: done %v reward %v", state.Done, state.Reward)
	}
	if state.Consumed != 3 {
		t.Errorf("consumed %v coins", state.Consumed)
	}
}

func TestDepositRewards(t *testing.T) {
	tiles := [][]world.Tile{
		{grass(), coin(4), grass()},
		{grass(), grass(), bank(10)},
	}
	sim := newSim(t, tiles, world.Coord{Row: 1, Col: 1}, 100)
	state := NewState()
	c := DefaultConfig()
	r := New(state, c)
	if err := sim.Tick(r); err != nil {
		t.Fatal(err)
	}

	// Nothing held yet
	tick(t, sim, r, state, EncodeAction(Deposit, world.Right))
	if state.Reward != c.Rewards.Illegal {
		t.Errorf("empty deposit: reward %v", state.Reward)
	}

	tick(t, sim, r, state, EncodeAction(Consume, world.Up))
	tick(t, sim, r, state, EncodeAction(Deposit, world.Right))
	if want := c.Rewards.Coins.Reward(4); state.Reward != want {
		t.Errorf("deposit: want %v have %v", want, state.Reward)
	}
	if state.Deposited != 4 {
		t.Errorf("deposited %v", state.Deposited)
	}
}

func TestMoveRewardAndRule(t *testing.T) {
	tiles := [][]world.Tile{
		{grass(), {Type: world.Sand}, grass()},
		{coin(1), grass(), grass()},
	}
	c := DefaultConfig()

	sim := newSim(t, tiles, world.Coord{Row: 1, Col: 1}, 100)
	state := NewState()
	r := New(state, c)
	if err := sim.Tick(r); err != nil {
		t.Fatal(err)
	}
	tick(t, sim, r, state, EncodeAction(Move, world.Up))
	if want := c.Rewards.BaseMove - float64(world.Sand.Cost()); state.Reward != want {
		t.Errorf("move: want %v have %v", want, state.Reward)
	}

	// The coin is adjacent to the start, so moving is forbidden
	c.ForbidMoveAdjacentToGoal = true
	sim = newSim(t, tiles, world.Coord{Row: 1, Col: 1}, 100)
	state = NewState()
	r = New(state, c)
	if err := sim.Tick(r); err != nil {
		t.Fatal(err)
	}
	tick(t, sim, r, state, EncodeAction(Move, world.Up))
	if state.Reward != c.Rewards.Illegal {
		t.Errorf("move next to a coin: reward %v", state.Reward)
	}
	if pos := sim.Grid().Position(); pos != (world.Coord{Row: 1, Col: 1}) {
		t.Errorf("forbidden move changed position to %v", pos)
	}
}

func TestScanRewards(t *testing.T) {
	tiles := make([][]world.Tile, 6)
	for i := range tiles {
		tiles[i] = []world.Tile{grass(), grass(), grass()}
	}
	tiles[0][1] = coin(1)
	tiles[5][0] = bank(3)
	c := DefaultConfig()

	// Energy 300 scans floor(100 · 0.04) = 4 tiles
	sim := newSim(t, tiles, world.Coord{Row: 4, Col: 1}, 300)
	state := NewState()
	r := New(state, c)
	if err := sim.Tick(r); err != nil {
		t.Fatal(err)
	}
	if state.ClosestBank == nil {
		t.Fatal("bank in view not tracked after setup")
	}

	tick(t, sim, r, state, EncodeAction(Scan, world.Up))
	if want := c.Rewards.Scan.Reward(1); state.Reward != want {
		t.Errorf("scan: want %v have %v", want, state.Reward)
	}
	if state.ClosestCoin == nil ||
		*state.ClosestCoin != (world.Coord{Row: 0, Col: 1}) {
		t.Errorf("closest coin: %v", state.ClosestCoin)
	}
	if state.CoinDir != (Features{1, 0, 0, 0}) {
		t.Errorf("coin direction: %v", state.CoinDir)
	}

	// Everything up there is known now
	tick(t, sim, r, state, EncodeAction(Scan, world.Up))
	if state.Reward != c.Rewards.NothingFound {
		t.Errorf("repeated scan: reward %v", state.Reward)
	}
}

func TestScanTooShort(t *testing.T) {
	tiles := [][]world.Tile{{grass(), grass()}}
	sim := newSim(t, tiles, world.Coord{}, 30)
	state := NewState()
	c := DefaultConfig()
	r := New(state, c)
	if err := sim.Tick(r); err != nil {
		t.Fatal(err)
	}

	before := state.Copy()
	tick(t, sim, r, state, EncodeAction(Scan, world.Right))
	if state.Reward != c.Rewards.Illegal {
		t.Errorf("short scan: reward %v", state.Reward)
	}
	if state.Danger != before.Danger || sim.Grid().Energy() != 30 {
		t.Error("short scan changed the world or the features")
	}
}

// failingWorld fails every move with an error that is not an illegal
// action
type failingWorld struct {
	world.World
}

var errBroken = errors.New("broken world")

func (failingWorld) Move(world.Direction) (world.Tile, error) {
	return world.Tile{}, errBroken
}

func TestCollaboratorFailurePropagates(t *testing.T) {
	sim := newSim(t, [][]world.Tile{{grass(), grass()}}, world.Coord{}, 10)
	state := NewState()
	r := New(state, DefaultConfig())
	if err := r.ProcessTick(sim.Grid()); err != nil {
		t.Fatal(err)
	}

	state.Action = EncodeAction(Move, world.Right)
	if err := r.ProcessTick(failingWorld{sim.Grid()}); !errors.Is(err,
		errBroken) {
		t.Errorf("want broken world error have %v", err)
	}
}
