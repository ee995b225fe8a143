package robot

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/robogym/environment/world"
)

type phase int

const (
	setup phase = iota
	running
)

// Robot is the state machine that acts in a world.Simulation on behalf
// of an agent. On its first tick the Robot only observes its
// surroundings. On every later tick it performs the action stored in
// its State and stores the resulting reward.
type Robot struct {
	state  *State
	config Config
	phase  phase
}

// New returns a Robot in the setup phase that reads and writes state
func New(state *State, c Config) *Robot {
	return &Robot{state: state, config: c, phase: setup}
}

// ProcessTick implements the world.Runnable interface. Illegal actions
// are absorbed into the reward. Any other error of the world is
// returned.
func (r *Robot) ProcessTick(w world.World) error {
	if r.phase == setup {
		r.refresh(w)
		r.phase = running
		return nil
	}

	verb, dir, err := DecodeAction(r.state.Action)
	if err != nil {
		return fmt.Errorf("processTick: %w", err)
	}

	var reward float64
	switch verb {
	case Move:
		reward, err = r.move(w, dir)
	case Consume:
		reward, err = r.consume(w, dir)
	case Deposit:
		reward, err = r.deposit(w, dir)
	case Scan:
		reward, err = r.scan(w, dir)
	default:
		panic(fmt.Sprintf("processTick: unknown verb %v", verb))
	}
	if err != nil {
		return fmt.Errorf("processTick: %v: %w", verb, err)
	}

	r.state.Reward = reward
	return nil
}

// illegal returns the illegal action penalty if err is an illegal
// action and returns err otherwise.
func (r *Robot) illegal(err error) (float64, error) {
	if world.IsActionError(err) {
		return r.config.Rewards.Illegal, nil
	}
	return 0, err
}

func (r *Robot) move(w world.World, dir world.Direction) (float64, error) {
	if r.config.ForbidMoveAdjacentToGoal && r.state.adjacentToGoal() {
		return r.config.Rewards.Illegal, nil
	}

	tile, err := w.Move(dir)
	if err != nil {
		return r.illegal(err)
	}

	r.refresh(w)
	return r.config.Rewards.BaseMove - float64(tile.Type.Cost()), nil
}

func (r *Robot) consume(w world.World, dir world.Direction) (float64,
	error) {
	amount, err := w.Consume(dir)
	if err != nil {
		return r.illegal(err)
	}
	return r.transacted(w, amount, &r.state.Consumed,
		r.config.ConsumedTarget), nil
}

func (r *Robot) deposit(w world.World, dir world.Direction) (float64,
	error) {
	amount, err := w.Deposit(dir, w.Held(world.Coin))
	if err != nil {
		return r.illegal(err)
	}
	return r.transacted(w, amount, &r.state.Deposited,
		r.config.DepositedTarget), nil
}

// transacted adds amount to counter and returns the reward of a
// consume or deposit. Reaching target ends the episode.
func (r *Robot) transacted(w world.World, amount int, counter *int,
	target int) float64 {
	if amount == 0 {
		return r.config.Rewards.Illegal
	}

	r.refresh(w)
	*counter += amount
	if target > 0 && *counter >= target {
		r.state.Done = true
		return 0
	}
	return r.config.Rewards.Coins.Reward(amount)
}

func (r *Robot) scan(w world.World, dir world.Direction) (float64, error) {
	distance := int(math.Floor(float64(w.Energy()) / 3 *
		r.config.ScanEnergyFraction))
	if distance < r.config.MinScanDistance {
		return r.config.Rewards.Illegal, nil
	}

	knownCoins := coordSet(w.Known(world.Coin))
	knownBanks := coordSet(w.Known(world.Bank))

	tiles, err := w.Scan(dir, distance)
	if err != nil {
		return r.illegal(err)
	}

	found := 0
	for _, t := range tiles {
		if t.Holds(world.Coin) && !knownCoins[t.Coord] {
			found++
		}
		if t.Holds(world.Bank) && !knownBanks[t.Coord] {
			found++
		}
	}

	r.refresh(w)
	if found == 0 {
		return r.config.Rewards.NothingFound, nil
	}
	return r.config.Rewards.Scan.Reward(found), nil
}

func coordSet(coords []world.Coord) map[world.Coord]bool {
	set := make(map[world.Coord]bool, len(coords))
	for _, c := range coords {
		set[c] = true
	}
	return set
}

// refresh recomputes every feature of the state from the world
func (r *Robot) refresh(w world.World) {
	r.updateDanger(w)
	r.updateGoals(w)
}

// updateDanger marks each orthogonal neighbour that is out of bounds,
// not walkable, or costs more energy to enter than the robot has.
func (r *Robot) updateDanger(w world.World) {
	view := w.View()
	here := view[1][1]
	energy := w.Energy()

	r.state.Danger = Features{}
	for _, d := range world.Directions {
		dr, dc := d.Offset()
		tile := view[1+dr][1+dc]
		if tile == nil || !tile.Type.Walkable() ||
			energy < world.EnterCost(*here, *tile) {
			r.state.Danger[d] = 1
		}
	}
}

// updateGoals tracks the nearest known coin and bank and sets the
// direction and adjacency features from them.
func (r *Robot) updateGoals(w world.World) {
	pos := w.Position()

	r.state.ClosestCoin = track(w, world.Coin, r.state.ClosestCoin)
	r.state.CoinDir, r.state.CoinAdj = goalFeatures(pos, r.state.ClosestCoin)

	r.state.ClosestBank = track(w, world.Bank, r.state.ClosestBank)
	r.state.BankDir, r.state.BankAdj = goalFeatures(pos, r.state.ClosestBank)
}

// track returns the goal of kind c to track. The nearest known goal
// replaces the tracked one if it is strictly closer or the tracked one
// is gone.
func track(w world.World, c world.Content,
	tracked *world.Coord) *world.Coord {
	if tracked != nil && !coordSet(w.Known(c))[*tracked] {
		tracked = nil
	}

	nearest, ok := w.Nearest(c)
	if !ok {
		return tracked
	}

	pos := w.Position()
	if tracked == nil || nearest.Distance(pos) < tracked.Distance(pos) {
		return &nearest
	}
	return tracked
}

// goalFeatures returns the direction and adjacency features of the
// goal as seen from pos.
func goalFeatures(pos world.Coord, goal *world.Coord) (Features, Features) {
	var dir, adj Features
	if goal == nil {
		return dir, adj
	}

	if goal.Row < pos.Row {
		dir[world.Up] = 1
	} else if goal.Row > pos.Row {
		dir[world.Down] = 1
	}
	if goal.Col < pos.Col {
		dir[world.Left] = 1
	} else if goal.Col > pos.Col {
		dir[world.Right] = 1
	}

	if pos.Manhattan(*goal) == 1 {
		for _, d := range world.Directions {
			if pos.Step(d) == *goal {
				adj[d] = 1
			}
		}
	}
	return dir, adj
}
