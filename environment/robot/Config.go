package robot

import (
	"fmt"
	"math"
)

// Saturating is the reward for transacting n objects:
//
//	f(n) = (log_B(C·n + 1) + L·n) / -n
//
// f is negative for every n ≥ 1 and approaches -L from below as n
// grows, so larger transactions are more rewarding.
type Saturating struct {
	C float64
	B float64 // Base of the logarithm
	L float64
}

// Reward returns f(n). It panics if n is not positive.
func (s Saturating) Reward(n int) float64 {
	if n < 1 {
		panic(fmt.Sprintf("reward: n must be positive, have %v", n))
	}
	x := float64(n)
	return (math.Log(s.C*x+1)/math.Log(s.B) + s.L*x) / -x
}

// Validate checks that f is finite and negative
func (s Saturating) Validate() error {
	if s.C <= 0 || s.L <= 0 || s.B <= 1 {
		return fmt.Errorf("validate: need C > 0, L > 0 and B > 1, have "+
			"%+v", s)
	}
	return nil
}

// Rewards configures the rewards of each outcome of an action
type Rewards struct {
	Illegal      float64 // Illegal actions
	NothingFound float64 // Scans that discover nothing
	BaseMove     float64 // Moves, minus the cost of the entered tile

	Coins Saturating // Consumes and deposits
	Scan  Saturating // Scans that discover objects
}

// Config configures the task of the robot
type Config struct {
	Rewards Rewards

	// Episodes end once this many coins are consumed or deposited. A
	// target of 0 never ends an episode.
	ConsumedTarget  int
	DepositedTarget int

	// Scans reach floor(energy / 3 · ScanEnergyFraction) tiles and
	// are illegal below MinScanDistance
	ScanEnergyFraction float64
	MinScanDistance    int

	// ForbidMoveAdjacentToGoal makes moving illegal while a tracked
	// coin or bank is adjacent
	ForbidMoveAdjacentToGoal bool
}

// DefaultConfig returns the default task
func DefaultConfig() Config {
	return Config{
		Rewards: Rewards{
			Illegal:      -1000,
			NothingFound: -900,
			BaseMove:     -10,
			Coins:        Saturating{C: 8, B: 2, L: 2},
			Scan:         Saturating{C: 4, B: 1.5, L: 3},
		},
		ConsumedTarget:     60,
		DepositedTarget:    50,
		ScanEnergyFraction: 0.04,
		MinScanDistance:    2,
	}
}

// Validate checks a Config for errors
func (c Config) Validate() error {
	if err := c.Rewards.Coins.Validate(); err != nil {
		return fmt.Errorf("validate: coin reward: %w", err)
	}
	if err := c.Rewards.Scan.Validate(); err != nil {
		return fmt.Errorf("validate: scan reward: %w", err)
	}
	if c.ConsumedTarget < 0 || c.DepositedTarget < 0 {
		return fmt.Errorf("validate: targets must be non-negative, have "+
			"(%v, %v)", c.ConsumedTarget, c.DepositedTarget)
	}
	if c.ScanEnergyFraction <= 0 || c.ScanEnergyFraction > 1 {
		return fmt.Errorf("validate: scan energy fraction must be in "+
			"(0, 1], have %v", c.ScanEnergyFraction)
	}
	if c.MinScanDistance < 1 {
		return fmt.Errorf("validate: minimum scan distance must be "+
			"positive, have %v", c.MinScanDistance)
	}
	return nil
}
