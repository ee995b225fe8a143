package world

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Generator creates a fresh Simulation at the start of each episode
type Generator interface {
	Generate() (*Simulation, error)
}

// scenarioGenerator replays the same Scenario every episode
type scenarioGenerator struct {
	scenario *Scenario
}

// FromScenario returns a Generator that creates every Simulation from
// a fresh copy of s.
func FromScenario(s *Scenario) (Generator, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("fromScenario: %w", err)
	}
	return scenarioGenerator{s}, nil
}

// Generate implements the Generator interface
func (s scenarioGenerator) Generate() (*Simulation, error) {
	grid, err := s.scenario.NewGrid()
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return NewSimulation(grid), nil
}

// randomGenerator creates a new random Scenario every episode
type randomGenerator struct {
	config GenConfig
	rng    *rand.Rand
}

// Random returns a Generator that creates a new random map for every
// Simulation.
func Random(c GenConfig, seed uint64) (Generator, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("random: %w", err)
	}
	return &randomGenerator{c, rand.New(rand.NewSource(seed))}, nil
}

// Generate implements the Generator interface
func (r *randomGenerator) Generate() (*Simulation, error) {
	s, err := Generate(r.rng, r.config)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	grid, err := s.NewGrid()
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return NewSimulation(grid), nil
}

// GenConfig describes randomly generated maps
type GenConfig struct {
	Rows, Cols   int
	MaxElevation int

	// Fraction of tiles of each type, tiles not covered by any
	// fraction are Grass.
	Terrain map[TileType]float64

	CoinDensity  float64 // Probability a walkable tile holds coins
	MaxCoins     int     // Coins per coin tile are drawn from [1, MaxCoins]
	BankDensity  float64 // Probability a walkable tile holds a bank
	BankCapacity int

	Energy   int
	Recharge int
	Capacity int
}

// DefaultGenConfig returns a GenConfig for small mixed-terrain maps
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Rows:         20,
		Cols:         20,
		MaxElevation: 3,
		Terrain: map[TileType]float64{
			Street:       0.15,
			Sand:         0.1,
			Hill:         0.1,
			Mountain:     0.05,
			ShallowWater: 0.05,
			DeepWater:    0.05,
			Lava:         0.02,
		},
		CoinDensity:  0.05,
		MaxCoins:     5,
		BankDensity:  0.02,
		BankCapacity: 20,
		Energy:       MaxEnergy,
		Recharge:     10,
		Capacity:     20,
	}
}

// Validate checks a GenConfig for errors
func (c GenConfig) Validate() error {
	if c.Rows < 3 || c.Cols < 3 {
		return fmt.Errorf("validate: maps must be at least 3×3, have %v×%v",
			c.Rows, c.Cols)
	}
	if c.MaxElevation < 0 {
		return fmt.Errorf("validate: negative maximum elevation %v",
			c.MaxElevation)
	}

	total := 0.0
	for t, frac := range c.Terrain {
		if frac < 0 {
			return fmt.Errorf("validate: negative fraction for %v", t)
		}
		total += frac
	}
	if total > 1 {
		return fmt.Errorf("validate: terrain fractions sum to %v > 1", total)
	}

	if c.CoinDensity < 0 || c.BankDensity < 0 ||
		c.CoinDensity+c.BankDensity > 1 {
		return fmt.Errorf("validate: invalid coin (%v) and bank (%v) "+
			"densities", c.CoinDensity, c.BankDensity)
	}
	if c.CoinDensity > 0 && c.MaxCoins < 1 {
		return fmt.Errorf("validate: maximum coins must be positive")
	}
	if c.BankDensity > 0 && c.BankCapacity < 1 {
		return fmt.Errorf("validate: bank capacity must be positive")
	}

	if c.Energy < 0 || c.Energy > MaxEnergy || c.Recharge < 0 ||
		c.Capacity < 1 {
		return fmt.Errorf("validate: invalid robot energy (%v), recharge "+
			"(%v) or capacity (%v)", c.Energy, c.Recharge, c.Capacity)
	}
	return nil
}

// Generate creates a random Scenario. The robot starts on a random
// walkable tile without content.
func Generate(rng *rand.Rand, c GenConfig) (*Scenario, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	// Iterate terrain types in a fixed order so that maps are
	// reproducible for a seed
	types := make([]TileType, 0, len(c.Terrain))
	for t := Grass; t <= Wall; t++ {
		if _, ok := c.Terrain[t]; ok {
			types = append(types, t)
		}
	}

	tiles := make([][]Tile, c.Rows)
	var free []Coord
	for i := range tiles {
		tiles[i] = make([]Tile, c.Cols)
		for j := range tiles[i] {
			tile := Tile{
				Type:      sampleTerrain(rng, types, c.Terrain),
				Elevation: rng.Intn(c.MaxElevation + 1),
			}

			if tile.Type.Walkable() {
				switch u := rng.Float64(); {
				case u < c.CoinDensity:
					tile.Content = Coin
					tile.Amount = 1 + rng.Intn(c.MaxCoins)
				case u < c.CoinDensity+c.BankDensity:
					tile.Content = Bank
					tile.Amount = c.BankCapacity
				default:
					free = append(free, Coord{i, j})
				}
			}
			tiles[i][j] = tile
		}
	}

	if len(free) == 0 {
		return nil, fmt.Errorf("generate: no free walkable tile to start on")
	}

	return &Scenario{
		Tiles:    tiles,
		Start:    free[rng.Intn(len(free))],
		Energy:   c.Energy,
		Recharge: c.Recharge,
		Capacity: c.Capacity,
	}, nil
}

func sampleTerrain(rng *rand.Rand, types []TileType,
	fractions map[TileType]float64) TileType {
	u := rng.Float64()
	for _, t := range types {
		if u < fractions[t] {
			return t
		}
		u -= fractions[t]
	}
	return Grass
}
