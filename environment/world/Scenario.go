package world

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Scenario is a serialisable description of a world: its map and the
// robot's starting conditions.
type Scenario struct {
	Tiles    [][]Tile
	Start    Coord
	Energy   int // Starting energy
	Recharge int // Energy gained every tick
	Capacity int // Number of coins the backpack holds
}

// Validate returns an error if a Grid cannot be built from the Scenario
func (s *Scenario) Validate() error {
	if s.Energy < 0 || s.Energy > MaxEnergy {
		return fmt.Errorf("validate: energy must be in [0, %v], have %v",
			MaxEnergy, s.Energy)
	}
	if s.Recharge < 0 {
		return fmt.Errorf("validate: recharge must be non-negative, have %v",
			s.Recharge)
	}
	if s.Capacity < 1 {
		return fmt.Errorf("validate: capacity must be positive, have %v",
			s.Capacity)
	}
	_, err := s.NewGrid()
	return err
}

// NewGrid returns a fresh Grid described by the Scenario. The Grid
// owns a copy of the map, so the Scenario can be reused.
func (s *Scenario) NewGrid() (*Grid, error) {
	g, err := newGrid(s.Tiles, s.Start, s.Energy, s.Recharge, s.Capacity)
	if err != nil {
		return nil, fmt.Errorf("newGrid: %w", err)
	}
	if tile := s.Tiles[s.Start.Row][s.Start.Col]; tile.Content != None {
		return nil, fmt.Errorf("newGrid: start %v holds a %v", s.Start,
			tile.Content)
	}
	return g, nil
}

// Save writes the Scenario to a file at path
func (s *Scenario) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: could not create file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(s); err != nil {
		return fmt.Errorf("save: could not encode scenario: %w", err)
	}
	return file.Close()
}

// LoadScenario reads a Scenario from a file at path
func LoadScenario(path string) (*Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loadScenario: could not open file: %w", err)
	}
	defer file.Close()

	s := &Scenario{}
	if err := gob.NewDecoder(file).Decode(s); err != nil {
		return nil, fmt.Errorf("loadScenario: could not decode %v: %w", path,
			err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("loadScenario: %w", err)
	}
	return s, nil
}
