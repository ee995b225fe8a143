// Package world implements a tick-driven grid simulation that a robot
// acts in. The world tracks terrain, the robot's position, energy and
// backpack, and which tiles the robot has discovered.
package world

import "fmt"

// TileType is the terrain of a tile
type TileType int

const (
	Grass TileType = iota
	Street
	Sand
	Hill
	Mountain
	ShallowWater
	DeepWater
	Lava
	Wall
)

// Walkable returns whether a robot can enter a tile of type t
func (t TileType) Walkable() bool {
	switch t {
	case DeepWater, Lava, Wall:
		return false
	default:
		return true
	}
}

// Cost returns the base energy cost of entering a tile of type t
func (t TileType) Cost() int {
	switch t {
	case Grass:
		return 1
	case Street:
		return 0
	case Sand:
		return 2
	case Hill:
		return 3
	case Mountain:
		return 6
	case ShallowWater:
		return 2
	default:
		return 0
	}
}

func (t TileType) String() string {
	switch t {
	case Grass:
		return "Grass"
	case Street:
		return "Street"
	case Sand:
		return "Sand"
	case Hill:
		return "Hill"
	case Mountain:
		return "Mountain"
	case ShallowWater:
		return "ShallowWater"
	case DeepWater:
		return "DeepWater"
	case Lava:
		return "Lava"
	case Wall:
		return "Wall"
	default:
		return fmt.Sprintf("TileType(%d)", int(t))
	}
}

// Content is an object that may lie on a tile
type Content int

const (
	None Content = iota
	Coin         // Amount is the number of coins on the tile
	Bank         // Amount is the number of coins the bank can still take
)

func (c Content) String() string {
	switch c {
	case None:
		return "None"
	case Coin:
		return "Coin"
	case Bank:
		return "Bank"
	default:
		return fmt.Sprintf("Content(%d)", int(c))
	}
}

// Tile is a single cell of the world
type Tile struct {
	Type      TileType
	Elevation int
	Content   Content
	Amount    int
}

// Holds returns whether the tile currently holds an object of kind c.
// Emptied coin tiles and full banks hold nothing.
func (t Tile) Holds(c Content) bool {
	return c != None && t.Content == c && t.Amount > 0
}

// EnterCost returns the energy needed to move from a tile onto to.
// Climbing costs the square of the elevation gained.
func EnterCost(from, to Tile) int {
	cost := to.Type.Cost()
	if gain := to.Elevation - from.Elevation; gain > 0 {
		cost += gain * gain
	}
	return cost
}
