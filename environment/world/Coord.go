package world

import (
	"fmt"
	"math"
)

// Direction is one of the four compass directions. The values index
// the feature groups of the robot's observation.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Directions lists every Direction in index order
var Directions = [...]Direction{Up, Right, Down, Left}

// Offset returns the row and column change of one step in direction d
func (d Direction) Offset() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	default:
		panic(fmt.Sprintf("offset: invalid direction %d", int(d)))
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Right:
		return "Right"
	case Down:
		return "Down"
	case Left:
		return "Left"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Coord is a position in the world
type Coord struct {
	Row, Col int
}

// Step returns the coordinate one step away in direction d
func (c Coord) Step(d Direction) Coord {
	dr, dc := d.Offset()
	return Coord{c.Row + dr, c.Col + dc}
}

// Distance returns the Euclidean distance between two coordinates
func (c Coord) Distance(o Coord) float64 {
	return math.Hypot(float64(c.Row-o.Row), float64(c.Col-o.Col))
}

// Manhattan returns the Manhattan distance between two coordinates
func (c Coord) Manhattan(o Coord) int {
	return abs(c.Row-o.Row) + abs(c.Col-o.Col)
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row, c.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
