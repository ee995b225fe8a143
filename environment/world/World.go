package world

import (
	"fmt"
	"sort"
)

// Energy costs of the world primitives other than moving
const (
	ConsumeCost     = 3
	DepositCost     = 3
	ScanCostPerTile = 3
	MaxEnergy       = 1000
)

// Located is a tile together with its position
type Located struct {
	Coord
	Tile
}

// World is the view of the simulation that a robot acts through
type World interface {
	// Position returns the robot's position
	Position() Coord

	// Energy returns the robot's remaining energy
	Energy() int

	// Held returns how many objects of kind c the robot carries
	Held(c Content) int

	// View returns the 3×3 surroundings of the robot centred on the
	// robot's tile and discovers them. Out of bounds entries are nil.
	View() [3][3]*Tile

	// Move moves the robot one tile in direction d and returns the
	// tile it entered.
	Move(d Direction) (Tile, error)

	// Consume takes as many coins as the backpack fits from the
	// adjacent tile in direction d and returns the amount taken.
	Consume(d Direction) (int, error)

	// Deposit puts up to amount held coins into the adjacent bank in
	// direction d and returns the amount deposited.
	Deposit(d Direction, amount int) (int, error)

	// Scan discovers the rectangle of width 3 extending distance tiles
	// from the robot in direction d and returns its in-bounds tiles.
	Scan(d Direction, distance int) ([]Located, error)

	// Known returns the positions of discovered tiles holding kind c
	Known(c Content) []Coord

	// Nearest returns the discovered tile holding kind c closest to
	// the robot, if any.
	Nearest(c Content) (Coord, bool)
}

// Grid is the concrete World of a Simulation
type Grid struct {
	tiles [][]Tile
	known [][]bool

	pos       Coord
	energy    int
	recharge  int
	capacity  int
	backpack  map[Content]int
	maxEnergy int
}

// newGrid creates a grid over a copy of tiles
func newGrid(tiles [][]Tile, start Coord, energy, recharge,
	capacity int) (*Grid, error) {
	if len(tiles) == 0 || len(tiles[0]) == 0 {
		return nil, fmt.Errorf("newGrid: empty map")
	}

	cols := len(tiles[0])
	g := &Grid{
		tiles:     make([][]Tile, len(tiles)),
		known:     make([][]bool, len(tiles)),
		pos:       start,
		energy:    energy,
		recharge:  recharge,
		capacity:  capacity,
		backpack:  make(map[Content]int),
		maxEnergy: MaxEnergy,
	}
	for i, row := range tiles {
		if len(row) != cols {
			return nil, fmt.Errorf("newGrid: row %v has %v columns, want %v",
				i, len(row), cols)
		}
		g.tiles[i] = append([]Tile{}, row...)
		g.known[i] = make([]bool, cols)
	}

	if !g.inBounds(start) {
		return nil, fmt.Errorf("newGrid: start %v out of bounds", start)
	}
	if !g.tiles[start.Row][start.Col].Type.Walkable() {
		return nil, fmt.Errorf("newGrid: start %v is not walkable", start)
	}
	g.known[start.Row][start.Col] = true

	return g, nil
}

// Rows returns the number of rows in the grid
func (g *Grid) Rows() int { return len(g.tiles) }

// Cols returns the number of columns in the grid
func (g *Grid) Cols() int { return len(g.tiles[0]) }

// At returns the tile at c regardless of whether it was discovered
func (g *Grid) At(c Coord) (Tile, bool) {
	if !g.inBounds(c) {
		return Tile{}, false
	}
	return g.tiles[c.Row][c.Col], true
}

// Position implements the World interface
func (g *Grid) Position() Coord { return g.pos }

// Energy implements the World interface
func (g *Grid) Energy() int { return g.energy }

// Held implements the World interface
func (g *Grid) Held(c Content) int { return g.backpack[c] }

// rechargeEnergy adds the per-tick recharge up to the maximum energy
func (g *Grid) rechargeEnergy() {
	g.energy += g.recharge
	if g.energy > g.maxEnergy {
		g.energy = g.maxEnergy
	}
}

func (g *Grid) inBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < len(g.tiles) && c.Col >= 0 &&
		c.Col < len(g.tiles[0])
}

func (g *Grid) discover(c Coord) {
	if g.inBounds(c) {
		g.known[c.Row][c.Col] = true
	}
}

func (g *Grid) spend(op string, cost int) error {
	if g.energy < cost {
		return actionError(op, "need %v energy, have %v", cost, g.energy)
	}
	g.energy -= cost
	return nil
}

// View implements the World interface
func (g *Grid) View() [3][3]*Tile {
	var view [3][3]*Tile
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			c := Coord{g.pos.Row + i, g.pos.Col + j}
			if !g.inBounds(c) {
				continue
			}
			g.discover(c)
			tile := g.tiles[c.Row][c.Col]
			view[i+1][j+1] = &tile
		}
	}
	return view
}

// Move implements the World interface
func (g *Grid) Move(d Direction) (Tile, error) {
	const op = "move"
	next := g.pos.Step(d)
	if !g.inBounds(next) {
		return Tile{}, actionError(op, "%v is out of bounds", next)
	}

	to := g.tiles[next.Row][next.Col]
	if !to.Type.Walkable() {
		return Tile{}, actionError(op, "%v at %v is not walkable", to.Type,
			next)
	}
	if to.Content != None {
		return Tile{}, actionError(op, "%v at %v blocks the way",
			to.Content, next)
	}

	if err := g.spend(op, EnterCost(g.tiles[g.pos.Row][g.pos.Col], to)); err != nil {
		return Tile{}, err
	}
	g.pos = next
	g.View()

	return to, nil
}

// Consume implements the World interface
func (g *Grid) Consume(d Direction) (int, error) {
	const op = "consume"
	target := g.pos.Step(d)
	if !g.inBounds(target) {
		return 0, actionError(op, "%v is out of bounds", target)
	}

	tile := &g.tiles[target.Row][target.Col]
	if tile.Content != Coin {
		return 0, actionError(op, "no coin at %v", target)
	}
	if err := g.spend(op, ConsumeCost); err != nil {
		return 0, err
	}

	amount := tile.Amount
	if free := g.capacity - g.backpack[Coin]; amount > free {
		amount = free
	}
	tile.Amount -= amount
	if tile.Amount == 0 {
		tile.Content = None
	}
	g.backpack[Coin] += amount
	g.discover(target)

	return amount, nil
}

// Deposit implements the World interface
func (g *Grid) Deposit(d Direction, amount int) (int, error) {
	const op = "deposit"
	target := g.pos.Step(d)
	if !g.inBounds(target) {
		return 0, actionError(op, "%v is out of bounds", target)
	}
	if amount < 0 {
		return 0, actionError(op, "negative amount %v", amount)
	}

	tile := &g.tiles[target.Row][target.Col]
	if tile.Content != Bank {
		return 0, actionError(op, "no bank at %v", target)
	}
	if err := g.spend(op, DepositCost); err != nil {
		return 0, err
	}

	if held := g.backpack[Coin]; amount > held {
		amount = held
	}
	if amount > tile.Amount {
		amount = tile.Amount
	}
	tile.Amount -= amount
	g.backpack[Coin] -= amount
	g.discover(target)

	return amount, nil
}

// Scan implements the World interface
func (g *Grid) Scan(d Direction, distance int) ([]Located, error) {
	const op = "scan"
	if distance < 1 {
		return nil, actionError(op, "distance must be positive, have %v",
			distance)
	}
	if err := g.spend(op, ScanCostPerTile*distance); err != nil {
		return nil, err
	}

	// Unit vector along d and the perpendicular spanning the width
	dr, dc := d.Offset()
	pr, pc := dc, dr

	var found []Located
	for step := 1; step <= distance; step++ {
		for w := -1; w <= 1; w++ {
			c := Coord{
				Row: g.pos.Row + step*dr + w*pr,
				Col: g.pos.Col + step*dc + w*pc,
			}
			if !g.inBounds(c) {
				continue
			}
			g.discover(c)
			found = append(found, Located{c, g.tiles[c.Row][c.Col]})
		}
	}
	return found, nil
}

// Known implements the World interface
func (g *Grid) Known(c Content) []Coord {
	var coords []Coord
	for i, row := range g.tiles {
		for j, tile := range row {
			if g.known[i][j] && tile.Holds(c) {
				coords = append(coords, Coord{i, j})
			}
		}
	}
	return coords
}

// Nearest implements the World interface. Ties are broken by row and
// then by column.
func (g *Grid) Nearest(c Content) (Coord, bool) {
	known := g.Known(c)
	if len(known) == 0 {
		return Coord{}, false
	}

	sort.SliceStable(known, func(i, j int) bool {
		return known[i].Distance(g.pos) < known[j].Distance(g.pos)
	})
	return known[0], true
}
