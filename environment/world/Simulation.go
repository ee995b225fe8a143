package world

// Runnable is an agent that acts in the world once per tick
type Runnable interface {
	ProcessTick(w World) error
}

// Simulation advances a Grid one tick at a time
type Simulation struct {
	grid  *Grid
	ticks int
}

// NewSimulation returns a simulation over grid
func NewSimulation(grid *Grid) *Simulation {
	return &Simulation{grid: grid}
}

// Tick advances the simulation by one tick, recharging the robot's
// energy and then running r exactly once. Errors returned by r are
// returned unchanged.
func (s *Simulation) Tick(r Runnable) error {
	s.ticks++
	s.grid.rechargeEnergy()
	return r.ProcessTick(s.grid)
}

// Ticks returns the number of ticks that have passed
func (s *Simulation) Ticks() int {
	return s.ticks
}

// Grid returns the world of the simulation
func (s *Simulation) Grid() *Grid {
	return s.grid
}
