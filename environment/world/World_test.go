package world

import (
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/exp/rand"
)

// testScenario returns a 3×4 map:
//
//	G  G  C2 G
//	G  S  B5 L
//	H+2 G G  G
//
// with the robot starting in the centre of the left 3×3 block.
func testScenario() *Scenario {
	return &Scenario{
		Tiles: [][]Tile{
			{{Type: Grass}, {Type: Grass}, {Type: Grass, Content: Coin, Amount: 2}, {Type: Grass}},
			{{Type: Grass}, {Type: Street}, {Type: Grass, Content: Bank, Amount: 5}, {Type: Lava}},
			{{Type: Hill, Elevation: 2}, {Type: Grass}, {Type: Grass}, {Type: Grass}},
		},
		Start:    Coord{1, 1},
		Energy:   100,
		Recharge: 0,
		Capacity: 10,
	}
}

func testGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := testScenario().NewGrid()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestMoveCostsEnergy(t *testing.T) {
	g := testGrid(t)

	if _, err := g.Move(Left); err != nil {
		t.Fatal(err)
	}
	if want := 100 - Grass.Cost(); g.Energy() != want {
		t.Errorf("energy: want %v have %v", want, g.Energy())
	}

	tile, err := g.Move(Down)
	if err != nil {
		t.Fatal(err)
	}
	if tile.Type != Hill {
		t.Errorf("entered %v, want Hill", tile.Type)
	}
	if want := 100 - Grass.Cost() - (Hill.Cost() + 4); g.Energy() != want {
		t.Errorf("energy: want %v have %v", want, g.Energy())
	}
	if g.Position() != (Coord{2, 0}) {
		t.Errorf("position: have %v", g.Position())
	}
}

func TestIllegalMovesAreActionErrors(t *testing.T) {
	g := testGrid(t)
	if _, err := g.Move(Right); !IsActionError(err) {
		t.Errorf("moving onto a bank: want action error have %v", err)
	}

	g.pos = Coord{0, 0}
	if _, err := g.Move(Up); !IsActionError(err) {
		t.Errorf("moving out of bounds: want action error have %v", err)
	}
	if g.Position() != (Coord{0, 0}) {
		t.Error("failed move changed position")
	}

	g.pos = Coord{2, 3}
	if _, err := g.Move(Up); !IsActionError(err) {
		t.Errorf("moving onto lava: want action error have %v", err)
	}

	g.pos = Coord{1, 1}
	g.energy = 0
	if _, err := g.Move(Left); !IsActionError(err) {
		t.Errorf("moving without energy: want action error have %v", err)
	}
}

func TestConsumeAndDeposit(t *testing.T) {
	g := testGrid(t)
	g.pos = Coord{0, 1}

	amount, err := g.Consume(Right)
	if err != nil {
		t.Fatal(err)
	}
	if amount != 2 || g.Held(Coin) != 2 {
		t.Errorf("consumed %v, holding %v", amount, g.Held(Coin))
	}
	if tile, _ := g.At(Coord{0, 2}); tile.Content != None {
		t.Errorf("emptied coin tile holds %v", tile.Content)
	}
	if _, err := g.Consume(Right); !IsActionError(err) {
		t.Errorf("consuming an empty tile: want action error have %v", err)
	}

	g.pos = Coord{1, 1}
	amount, err = g.Deposit(Right, 10)
	if err != nil {
		t.Fatal(err)
	}
	if amount != 2 || g.Held(Coin) != 0 {
		t.Errorf("deposited %v, holding %v", amount, g.Held(Coin))
	}
	if tile, _ := g.At(Coord{1, 2}); tile.Amount != 3 {
		t.Errorf("bank capacity: want 3 have %v", tile.Amount)
	}

	// Nothing left to deposit
	if amount, err := g.Deposit(Right, 1); err != nil || amount != 0 {
		t.Errorf("empty deposit: amount %v err %v", amount, err)
	}
}

func TestScanDiscovers(t *testing.T) {
	g := testGrid(t)
	g.pos = Coord{2, 1}

	if len(g.Known(Coin)) != 0 {
		t.Fatal("coin known before scanning")
	}

	found, err := g.Scan(Up, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 6 {
		t.Errorf("scanned %v tiles, want 6", len(found))
	}
	if want := 100 - 2*ScanCostPerTile; g.Energy() != want {
		t.Errorf("energy: want %v have %v", want, g.Energy())
	}

	if known := g.Known(Coin); !reflect.DeepEqual(known, []Coord{{0, 2}}) {
		t.Errorf("known coins: %v", known)
	}
	nearest, ok := g.Nearest(Bank)
	if !ok || nearest != (Coord{1, 2}) {
		t.Errorf("nearest bank: %v, %v", nearest, ok)
	}
}

func TestViewOutOfBounds(t *testing.T) {
	s := &Scenario{
		Tiles:    [][]Tile{{{Type: Grass}}},
		Energy:   10,
		Capacity: 1,
	}
	g, err := newGrid(s.Tiles, Coord{}, s.Energy, 0, s.Capacity)
	if err != nil {
		t.Fatal(err)
	}

	view := g.View()
	for i := range view {
		for j := range view[i] {
			if (i == 1 && j == 1) != (view[i][j] != nil) {
				t.Errorf("view[%v][%v] = %v", i, j, view[i][j])
			}
		}
	}
}

func TestSimulationTicksOnce(t *testing.T) {
	s := testScenario()
	s.Recharge = 5
	s.Energy = 50
	grid, err := s.NewGrid()
	if err != nil {
		t.Fatal(err)
	}
	sim := NewSimulation(grid)

	calls := 0
	runnable := runnableFunc(func(w World) error {
		calls++
		if w.Energy() != 55 {
			t.Errorf("energy not recharged before tick: %v", w.Energy())
		}
		return nil
	})
	if err := sim.Tick(runnable); err != nil {
		t.Fatal(err)
	}
	if calls != 1 || sim.Ticks() != 1 {
		t.Errorf("runnable called %v times in %v ticks", calls, sim.Ticks())
	}
}

type runnableFunc func(World) error

func (f runnableFunc) ProcessTick(w World) error { return f(w) }

func TestScenarioSaveLoad(t *testing.T) {
	s := testScenario()
	path := filepath.Join(t.TempDir(), "map.bin")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s, loaded) {
		t.Errorf("loaded scenario differs:\n\twant(%+v)\n\thave(%+v)", s,
			loaded)
	}
}

func TestFromScenarioIsolatesEpisodes(t *testing.T) {
	gen, err := FromScenario(testScenario())
	if err != nil {
		t.Fatal(err)
	}

	first, err := gen.Generate()
	if err != nil {
		t.Fatal(err)
	}
	first.Grid().pos = Coord{0, 1}
	if _, err := first.Grid().Consume(Right); err != nil {
		t.Fatal(err)
	}

	second, err := gen.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if tile, _ := second.Grid().At(Coord{0, 2}); tile.Amount != 2 {
		t.Errorf("coins consumed in one episode missing from the next: %v",
			tile.Amount)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	c := DefaultGenConfig()
	a, err := Generate(rand.New(rand.NewSource(7)), c)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(rand.New(rand.NewSource(7)), c)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("maps generated with the same seed differ")
	}
	if err := a.Validate(); err != nil {
		t.Error(err)
	}
}
