package experiment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/robogym/environment/world"
	"github.com/samuelfneumann/robogym/experiment/tracker"
	"github.com/samuelfneumann/robogym/utils/progressbar"
	"golang.org/x/exp/rand"
)

func grass() world.Tile { return world.Tile{Type: world.Grass} }

// writeScenario saves a small map with a coin and a bank to dir
func writeScenario(t *testing.T, dir string) string {
	t.Helper()
	s := &world.Scenario{
		Tiles: [][]world.Tile{
			{grass(), {Type: world.Grass, Content: world.Coin, Amount: 2},
				grass()},
			{grass(), grass(), grass()},
			{grass(), grass(), {Type: world.Grass, Content: world.Bank,
				Amount: 10}},
		},
		Start:    world.Coord{Row: 1, Col: 1},
		Energy:   200,
		Recharge: 5,
		Capacity: 10,
	}
	path := filepath.Join(dir, "map.bin")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T, workers int) Config {
	t.Helper()
	dir := t.TempDir()
	scenario := writeScenario(t, dir)

	c := DefaultConfig(dir)
	c.Workers = make([]WorkerConfig, workers)
	for i := range c.Workers {
		c.Workers[i].Scenario = scenario
	}
	c.Episodes = 3
	c.MaxEpisodeSteps = 5
	c.LearnIterations = 2
	c.OutputDir = filepath.Join(dir, "out")

	c.Agent.ActorLayers = []int{8}
	c.Agent.CriticLayers = []int{8}
	c.Agent.BatchSize = 4
	c.Agent.ExpReplay.MaxReplayCapacity = 100
	return c
}

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig("maps")
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(c.Workers) != len(Maps) {
		t.Errorf("want %v workers have %v", len(Maps), len(c.Workers))
	}
	if c.Episodes != 200 || c.MaxEpisodeSteps != 100 ||
		c.LearnIterations != 100 {
		t.Errorf("unexpected defaults: %+v", c)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no workers", func(c *Config) { c.Workers = nil }},
		{"no episodes", func(c *Config) { c.Episodes = 0 }},
		{"no steps", func(c *Config) { c.MaxEpisodeSteps = 0 }},
		{"negative learning", func(c *Config) { c.LearnIterations = -1 }},
		{"unknown schedule", func(c *Config) { c.LearnEvery = "tick" }},
		{"no output", func(c *Config) { c.OutputDir = "" }},
		{"no hidden layers", func(c *Config) { c.Agent.ActorLayers = nil }},
		{"bad task", func(c *Config) { c.Task.MinScanDistance = 0 }},
		{"bad generator", func(c *Config) {
			c.Workers[0].Scenario = ""
			c.Generator.Rows = 1
		}},
	}

	for _, test := range tests {
		c := DefaultConfig("maps")
		test.modify(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%v: config accepted", test.name)
		}
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"Episodes": 7, "LearnEvery": "step", "Agent": {"Gamma": 0.5}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path, "maps")
	if err != nil {
		t.Fatal(err)
	}
	if c.Episodes != 7 || c.LearnEvery != PerStep || c.Agent.Gamma != 0.5 {
		t.Errorf("fields not loaded: %+v", c)
	}
	if c.MaxEpisodeSteps != 100 || c.Agent.Tau != 0.001 {
		t.Errorf("defaults lost: %+v", c)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	c := testConfig(t, 2)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfig(path, "maps")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Workers[1].Scenario != c.Workers[1].Scenario ||
		loaded.Agent.ActorLayers[0] != 8 {
		t.Errorf("config changed on round trip: %+v", loaded)
	}
}

func TestTrain(t *testing.T) {
	c := testConfig(t, 2)
	c.SnapshotEvery = 3

	if err := Train(context.Background(), c, Options{
		Logger: zerolog.Nop(),
	}); err != nil {
		t.Fatal(err)
	}

	for i := range c.Workers {
		out := c.Output(i)
		for _, f := range []string{"model.bin", "model-1.bin", "train.log",
			"train_state.log", "train.png", "returns.bin"} {
			if _, err := os.Stat(filepath.Join(out, f)); err != nil {
				t.Errorf("worker %v: %v", i, err)
			}
		}

		returns, err := tracker.LoadReturns(filepath.Join(out,
			"returns.bin"))
		if err != nil {
			t.Fatal(err)
		}
		if len(returns) != c.Episodes {
			t.Errorf("worker %v: want %v returns have %v", i, c.Episodes,
				len(returns))
		}
	}

	if _, err := os.Stat(filepath.Join(c.OutputDir, "returns.html")); err != nil {
		t.Error(err)
	}

	returns, err := Evaluate(context.Background(), c, Options{
		Logger: zerolog.Nop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(returns) != len(c.Workers) {
		t.Errorf("want %v evaluation returns have %v", len(c.Workers),
			len(returns))
	}
	if _, err := os.Stat(filepath.Join(c.Output(0), "eval.log")); err != nil {
		t.Error(err)
	}
}

func TestFirstEpisodeRunsOnFirstGeneratedMap(t *testing.T) {
	c := testConfig(t, 1)
	c.Workers[0].Scenario = ""

	w, err := NewWorker(0, c, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.RunEpisode(false); err != nil {
		t.Fatal(err)
	}

	want, err := world.Generate(rand.New(rand.NewSource(c.Seed)), c.Generator)
	if err != nil {
		t.Fatal(err)
	}
	grid := w.env.Simulation().Grid()
	for i := range want.Tiles {
		for j, tile := range want.Tiles[i] {
			have, _ := grid.At(world.Coord{Row: i, Col: j})
			if have.Type != tile.Type || have.Elevation != tile.Elevation {
				t.Fatalf("tile (%v, %v): want %+v have %+v", i, j, tile, have)
			}
		}
	}
}

func TestTrainPerStepWithDisplay(t *testing.T) {
	c := testConfig(t, 1)
	c.LearnEvery = PerStep
	c.LearnIterations = 1

	var out strings.Builder
	d := progressbar.NewDisplay(&out, 1<<62, false)
	if err := Train(context.Background(), c, Options{
		Logger:  zerolog.Nop(),
		Display: d,
	}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "worker 0") {
		t.Errorf("progress not displayed: %q", out.String())
	}
}

func TestFailingWorkerDoesNotStopOthers(t *testing.T) {
	c := testConfig(t, 2)
	c.Workers[1].Scenario = filepath.Join(t.TempDir(), "missing.bin")

	err := Train(context.Background(), c, Options{Logger: zerolog.Nop()})
	if err == nil || !strings.Contains(err.Error(), "worker 1") {
		t.Fatalf("want worker 1 error have %v", err)
	}
	if _, err := os.Stat(c.Model(0)); err != nil {
		t.Errorf("worker 0 did not finish: %v", err)
	}
}

func TestTrainStopsOnCancel(t *testing.T) {
	c := testConfig(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Train(ctx, c, Options{Logger: zerolog.Nop()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want cancellation error have %v", err)
	}
}

func TestGuardRecoversPanics(t *testing.T) {
	err := guard(3, zerolog.Nop(), nil, func() error {
		panic("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "worker 3: panic: boom") {
		t.Errorf("want recovered panic have %v", err)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	c := DefaultConfig(filepath.Join(dir, "maps"))
	c.Generator.Rows, c.Generator.Cols = 5, 5

	if err := Init(c, false, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}
	for _, w := range c.Workers {
		s, err := world.LoadScenario(w.Scenario)
		if err != nil {
			t.Fatal(err)
		}
		if len(s.Tiles) != 5 {
			t.Errorf("%v: want 5 rows have %v", w.Scenario, len(s.Tiles))
		}
	}

	// Existing maps are kept
	c.Generator.Rows = 7
	if err := Init(c, false, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}
	s, err := world.LoadScenario(c.Workers[0].Scenario)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Tiles) != 5 {
		t.Error("existing map overwritten")
	}
}
