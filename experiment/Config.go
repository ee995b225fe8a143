// Package experiment implements functionality for training and
// evaluating independent DDPG workers on robot tasks
package experiment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/robogym/agent/nonlinear/continuous/ddpg"
	"github.com/samuelfneumann/robogym/environment/robot"
	"github.com/samuelfneumann/robogym/environment/world"
)

// Schedule determines when an agent learns from its replay buffer
type Schedule string

const (
	PerEpisode Schedule = "episode"
	PerStep    Schedule = "step"
)

// Maps are the default maps, one per worker
var Maps = []string{
	"adj_danger_map.bin",
	"coin_bank_1_away_map.bin",
	"coin_bank_adj_map.bin",
	"test_normal_map.bin",
}

// WorkerConfig configures the files of a single worker
type WorkerConfig struct {
	// Scenario is the map the worker trains on. Workers without a
	// scenario train on randomly generated maps.
	Scenario string

	// Model is the file the best actor is saved to. Defaults to
	// model.bin in the worker's output directory.
	Model string

	// Output is the directory the worker's telemetry is written to.
	// Defaults to worker-<index> in the experiment's output directory.
	Output string
}

// Config represents a configuration of a training or evaluation run.
// Every worker shares the same hyperparameters.
type Config struct {
	Workers []WorkerConfig

	Episodes        int // Episodes per worker
	MaxEpisodeSteps int // Steps before an episode is cut off

	// The agent learns LearnIterations times after every episode or
	// step, depending on LearnEvery
	LearnIterations int
	LearnEvery      Schedule

	// SnapshotEvery saves an enumerated copy of the actor every
	// SnapshotEvery episodes if positive
	SnapshotEvery int

	Seed uint64 // Worker i is seeded with Seed + i

	Agent     ddpg.Config
	Task      robot.Config
	Generator world.GenConfig

	OutputDir string
}

// DefaultConfig returns the default configuration, which trains one
// worker on each of the Maps in mapDir
func DefaultConfig(mapDir string) Config {
	workers := make([]WorkerConfig, len(Maps))
	for i, m := range Maps {
		workers[i] = WorkerConfig{Scenario: filepath.Join(mapDir, m)}
	}

	return Config{
		Workers:         workers,
		Episodes:        200,
		MaxEpisodeSteps: 100,
		LearnIterations: 100,
		LearnEvery:      PerEpisode,
		Seed:            0,
		Agent:           ddpg.DefaultConfig(),
		Task:            robot.DefaultConfig(),
		Generator:       world.DefaultGenConfig(),
		OutputDir:       "out",
	}
}

// Validate checks a Config for errors
func (c Config) Validate() error {
	if len(c.Workers) == 0 {
		return fmt.Errorf("validate: at least one worker is required")
	}
	if c.Episodes < 1 {
		return fmt.Errorf("validate: episodes must be positive, have %v",
			c.Episodes)
	}
	if c.MaxEpisodeSteps < 1 {
		return fmt.Errorf("validate: max episode steps must be positive, "+
			"have %v", c.MaxEpisodeSteps)
	}
	if c.LearnIterations < 0 {
		return fmt.Errorf("validate: learn iterations must be "+
			"non-negative, have %v", c.LearnIterations)
	}
	if c.LearnEvery != PerEpisode && c.LearnEvery != PerStep {
		return fmt.Errorf("validate: learning schedule must be %q or %q, "+
			"have %q", PerEpisode, PerStep, c.LearnEvery)
	}
	if c.SnapshotEvery < 0 {
		return fmt.Errorf("validate: snapshot interval must be "+
			"non-negative, have %v", c.SnapshotEvery)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("validate: output directory is required")
	}

	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("validate: agent: %w", err)
	}
	if err := c.Task.Validate(); err != nil {
		return fmt.Errorf("validate: task: %w", err)
	}

	for i, w := range c.Workers {
		if w.Scenario != "" {
			continue
		}
		if err := c.Generator.Validate(); err != nil {
			return fmt.Errorf("validate: worker %v generates maps: %w", i,
				err)
		}
	}

	return nil
}

// Output returns the output directory of worker i
func (c Config) Output(i int) string {
	if c.Workers[i].Output != "" {
		return c.Workers[i].Output
	}
	return filepath.Join(c.OutputDir, fmt.Sprintf("worker-%d", i))
}

// Model returns the file that worker i saves its best actor to
func (c Config) Model(i int) string {
	if c.Workers[i].Model != "" {
		return c.Workers[i].Model
	}
	return filepath.Join(c.Output(i), "model.bin")
}

// Save saves the Config to filename as JSON
func (c Config) Save(filename string) error {
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("save: could not marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// LoadConfig loads a Config from the JSON file filename. Fields missing
// from the file keep their default values. The Config is validated
// before it is returned.
func LoadConfig(filename, mapDir string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	c := DefaultConfig(mapDir)
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not unmarshal "+
			"config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	return c, nil
}
