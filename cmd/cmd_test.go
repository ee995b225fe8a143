package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/robogym/experiment"
)

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	maps := filepath.Join(dir, "maps")
	out := filepath.Join(dir, "out")

	root := RootCommand()
	root.SetArgs([]string{"init", "--maps", maps, "--output", out,
		"--log-level", "error"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	for _, m := range experiment.Maps {
		if _, err := os.Stat(filepath.Join(maps, m)); err != nil {
			t.Error(err)
		}
	}

	c, err := experiment.LoadConfig(filepath.Join(out, "config.json"), maps)
	if err != nil {
		t.Fatal(err)
	}
	if c.OutputDir != out {
		t.Errorf("want output %v have %v", out, c.OutputDir)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	c := experiment.DefaultConfig(dir)
	c.Episodes = 5
	c.OutputDir = filepath.Join(dir, "saved")
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}

	train := TrainCommand()
	AddFlags(train)
	if err := train.ParseFlags([]string{"--config", path, "--seed", "9",
		"--max-ep-len", "7"}); err != nil {
		t.Fatal(err)
	}
	defer func() { configPath = "" }()

	loaded, err := loadConfig(train)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Episodes != 5 || loaded.OutputDir != c.OutputDir {
		t.Errorf("config file ignored: %+v", loaded)
	}
	if loaded.Seed != 9 || loaded.MaxEpisodeSteps != 7 {
		t.Errorf("flags ignored: seed %v steps %v", loaded.Seed,
			loaded.MaxEpisodeSteps)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	root := RootCommand()
	root.SetArgs([]string{"train", "--log-level", "loud"})
	defer func() { logLevel = "info" }()
	if err := root.Execute(); err == nil {
		t.Error("invalid log level accepted")
	}
}
