package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/robogym/experiment"
	"github.com/samuelfneumann/robogym/utils/progressbar"
	"github.com/spf13/cobra"
)

var (
	configPath string
	mapDir     string
	outputDir  string
	seed       uint64
	logLevel   string
	noProgress bool

	episodes   int
	maxEpLen   int
	learnIters int
	learnEvery string

	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()
)

// AddFlags adds the flags shared by every subcommand to cmd
func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "JSON configuration file, defaults are used if empty")
	cmd.PersistentFlags().StringVar(&mapDir, "maps", "maps", "Directory of the default worker maps")
	cmd.PersistentFlags().StringVar(&outputDir, "output", "out", "Directory to save models and telemetry to")
	cmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Seed of the first worker")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level")
	cmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "Disable progress bars")
}

// addEpisodeFlags adds the flags that control episodes to cmd
func addEpisodeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&maxEpLen, "max-ep-len", "m", 100, "Maximum number of steps per episode")
}

func setupLogger() error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger = logger.Level(level)
	return nil
}

// loadConfig builds the Config of a run from the defaults, the
// configuration file and the flags that were set, in that order
func loadConfig(cmd *cobra.Command) (experiment.Config, error) {
	c := experiment.DefaultConfig(mapDir)
	if configPath != "" {
		var err error
		c, err = experiment.LoadConfig(configPath, mapDir)
		if err != nil {
			return experiment.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("output") || configPath == "" {
		c.OutputDir = outputDir
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
	if flags.Changed("episodes") {
		c.Episodes = episodes
	}
	if flags.Changed("max-ep-len") {
		c.MaxEpisodeSteps = maxEpLen
	}
	if flags.Changed("learn-iterations") {
		c.LearnIterations = learnIters
	}
	if flags.Changed("learn-every") {
		c.LearnEvery = experiment.Schedule(learnEvery)
	}

	if err := c.Validate(); err != nil {
		return experiment.Config{}, err
	}
	return c, nil
}

// options returns the Options of a run
func options() experiment.Options {
	opts := experiment.Options{Logger: logger}
	if !noProgress {
		opts.Display = progressbar.NewDisplay(os.Stdout, time.Second, true)
	}
	return opts
}
