package experiment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/robogym/environment/world"
	"golang.org/x/exp/rand"
)

// Init generates the map of every worker that trains on a scenario.
// Maps that already exist are kept unless overwrite is true. Worker i
// generates its map with the Config's seed plus i.
func Init(c Config, overwrite bool, logger zerolog.Logger) error {
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	for i, w := range c.Workers {
		if w.Scenario == "" {
			continue
		}
		if _, err := os.Stat(w.Scenario); err == nil && !overwrite {
			logger.Info().Str("map", w.Scenario).Msg("keeping existing map")
			continue
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("init: %w", err)
		}

		rng := rand.New(rand.NewSource(c.Seed + uint64(i)))
		s, err := world.Generate(rng, c.Generator)
		if err != nil {
			return fmt.Errorf("init: worker %v: %w", i, err)
		}

		if err := os.MkdirAll(filepath.Dir(w.Scenario), 0o755); err != nil {
			return fmt.Errorf("init: %w", err)
		}
		if err := s.Save(w.Scenario); err != nil {
			return fmt.Errorf("init: worker %v: %w", i, err)
		}
		logger.Info().Int("worker", i).Str("map", w.Scenario).
			Msg("generated map")
	}
	return nil
}
