package experiment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/robogym/experiment/tracker"
	"github.com/samuelfneumann/robogym/utils/progressbar"
	"golang.org/x/sync/errgroup"
)

const barWidth = 30

// Options configures how a run reports its progress
type Options struct {
	Logger zerolog.Logger

	// Display renders one progress bar per worker if not nil
	Display *progressbar.Display
}

// Train trains every worker of the Config concurrently and waits for
// all of them to finish. A worker that fails or panics stops on its
// own, the remaining workers keep training. The error of the first
// worker to fail is returned.
func Train(ctx context.Context, c Config, opts Options) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if err := c.Save(filepath.Join(c.OutputDir, "config.json")); err != nil {
		return fmt.Errorf("train: %w", err)
	}

	workers := make([]*Worker, len(c.Workers))
	err := run(ctx, c, opts, c.Episodes, func(ctx context.Context, i int,
		logger zerolog.Logger, bar *progressbar.Bar) error {
		w, err := NewWorker(i, c, logger)
		if err != nil {
			return err
		}
		w.SetProgress(bar)
		workers[i] = w
		return w.Train(ctx)
	})

	var series []tracker.Series
	for i, w := range workers {
		if w == nil {
			continue
		}
		series = append(series, tracker.Series{
			Name:    fmt.Sprintf("worker %d", i),
			Returns: w.Returns(),
		})
	}
	chart := filepath.Join(c.OutputDir, "returns.html")
	if chartErr := tracker.SaveReturnChart(chart, "Episodic Return",
		series...); chartErr != nil {
		opts.Logger.Warn().Err(chartErr).Msg("could not save return chart")
	}

	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	return nil
}

// Evaluate runs one greedy episode with the saved actor of every
// worker concurrently and returns the return of each worker. Workers
// that fail have a return of 0.
func Evaluate(ctx context.Context, c Config, opts Options) ([]float64,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	returns := make([]float64, len(c.Workers))
	err := run(ctx, c, opts, 1, func(ctx context.Context, i int,
		logger zerolog.Logger, bar *progressbar.Bar) error {
		w, err := NewWorker(i, c, logger)
		if err != nil {
			return err
		}
		w.SetProgress(bar)
		ret, err := w.Evaluate(ctx)
		returns[i] = ret
		return err
	})
	if err != nil {
		return returns, fmt.Errorf("evaluate: %w", err)
	}
	return returns, nil
}

type workerFunc func(ctx context.Context, i int, logger zerolog.Logger,
	bar *progressbar.Bar) error

// run runs f for every worker of the Config on its own goroutine and
// waits for every worker to finish
func run(ctx context.Context, c Config, opts Options, steps int,
	f workerFunc) error {
	bars := make([]*progressbar.Bar, len(c.Workers))
	if opts.Display != nil {
		for i := range bars {
			bars[i] = opts.Display.NewBar(fmt.Sprintf("worker %d", i),
				barWidth, steps)
		}
		opts.Display.Start(ctx)
		defer opts.Display.Stop()
	}

	var g errgroup.Group
	for i := range c.Workers {
		i := i
		logger := opts.Logger.With().Int("worker", i).Logger()
		g.Go(func() error {
			return guard(i, logger, bars[i], func() error {
				return f(ctx, i, logger, bars[i])
			})
		})
	}
	return g.Wait()
}

// guard runs f, turning a panic into an error. Errors are logged and
// shown on the worker's progress bar.
func guard(id int, logger zerolog.Logger, bar *progressbar.Bar,
	f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err == nil {
			return
		}

		err = fmt.Errorf("worker %d: %w", id, err)
		logger.Error().Err(err).Msg("worker stopped")
		if bar != nil {
			bar.Fail(err)
		}
	}()

	return f()
}
