package cmd

import (
	"github.com/samuelfneumann/robogym/experiment"
	"github.com/spf13/cobra"
)

// TrainCommand returns the command that trains every worker
func TrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train one DDPG agent per worker map",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := interruptible()
			defer cancel()

			logger.Info().Int("workers", len(c.Workers)).
				Int("episodes", c.Episodes).Msg("starting training")
			return experiment.Train(ctx, c, options())
		},
	}
	cmd.Flags().IntVarP(&episodes, "episodes", "e", 200, "Number of episodes per worker")
	cmd.Flags().IntVar(&learnIters, "learn-iterations", 100, "Updates per learning phase")
	cmd.Flags().StringVar(&learnEvery, "learn-every", string(experiment.PerEpisode), "Learn after every episode or step")
	addEpisodeFlags(cmd)

	return cmd
}
