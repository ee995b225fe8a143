package cmd

import (
	"github.com/samuelfneumann/robogym/experiment"
	"github.com/spf13/cobra"
)

// EvalCommand returns the command that evaluates the saved actor of
// every worker
func EvalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run one greedy episode with the best actor of each worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := interruptible()
			defer cancel()

			returns, err := experiment.Evaluate(ctx, c, options())
			for i, ret := range returns {
				logger.Info().Int("worker", i).Float64("return", ret).
					Msg("evaluation finished")
			}
			return err
		},
	}
	addEpisodeFlags(cmd)

	return cmd
}
