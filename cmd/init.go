package cmd

import (
	"os"
	"path/filepath"

	"github.com/samuelfneumann/robogym/experiment"
	"github.com/spf13/cobra"
)

// InitCommand returns the command that generates worker maps
func InitCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate the map of every worker and save the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Info().Msg("Entering init mode")
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := experiment.Init(c, overwrite, logger); err != nil {
				return err
			}

			if configPath == "" {
				if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
					return err
				}
				path := filepath.Join(c.OutputDir, "config.json")
				if err := c.Save(path); err != nil {
					return err
				}
				logger.Info().Str("config", path).Msg("saved configuration")
			}
			logger.Info().Msg("Done")
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing maps")

	return cmd
}
