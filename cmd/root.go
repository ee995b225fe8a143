// Package cmd implements the robogym command line interface
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// RootCommand returns the robogym command with all of its subcommands
func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "robogym",
		Short:         "Train DDPG agents to collect and bank coins",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
	}
	AddFlags(cmd)

	cmd.AddCommand(
		InitCommand(),
		TrainCommand(),
		EvalCommand(),
	)

	return cmd
}

// interruptible returns a context that is cancelled on an interrupt
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
