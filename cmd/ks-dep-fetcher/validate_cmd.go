package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/config"
)

// createValidateCommand creates the validate subcommand.
func createValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate CONFIG_FILE",
		Short: "Validate a config file against the built-in schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid configuration\n", args[0])
			return nil
		},
	}
}
