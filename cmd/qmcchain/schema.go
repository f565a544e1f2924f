package main

import (
	"github.com/spf13/cobra"

	"github.com/reglet-dev/qmcchain/internal/infrastructure/validation"
)

// schemaCmd prints the JSON Schema request files are validated against.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the request JSON Schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write(validation.Schema())
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
