package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/qmcchain/internal/version"
)

// versionCmd implements the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of qmcchain",
	Run: func(cmd *cobra.Command, _ []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "qmcchain version %s\n", info.Full())
		if tag, ok := info.Prerelease(); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "pre-release build (%s)\n", tag)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
