package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the VermiMetrics CLI. Subcommands (account,
// tanks, auth) are attached here.
var rootCmd = &cobra.Command{
	Use:           "vermi",
	Short:         "VermiMetrics client CLI",
	Long:          "Client utilities for VermiMetrics (account signup and sign-in, tank catalog browsing, dev tokens).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
