package root

import (
	"github.com/spf13/cobra"

	"github.com/zenGate-Global/tournament-admin/apps/cli/cmd/cliutil"
)

// rootCmd is the base command for the tournament admin CLI. Subcommands are attached in wire.go.
var rootCmd = &cobra.Command{
	Use:           "tournamentctl",
	Short:         "Tournament admin CLI",
	Long:          "Operational utilities for the tournament admin API (schema, employees, sessions, tournaments).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().String(cliutil.FlagDatabaseURL, "", "PostgreSQL connection string (defaults to $DATABASE_URL)")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
