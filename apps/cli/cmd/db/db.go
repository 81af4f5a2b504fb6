package dbcmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zenGate-Global/tournament-admin/apps/cli/cmd/cliutil"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
)

// Command groups database maintenance helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities (migrate, ping)",
	}

	cmd.AddCommand(migrateCommand())
	cmd.AddCommand(pingCommand())
	return cmd
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema (idempotent)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			pool, cleanup, err := cliutil.OpenPool(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := persistence.ApplySchema(ctx, pool); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func pingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check database connectivity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			pool, cleanup, err := cliutil.OpenPool(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
