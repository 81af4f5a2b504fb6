package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zenGate-Global/tournament-admin/apps/cli/cmd/cliutil"
	employeesrepo "github.com/zenGate-Global/tournament-admin/domains/employees/be/repo"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
)

// Command groups employee session maintenance.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Employee session maintenance",
	}

	cmd.AddCommand(purgeCommand())
	return cmd
}

func purgeCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete expired employee sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan < 0 {
				return fmt.Errorf("--older-than must not be negative")
			}

			ctx := context.Background()
			pool, cleanup, err := cliutil.OpenPool(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			store, err := persistence.NewEmployeeSessionStore(pool)
			if err != nil {
				return fmt.Errorf("init session store: %w", err)
			}
			sessions := employeesrepo.NewPostgresSessionRepository(store)

			removed, err := sessions.DeleteExpired(ctx, time.Now().UTC().Add(-olderThan))
			if err != nil {
				return fmt.Errorf("purge sessions: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "only remove sessions that expired at least this long ago")
	return cmd
}
