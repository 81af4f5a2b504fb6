// Package cliutil holds the connection and audit plumbing shared by tournamentctl subcommands.
package cliutil

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/requesttrace"
)

// FlagDatabaseURL is the persistent root flag carrying the connection string.
const FlagDatabaseURL = "database-url"

// ErrNoDatabaseURL is returned when neither the flag nor the environment provides a connection string.
var ErrNoDatabaseURL = errors.New("database url is required: pass --database-url or set DATABASE_URL")

// DatabaseURL resolves the connection string from the flag, then .env and the process environment.
func DatabaseURL(cmd *cobra.Command) (string, error) {
	databaseURL, err := cmd.Flags().GetString(FlagDatabaseURL)
	if err != nil {
		return "", err
	}
	if databaseURL != "" {
		return databaseURL, nil
	}

	_ = godotenv.Load()
	if databaseURL = os.Getenv("DATABASE_URL"); databaseURL == "" {
		return "", ErrNoDatabaseURL
	}
	return databaseURL, nil
}

// OpenPool connects using the resolved database url. The returned cleanup closes the pool.
func OpenPool(ctx context.Context, cmd *cobra.Command) (*pgxpool.Pool, func(), error) {
	databaseURL, err := DatabaseURL(cmd)
	if err != nil {
		return nil, nil, err
	}

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL, MaxConns: 2})
	if err != nil {
		return nil, nil, fmt.Errorf("init pool: %w", err)
	}
	return pool, func() { persistence.ClosePool(pool) }, nil
}

// SystemContext stamps the context with a system actor so writes carry created_by/updated_by.
func SystemContext(ctx context.Context, operation string) context.Context {
	return requesttrace.IntoContext(ctx, requesttrace.System("cli-"+operation))
}

// Deref renders an optional string for tabular output.
func Deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
