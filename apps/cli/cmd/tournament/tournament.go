package tournament

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zenGate-Global/tournament-admin/apps/cli/cmd/cliutil"
	tournamentsrepo "github.com/zenGate-Global/tournament-admin/domains/tournaments/be/repo"
	tournamentsservice "github.com/zenGate-Global/tournament-admin/domains/tournaments/be/service"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
)

// Command groups read-only tournament helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Inspect tournaments (list, show)",
	}

	cmd.AddCommand(listCommand())
	cmd.AddCommand(showCommand())
	return cmd
}

func newService(ctx context.Context, cmd *cobra.Command) (tournamentsservice.Service, func(), error) {
	pool, cleanup, err := cliutil.OpenPool(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}

	store, err := persistence.NewTournamentStore(pool)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init tournament store: %w", err)
	}
	rules, err := tournamentsservice.NewRulesValidator()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return tournamentsservice.New(tournamentsrepo.NewPostgresRepository(store), rules), cleanup, nil
}

func listCommand() *cobra.Command {
	var (
		search string
		status string
		page   int
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live tournaments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			svc, cleanup, err := newService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			params := persistence.ListParams{PageOptions: persistence.PageOptions{Page: page, Limit: limit, Search: search, SortBy: "tournament_start_date"}}
			if status != "" {
				upper := strings.ToUpper(status)
				params.Status = &upper
			}

			result, err := svc.List(ctx, params)
			if err != nil {
				return fmt.Errorf("list tournaments: %w", err)
			}
			return renderTournaments(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "free-text search over title, tagline, description and type")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (UPCOMING, LIVE, CLOSED, REMOVED)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	return cmd
}

func showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one tournament by slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := newService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.GetBySlug(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get tournament %q: %w", args[0], err)
			}
			return renderTournament(cmd.OutOrStdout(), t)
		},
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.DateOnly)
}

func renderTournaments(out io.Writer, result persistence.Page[persistence.Tournament]) error {
	if len(result.Data) == 0 {
		_, err := fmt.Fprintln(out, "no tournaments found")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tTITLE\tSTATUS\tSTARTS\tPRIZEPOOL")
	for _, t := range result.Data {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, cliutil.Deref(t.Slug), t.Title, t.Status, formatDate(t.TournamentStartDate), cliutil.Deref(t.Prizepool))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	p := result.Pagination
	_, err := fmt.Fprintf(out, "page %d/%d (%d total)\n", p.Page, p.TotalPages, p.Total)
	return err
}

func renderTournament(out io.Writer, t persistence.Tournament) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"id", fmt.Sprint(t.ID)},
		{"external_id", t.ExternalID.String()},
		{"title", t.Title},
		{"slug", cliutil.Deref(t.Slug)},
		{"status", t.Status},
		{"type", cliutil.Deref(t.Type)},
		{"entry_fee", cliutil.Deref(t.EntryFee)},
		{"prizepool", cliutil.Deref(t.Prizepool)},
		{"registration", formatDate(t.RegistrationStartDate) + " .. " + formatDate(t.RegistrationEndDate)},
		{"tournament", formatDate(t.TournamentStartDate) + " .. " + formatDate(t.TournamentEndDate)},
		{"rules", rulesSummary(t)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func rulesSummary(t persistence.Tournament) string {
	if len(t.Rules) == 0 {
		return "-"
	}
	return string(t.Rules)
}
