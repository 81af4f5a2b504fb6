package employee

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zenGate-Global/tournament-admin/apps/cli/cmd/cliutil"
	employeesrepo "github.com/zenGate-Global/tournament-admin/domains/employees/be/repo"
	employeesservice "github.com/zenGate-Global/tournament-admin/domains/employees/be/service"
	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
)

// Command groups employee account helpers. Creating the first ADMIN is only possible from here,
// since public registration always yields STAFF.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employee accounts (create, list)",
	}

	cmd.AddCommand(createCommand())
	cmd.AddCommand(listCommand())
	return cmd
}

func newService(ctx context.Context, cmd *cobra.Command) (employeesservice.Service, func(), error) {
	pool, cleanup, err := cliutil.OpenPool(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}

	store, err := persistence.NewEmployeeStore(pool)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init employee store: %w", err)
	}
	return employeesservice.New(employeesrepo.NewPostgresRepository(store)), cleanup, nil
}

type createFlags struct {
	email     string
	password  string
	role      string
	firstName string
	lastName  string
	whatsapp  string
}

func (f createFlags) input() employeesservice.CreateInput {
	role := strings.ToUpper(strings.TrimSpace(f.role))
	input := employeesservice.CreateInput{
		Email:           f.email,
		Password:        &f.password,
		ConfirmPassword: &f.password,
		Role:            &role,
	}
	if f.firstName != "" {
		input.FirstName = &f.firstName
	}
	if f.lastName != "" {
		input.LastName = &f.lastName
	}
	if f.whatsapp != "" {
		input.WhatsappNumber = &f.whatsapp
	}
	return input
}

func createCommand() *cobra.Command {
	var flags createFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee with a password and role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cliutil.SystemContext(context.Background(), "employee-create")
			svc, cleanup, err := newService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			created, err := svc.Create(ctx, flags.input())
			if err != nil {
				return fmt.Errorf("create employee: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created employee %d (%s) %s role=%s\n", created.ID, created.ExternalID, created.Email, created.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.email, "email", "", "employee email")
	cmd.Flags().StringVar(&flags.password, "password", "", "initial password")
	cmd.Flags().StringVar(&flags.role, "role", platformauth.RoleAdmin, "ADMIN, MANAGER or STAFF")
	cmd.Flags().StringVar(&flags.firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&flags.lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&flags.whatsapp, "whatsapp", "", "whatsapp number")

	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
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
		Short: "List live employees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			svc, cleanup, err := newService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			params := persistence.ListParams{PageOptions: persistence.PageOptions{Page: page, Limit: limit, Search: search}}
			if status != "" {
				upper := strings.ToUpper(status)
				params.Status = &upper
			}

			result, err := svc.List(ctx, params)
			if err != nil {
				return fmt.Errorf("list employees: %w", err)
			}

			return renderEmployees(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "free-text search over name, email and whatsapp")
	cmd.Flags().StringVar(&status, "status", "", "filter by account status")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	return cmd
}

func renderEmployees(out io.Writer, result persistence.Page[persistence.Employee]) error {
	if len(result.Data) == 0 {
		_, err := fmt.Fprintln(out, "no employees found")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tSTATUS\tACTIVE")
	for _, e := range result.Data {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\n", e.ID, e.Email, fullName(e), e.Role, e.Status, e.IsActive)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	p := result.Pagination
	_, err := fmt.Fprintf(out, "page %d/%d (%d total)\n", p.Page, p.TotalPages, p.Total)
	return err
}

func fullName(e persistence.Employee) string {
	parts := make([]string, 0, 2)
	for _, p := range []*string{e.FirstName, e.LastName} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
