package root

import (
	dbcmd "github.com/zenGate-Global/tournament-admin/apps/cli/cmd/db"
	"github.com/zenGate-Global/tournament-admin/apps/cli/cmd/employee"
	"github.com/zenGate-Global/tournament-admin/apps/cli/cmd/sessions"
	"github.com/zenGate-Global/tournament-admin/apps/cli/cmd/tournament"
)

func init() {
	Root().AddCommand(dbcmd.Command())
	Root().AddCommand(employee.Command())
	Root().AddCommand(sessions.Command())
	Root().AddCommand(tournament.Command())
}
