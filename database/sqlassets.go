package sqlassets

import _ "embed"

//go:embed schema/users.sql
var UsersSQL string

//go:embed schema/employees.sql
var EmployeesSQL string

//go:embed schema/employee_sessions.sql
var EmployeeSessionsSQL string

//go:embed schema/tournaments.sql
var TournamentsSQL string

// Ordered lists the DDL files in dependency order.
func Ordered() []string {
	return []string{UsersSQL, EmployeesSQL, EmployeeSessionsSQL, TournamentsSQL}
}
