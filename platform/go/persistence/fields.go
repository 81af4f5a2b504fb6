package persistence

import "strings"

// Account statuses shared by users and employees.
const (
	AccountActive    = "ACTIVE"
	AccountInactive  = "INACTIVE"
	AccountSuspended = "SUSPENDED"
	AccountBanned    = "BAN"
)

// AccountStatuses lists every valid account status.
var AccountStatuses = []string{AccountActive, AccountInactive, AccountSuspended, AccountBanned}

// SetIfPresent stores *v under column when v is non-nil.
func SetIfPresent[V any](f Fields, column string, v *V) {
	if v != nil {
		f[column] = *v
	}
}

// SetText stores a trimmed optional string. A blank value clears the column to NULL.
func SetText(f Fields, column string, v *string) {
	if v == nil {
		return
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		f[column] = nil
		return
	}
	f[column] = trimmed
}
