package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNilQuerier is returned when a store is built without a database handle.
	ErrNilQuerier = errors.New("querier is required")
	// ErrUnknownField is returned for field names outside the table's column set.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidSortOrder is returned when the sort order is neither ASC nor DESC.
	ErrInvalidSortOrder = errors.New("invalid sort order")
	// ErrSoftDeleteUnsupported is returned by SoftDelete/Restore on tables without the deletion marker pair.
	ErrSoftDeleteUnsupported = errors.New("table does not support soft delete")
)

// Postgres SQLSTATE codes surfaced by the stores.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeNotNullViolation    = "23502"
	CodeCheckViolation      = "23514"
	CodeInvalidInput        = "22P02"
)

// PgErrorCode returns the SQLSTATE of a store error, or "" when err did not come from Postgres.
func PgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// ConstraintName returns the violated constraint, when the store reported one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return PgErrorCode(err) == CodeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return PgErrorCode(err) == CodeForeignKeyViolation
}

func IsNotNullViolation(err error) bool {
	return PgErrorCode(err) == CodeNotNullViolation
}

func IsCheckViolation(err error) bool {
	return PgErrorCode(err) == CodeCheckViolation
}

// IsInvalidInput reports malformed values rejected by the store, e.g. a bad uuid literal.
func IsInvalidInput(err error) bool {
	return PgErrorCode(err) == CodeInvalidInput
}
