package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// widget is a minimal entity used to exercise the generic repository without a database.
type widget struct {
	ID        int64
	Name      string
	Status    string
	IsActive  bool
	IsDeleted bool
	DeletedAt *time.Time
	CreatedBy *string
	UpdatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

var widgetTable = Table[widget]{
	Name: "widgets",
	Columns: []string{
		"id", "name", "status", "is_active", "is_deleted", "deleted_at",
		"created_by", "updated_by", "created_at", "updated_at",
	},
	Writable: []string{"name", "status", "is_active", "is_deleted", "deleted_at", "created_by", "updated_by"},
	Scan: func(row pgx.Row) (widget, error) {
		var w widget
		err := row.Scan(&w.ID, &w.Name, &w.Status, &w.IsActive, &w.IsDeleted, &w.DeletedAt,
			&w.CreatedBy, &w.UpdatedBy, &w.CreatedAt, &w.UpdatedAt)
		return w, err
	},
}

var errFakeScan = errors.New("fake row")

type recordedCall struct {
	sql  string
	args []any
}

// fakeQuerier records statements. COUNT queries scan count when it is set; other QueryRow
// results scan into errRow. Exec reports tag.
type fakeQuerier struct {
	calls  []recordedCall
	tag    pgconn.CommandTag
	rowErr error
	count  *int64
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, recordedCall{sql: sql, args: args})
	return f.tag, nil
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, recordedCall{sql: sql, args: args})
	return nil, errors.New("fake querier does not support Query")
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, recordedCall{sql: sql, args: args})
	if f.count != nil && strings.HasPrefix(sql, "SELECT COUNT(*)") {
		return countRow{n: *f.count}
	}
	err := f.rowErr
	if err == nil {
		err = errFakeScan
	}
	return errRow{err: err}
}

func (f *fakeQuerier) last() recordedCall {
	if len(f.calls) == 0 {
		return recordedCall{}
	}
	return f.calls[len(f.calls)-1]
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}

type countRow struct {
	n int64
}

func (r countRow) Scan(dest ...any) error {
	*dest[0].(*int64) = r.n
	return nil
}
