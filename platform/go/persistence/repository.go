package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx used by the stores. *pgxpool.Pool, *pgx.Conn and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Fields holds column values for Create and Update, keyed by column name.
type Fields map[string]any

// Predicate is an exact-match filter keyed by column name. Entries are ANDed; a nil value matches NULL.
type Predicate map[string]any

// Table describes how one entity type maps onto its store table.
type Table[T any] struct {
	Name string
	// Columns are selected, and handed to Scan, in this order. Must include "id".
	Columns []string
	// Writable lists the columns accepted by Create and Update.
	Writable []string
	Scan     func(row pgx.Row) (T, error)
}

const (
	columnID         = "id"
	columnIsDeleted  = "is_deleted"
	columnDeletedAt  = "deleted_at"
	columnUpdatedAt  = "updated_at"
	columnCreatedBy  = "created_by"
	columnUpdatedBy  = "updated_by"
	columnStatus     = "status"
	columnIsActive   = "is_active"
	columnExternalID = "external_id"
)

// Repository implements CRUD, soft delete and paginated search for a single table.
// It keeps no mutable state and is safe for concurrent use.
type Repository[T any] struct {
	db         Querier
	table      Table[T]
	ident      string
	selectList string
	columns    map[string]struct{}
	writable   map[string]struct{}
}

// NewRepository validates the table description and returns a repository bound to db.
func NewRepository[T any](db Querier, table Table[T]) (*Repository[T], error) {
	if db == nil {
		return nil, ErrNilQuerier
	}
	if strings.TrimSpace(table.Name) == "" {
		return nil, errors.New("table name is required")
	}
	if table.Scan == nil {
		return nil, fmt.Errorf("table %s: scan func is required", table.Name)
	}

	columns := make(map[string]struct{}, len(table.Columns))
	for _, column := range table.Columns {
		columns[column] = struct{}{}
	}
	if _, ok := columns[columnID]; !ok {
		return nil, fmt.Errorf("table %s: %q column is required", table.Name, columnID)
	}

	writable := make(map[string]struct{}, len(table.Writable))
	for _, column := range table.Writable {
		if _, ok := columns[column]; !ok {
			return nil, fmt.Errorf("table %s: writable column %q is not a selected column", table.Name, column)
		}
		writable[column] = struct{}{}
	}

	return &Repository[T]{
		db:         db,
		table:      table,
		ident:      pgx.Identifier{table.Name}.Sanitize(),
		selectList: strings.Join(table.Columns, ", "),
		columns:    columns,
		writable:   writable,
	}, nil
}

// TableName returns the unquoted table name.
func (r *Repository[T]) TableName() string {
	return r.table.Name
}

// FindByID returns the row with the given primary key. Absence is reported as found=false, not an error.
func (r *Repository[T]) FindByID(ctx context.Context, id int64) (T, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, r.selectList, r.ident)
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// FindOne returns the first row, by id, matching the predicate.
func (r *Repository[T]) FindOne(ctx context.Context, where Predicate) (T, bool, error) {
	var zero T
	var args argList
	conds, err := r.conditions(where, &args)
	if err != nil {
		return zero, false, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY id ASC LIMIT 1`, r.selectList, r.ident, whereSQL(conds))
	return r.scanOne(r.db.QueryRow(ctx, query, args...))
}

// FindAll returns every row matching the predicate, ordered by id.
func (r *Repository[T]) FindAll(ctx context.Context, where Predicate) ([]T, error) {
	var args argList
	conds, err := r.conditions(where, &args)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY id ASC`, r.selectList, r.ident, whereSQL(conds))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table.Name, err)
	}
	return r.collect(rows)
}

// Create inserts a row and returns it as stored. The store assigns id, external_id and timestamps.
func (r *Repository[T]) Create(ctx context.Context, fields Fields) (T, error) {
	var zero T
	fields = r.stampCreate(ctx, fields)
	if err := r.checkWritable(fields); err != nil {
		return zero, err
	}

	if len(fields) == 0 {
		query := fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES RETURNING %s`, r.ident, r.selectList)
		return r.table.Scan(r.db.QueryRow(ctx, query))
	}

	keys := sortedKeys(fields)
	var args argList
	placeholders := make([]string, 0, len(keys))
	for _, key := range keys {
		placeholders = append(placeholders, args.next(fields[key]))
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		r.ident, strings.Join(keys, ", "), strings.Join(placeholders, ", "), r.selectList)
	return r.table.Scan(r.db.QueryRow(ctx, query, args...))
}

// Update applies only the given fields and returns the row after the write.
// An empty field set leaves the row untouched and returns it as is.
func (r *Repository[T]) Update(ctx context.Context, id int64, fields Fields) (T, bool, error) {
	var zero T
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}

	fields = r.stampUpdate(ctx, fields)
	if err := r.checkWritable(fields); err != nil {
		return zero, false, err
	}

	var args argList
	sets := r.assignments(fields, &args)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = %s RETURNING %s`,
		r.ident, strings.Join(sets, ", "), args.next(id), r.selectList)
	return r.scanOne(r.db.QueryRow(ctx, query, args...))
}

// Delete removes the row permanently and reports whether it existed.
func (r *Repository[T]) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.ident), id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", r.table.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SoftDelete sets is_deleted and deleted_at in one statement. Rows already deleted are not touched.
func (r *Repository[T]) SoftDelete(ctx context.Context, id int64) (bool, error) {
	return r.setDeleted(ctx, id, true)
}

// Restore clears is_deleted and deleted_at in one statement. Live rows are not touched.
func (r *Repository[T]) Restore(ctx context.Context, id int64) (bool, error) {
	return r.setDeleted(ctx, id, false)
}

func (r *Repository[T]) setDeleted(ctx context.Context, id int64, deleted bool) (bool, error) {
	if !r.has(columnIsDeleted) || !r.has(columnDeletedAt) {
		return false, ErrSoftDeleteUnsupported
	}

	var args argList
	sets := []string{"is_deleted = TRUE", "deleted_at = NOW()"}
	current := "FALSE"
	if !deleted {
		sets = []string{"is_deleted = FALSE", "deleted_at = NULL"}
		current = "TRUE"
	}
	if r.has(columnUpdatedAt) {
		sets = append(sets, "updated_at = NOW()")
	}
	if actor, ok := actorFromContext(ctx); ok && r.canWrite(columnUpdatedBy) {
		sets = append(sets, columnUpdatedBy+" = "+args.next(actor))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = %s AND is_deleted = %s`,
		r.ident, strings.Join(sets, ", "), args.next(id), current)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Exists reports whether any row matches the predicate.
func (r *Repository[T]) Exists(ctx context.Context, where Predicate) (bool, error) {
	var args argList
	conds, err := r.conditions(where, &args)
	if err != nil {
		return false, err
	}

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s%s)`, r.ident, whereSQL(conds))
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Count returns the number of rows matching the predicate.
func (r *Repository[T]) Count(ctx context.Context, where Predicate) (int64, error) {
	var args argList
	conds, err := r.conditions(where, &args)
	if err != nil {
		return 0, err
	}
	return r.count(ctx, conds, args)
}

func (r *Repository[T]) count(ctx context.Context, conds []string, args argList) (int64, error) {
	var total int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, r.ident, whereSQL(conds))
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table.Name, err)
	}
	return total, nil
}

// ValueExists reports whether a live row other than excludeID holds value in column.
// It backs the advisory uniqueness checks; the store's unique indexes remain authoritative.
func (r *Repository[T]) ValueExists(ctx context.Context, column string, value any, excludeID *int64) (bool, error) {
	if !r.has(column) {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, column)
	}

	var args argList
	conds := []string{fmt.Sprintf("%s = %s", column, args.next(value))}
	if r.has(columnIsDeleted) {
		conds = append(conds, "is_deleted = FALSE")
	}
	if excludeID != nil {
		conds = append(conds, "id <> "+args.next(*excludeID))
	}

	total, err := r.count(ctx, conds, args)
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

// BulkCreate inserts all rows with one multi-row INSERT. Columns absent from a row take their default.
func (r *Repository[T]) BulkCreate(ctx context.Context, rows []Fields) ([]T, error) {
	if len(rows) == 0 {
		return []T{}, nil
	}

	union := make(map[string]struct{})
	stamped := make([]Fields, 0, len(rows))
	for _, row := range rows {
		row = r.stampCreate(ctx, row)
		if err := r.checkWritable(row); err != nil {
			return nil, err
		}
		for key := range row {
			union[key] = struct{}{}
		}
		stamped = append(stamped, row)
	}

	keys := sortedKeys(union)
	if len(keys) == 0 {
		keys = []string{columnID}
	}

	var args argList
	tuples := make([]string, 0, len(stamped))
	for _, row := range stamped {
		values := make([]string, 0, len(keys))
		for _, key := range keys {
			value, ok := row[key]
			if !ok {
				values = append(values, "DEFAULT")
				continue
			}
			values = append(values, args.next(value))
		}
		tuples = append(tuples, "("+strings.Join(values, ", ")+")")
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s RETURNING %s`,
		r.ident, strings.Join(keys, ", "), strings.Join(tuples, ", "), r.selectList)
	result, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("bulk insert %s: %w", r.table.Name, err)
	}
	return r.collect(result)
}

// BulkUpdate applies the same fields to every listed id and reports whether any row changed.
func (r *Repository[T]) BulkUpdate(ctx context.Context, ids []int64, fields Fields) (bool, error) {
	if len(ids) == 0 || len(fields) == 0 {
		return false, nil
	}

	fields = r.stampUpdate(ctx, fields)
	if err := r.checkWritable(fields); err != nil {
		return false, err
	}

	var args argList
	sets := r.assignments(fields, &args)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ANY(%s)`, r.ident, strings.Join(sets, ", "), args.next(ids))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("bulk update %s: %w", r.table.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// BulkDelete permanently removes every listed id and reports whether any row matched.
func (r *Repository[T]) BulkDelete(ctx context.Context, ids []int64) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}

	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.ident), ids)
	if err != nil {
		return false, fmt.Errorf("bulk delete %s: %w", r.table.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// FindAllWithPagination returns one page of rows matching base AND the optional search condition.
func (r *Repository[T]) FindAllWithPagination(ctx context.Context, opts PageOptions, base Predicate) (Page[T], error) {
	opts = opts.WithDefaults()

	var args argList
	conds, err := r.conditions(base, &args)
	if err != nil {
		return Page[T]{}, err
	}

	search, err := r.searchCondition(opts.Search, opts.SearchFields, &args)
	if err != nil {
		return Page[T]{}, err
	}
	if search != "" {
		conds = append(conds, search)
	}

	orderSQL, err := r.orderBy(opts.SortBy, opts.SortOrder)
	if err != nil {
		return Page[T]{}, err
	}

	total, err := r.count(ctx, conds, args)
	if err != nil {
		return Page[T]{}, err
	}

	page := Page[T]{Data: []T{}, Pagination: NewPagination(total, opts.Page, opts.Limit)}
	offset := opts.Offset()
	if total == 0 || offset >= total {
		return page, nil
	}

	dataArgs := append(argList{}, args...)
	limitPH := dataArgs.next(opts.Limit)
	offsetPH := dataArgs.next(offset)

	query := fmt.Sprintf(`SELECT %s FROM %s%s %s LIMIT %s OFFSET %s`,
		r.selectList, r.ident, whereSQL(conds), orderSQL, limitPH, offsetPH)
	rows, err := r.db.Query(ctx, query, dataArgs...)
	if err != nil {
		return Page[T]{}, fmt.Errorf("list %s: %w", r.table.Name, err)
	}

	items, err := r.collect(rows)
	if err != nil {
		return Page[T]{}, err
	}
	page.Data = items
	return page, nil
}

func (r *Repository[T]) scanOne(row pgx.Row) (T, bool, error) {
	item, err := r.table.Scan(row)
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, false, nil
		}
		return zero, false, err
	}
	return item, true, nil
}

func (r *Repository[T]) collect(rows pgx.Rows) ([]T, error) {
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := r.table.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table.Name, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.table.Name, err)
	}
	return items, nil
}

func (r *Repository[T]) has(column string) bool {
	_, ok := r.columns[column]
	return ok
}

func (r *Repository[T]) canWrite(column string) bool {
	_, ok := r.writable[column]
	return ok
}

func (r *Repository[T]) checkWritable(fields Fields) error {
	for _, key := range sortedKeys(fields) {
		if !r.canWrite(key) {
			return fmt.Errorf("%w: %q is not writable on %s", ErrUnknownField, key, r.table.Name)
		}
	}
	return nil
}

// assignments renders SET entries for fields and appends updated_at when the table tracks it.
func (r *Repository[T]) assignments(fields Fields, args *argList) []string {
	keys := sortedKeys(fields)
	sets := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		sets = append(sets, fmt.Sprintf("%s = %s", key, args.next(fields[key])))
	}
	if r.has(columnUpdatedAt) {
		sets = append(sets, "updated_at = NOW()")
	}
	return sets
}
