package persistence

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// argList accumulates positional arguments and hands out their $n placeholders.
type argList []any

func (a *argList) next(value any) string {
	*a = append(*a, value)
	return "$" + strconv.Itoa(len(*a))
}

// conditions renders an exact-match predicate in stable column order.
func (r *Repository[T]) conditions(where Predicate, args *argList) ([]string, error) {
	keys := sortedKeys(where)
	conds := make([]string, 0, len(keys))
	for _, key := range keys {
		if !r.has(key) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, key)
		}
		value := where[key]
		if isNull(value) {
			conds = append(conds, key+" IS NULL")
			continue
		}
		conds = append(conds, fmt.Sprintf("%s = %s", key, args.next(value)))
	}
	return conds, nil
}

// searchCondition ORs a case-insensitive substring match over fields. Empty search or fields yield "".
func (r *Repository[T]) searchCondition(search string, fields []string, args *argList) (string, error) {
	term := strings.TrimSpace(search)
	if term == "" || len(fields) == 0 {
		return "", nil
	}

	for _, field := range fields {
		if !r.has(field) {
			return "", fmt.Errorf("%w: search field %q", ErrUnknownField, field)
		}
	}

	placeholder := args.next("%" + escapeLike(term) + "%")
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s::text ILIKE %s", field, placeholder))
	}
	return "(" + strings.Join(parts, " OR ") + ")", nil
}

func (r *Repository[T]) orderBy(sortBy, sortOrder string) (string, error) {
	column := strings.TrimSpace(sortBy)
	if column == "" {
		column = DefaultSortBy
	}
	if !r.has(column) {
		return "", fmt.Errorf("%w: sort field %q", ErrUnknownField, column)
	}

	direction := strings.ToUpper(strings.TrimSpace(sortOrder))
	if direction == "" {
		direction = SortDesc
	}
	if direction != SortAsc && direction != SortDesc {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, sortOrder)
	}

	return fmt.Sprintf("ORDER BY %s %s", column, direction), nil
}

func whereSQL(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// escapeLike makes LIKE metacharacters in term match literally.
func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

func sortedKeys[V any, M ~map[string]V](m M) []string {
	return slices.Sorted(maps.Keys(m))
}

func isNull(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
