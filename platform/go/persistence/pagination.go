package persistence

import (
	"context"
	"math"
	"strings"
)

const (
	DefaultPage   = 1
	DefaultLimit  = 10
	MaxLimit      = 100
	MaxPage       = 1_000_000
	DefaultSortBy = "created_at"
	SortAsc       = "ASC"
	SortDesc      = "DESC"
)

// PageOptions controls FindAllWithPagination. Zero values take the package defaults.
type PageOptions struct {
	Page         int
	Limit        int
	Search       string
	SearchFields []string
	SortBy       string
	SortOrder    string
}

// WithDefaults fills unset values and clamps Limit to MaxLimit.
func (o PageOptions) WithDefaults() PageOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if strings.TrimSpace(o.SortBy) == "" {
		o.SortBy = DefaultSortBy
	}
	if strings.TrimSpace(o.SortOrder) == "" {
		o.SortOrder = SortDesc
	}
	return o
}

// Offset is the number of rows skipped before the page starts.
// It saturates at math.MaxInt64 instead of wrapping for very large pages.
func (o PageOptions) Offset() int64 {
	if o.Page <= 1 || o.Limit <= 0 {
		return 0
	}
	skip, limit := int64(o.Page-1), int64(o.Limit)
	if skip > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return skip * limit
}

// Pagination is the metadata returned alongside a page of rows.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination derives page counts and navigation flags from a total row count.
func NewPagination(total int64, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 && total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Page is one slice of a paginated result.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ListParams are the list query parameters shared by the entity stores.
type ListParams struct {
	PageOptions
	Status   *string
	IsActive *bool
}

// listLive pages over non-deleted rows, folding the optional status and is_active filters into the base filter.
func (r *Repository[T]) listLive(ctx context.Context, params ListParams, searchFields []string) (Page[T], error) {
	base := Predicate{columnIsDeleted: false}
	if params.Status != nil {
		if status := strings.TrimSpace(*params.Status); status != "" && r.has(columnStatus) {
			base[columnStatus] = status
		}
	}
	if params.IsActive != nil && r.has(columnIsActive) {
		base[columnIsActive] = *params.IsActive
	}

	opts := params.PageOptions
	opts.SearchFields = searchFields
	return r.FindAllWithPagination(ctx, opts, base)
}
