package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/validation"
)

const maxBodyBytes = 1 << 20

// Envelope wraps single-record and message responses.
type Envelope struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a single JSON object into dst. Unknown fields are rejected.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return validation.New("body", "request body is required")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return validation.New("body", "request body is required")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return validation.New(typeErr.Field, fmt.Sprintf("%s should be %s", typeErr.Field, typeErr.Type.String()))
		}
		return validation.New("body", err.Error())
	}
	return nil
}

// PathID parses the {name} URL parameter as a positive integer id.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.New(name, "invalid "+name)
	}
	return id, nil
}

// PathUUID parses the {name} URL parameter as a UUID.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, validation.New(name, "invalid "+name)
	}
	return id, nil
}

// ListQuery parses page, limit, search, sortBy, sortOrder, status and is_active.
// sortBy must be one of sortable.
func ListQuery(r *http.Request, sortable []string) (persistence.ListParams, error) {
	q := r.URL.Query()
	fe := validation.FieldErrors{}
	params := persistence.ListParams{}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		switch {
		case err != nil || page < 1:
			fe.Add("page", "page should be a positive integer")
		case page > persistence.MaxPage:
			fe.Add("page", fmt.Sprintf("page should not exceed %d", persistence.MaxPage))
		}
		params.Page = page
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			fe.Add("limit", "limit should be a positive integer")
		}
		params.Limit = limit
	}

	params.Search = strings.TrimSpace(q.Get("search"))

	if sortBy := strings.TrimSpace(q.Get("sortBy")); sortBy != "" {
		if !slices.Contains(sortable, sortBy) {
			fe.Add("sortBy", fmt.Sprintf("sortBy should be one of: %s", strings.Join(sortable, ", ")))
		}
		params.SortBy = sortBy
	}
	if order := strings.ToUpper(strings.TrimSpace(q.Get("sortOrder"))); order != "" {
		fe.Enum("sortOrder", order, persistence.SortAsc, persistence.SortDesc)
		params.SortOrder = order
	}

	if status := strings.TrimSpace(q.Get("status")); status != "" {
		upper := strings.ToUpper(status)
		params.Status = &upper
	}
	if raw := q.Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			fe.Add("is_active", "is_active should be true or false")
		}
		params.IsActive = &active
	}

	if err := fe.Err(); err != nil {
		return persistence.ListParams{}, err
	}
	return params, nil
}

// BulkIDs is the body of the bulk-delete endpoints.
type BulkIDs struct {
	IDs []int64 `json:"ids"`
}

// DecodeBulkIDs reads and checks a non-empty list of positive ids.
func DecodeBulkIDs(r *http.Request) ([]int64, error) {
	var body BulkIDs
	if err := DecodeJSON(r, &body); err != nil {
		return nil, err
	}
	if len(body.IDs) == 0 {
		return nil, validation.New("ids", "ids should be a non-empty array")
	}
	for _, id := range body.IDs {
		if id <= 0 {
			return nil, validation.New("ids", "all ids should be positive integers")
		}
	}
	return body.IDs, nil
}
