package persistence

import (
	"context"
	"maps"

	"github.com/zenGate-Global/tournament-admin/platform/go/requesttrace"
)

// actorFromContext returns the authenticated actor recorded by the request trace middleware.
func actorFromContext(ctx context.Context) (string, bool) {
	audit, ok := requesttrace.FromContext(ctx)
	if !ok || audit.UserID == nil || *audit.UserID == "" {
		return "", false
	}
	return *audit.UserID, true
}

// stampCreate fills created_by/updated_by from the request actor unless the caller set them.
func (r *Repository[T]) stampCreate(ctx context.Context, fields Fields) Fields {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return fields
	}

	out := maps.Clone(fields)
	if out == nil {
		out = Fields{}
	}
	for _, column := range []string{columnCreatedBy, columnUpdatedBy} {
		if _, set := out[column]; !set && r.canWrite(column) {
			out[column] = actor
		}
	}
	return out
}

// stampUpdate fills updated_by from the request actor unless the caller set it.
func (r *Repository[T]) stampUpdate(ctx context.Context, fields Fields) Fields {
	actor, ok := actorFromContext(ctx)
	if !ok || !r.canWrite(columnUpdatedBy) {
		return fields
	}
	if _, set := fields[columnUpdatedBy]; set {
		return fields
	}

	out := maps.Clone(fields)
	out[columnUpdatedBy] = actor
	return out
}
