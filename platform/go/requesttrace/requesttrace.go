package requesttrace

import (
	"context"
	"errors"

	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
)

type contextKey string

const (
	ctxAuditInfo contextKey = "TOURNAMENT_ADMIN_REQUEST_TRACE"
)

// ActorKind represents who initiated a request.
type ActorKind string

const (
	ActorKindEmployee  ActorKind = "employee"
	ActorKindAnonymous ActorKind = "anonymous"
	ActorKindSystem    ActorKind = "system"
)

// AuditInfo captures request-scoped metadata needed for traceability and auditing.
// UserID is the employee's external id and is set only when ActorKind is employee.
// It is what repositories stamp into created_by/updated_by.
type AuditInfo struct {
	ActorKind ActorKind
	UserID    *string
	Role      string
	RequestID string
}

// IntoContext stores the AuditInfo in the provided context.
func IntoContext(ctx context.Context, audit AuditInfo) context.Context {
	return context.WithValue(ctx, ctxAuditInfo, audit)
}

// FromContext extracts the AuditInfo from context, returning false when not present.
func FromContext(ctx context.Context) (AuditInfo, bool) {
	if ctx == nil {
		return AuditInfo{}, false
	}
	v := ctx.Value(ctxAuditInfo)
	if v == nil {
		return AuditInfo{}, false
	}

	audit, ok := v.(AuditInfo)
	return audit, ok
}

// FromContextOrAnonymous returns the AuditInfo stored on the context, or an anonymous record when absent.
func FromContextOrAnonymous(ctx context.Context) AuditInfo {
	if audit, ok := FromContext(ctx); ok {
		return audit
	}
	return Anonymous("")
}

// FromCredentials builds an AuditInfo from authenticated employee credentials and a request ID.
func FromCredentials(creds *platformauth.Credentials, requestID string) (AuditInfo, error) {
	if creds == nil {
		return AuditInfo{}, errors.New("credentials are required to build audit info")
	}
	if creds.Subject == "" {
		return AuditInfo{}, errors.New("subject is required to build audit info")
	}

	subject := creds.Subject
	return AuditInfo{
		ActorKind: ActorKindEmployee,
		UserID:    &subject,
		Role:      creds.Role,
		RequestID: requestID,
	}, nil
}

// Anonymous builds an AuditInfo for unauthenticated requests (login, register).
func Anonymous(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindAnonymous, RequestID: requestID}
}

// System builds an AuditInfo for background jobs and CLI commands.
func System(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindSystem, RequestID: requestID}
}
