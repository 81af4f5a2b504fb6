package requesttrace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
)

func TestIntoContextAndFromContext(t *testing.T) {
	audit := AuditInfo{ActorKind: ActorKindEmployee, UserID: ptr("emp-123"), RequestID: "req-abc"}

	ctx := IntoContext(context.Background(), audit)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, audit, got)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)

	require.Equal(t, ActorKindAnonymous, FromContextOrAnonymous(context.Background()).ActorKind)
}

func TestFromCredentials(t *testing.T) {
	creds := &platformauth.Credentials{Subject: "emp-456", EmployeeID: 7, Role: platformauth.RoleManager}

	audit, err := FromCredentials(creds, "req-xyz")
	require.NoError(t, err)
	require.Equal(t, ActorKindEmployee, audit.ActorKind)
	require.NotNil(t, audit.UserID)
	require.Equal(t, "emp-456", *audit.UserID)
	require.Equal(t, platformauth.RoleManager, audit.Role)
	require.Equal(t, "req-xyz", audit.RequestID)
}

func TestFromCredentialsMissingSubject(t *testing.T) {
	_, err := FromCredentials(&platformauth.Credentials{}, "req-1")
	require.Error(t, err)

	_, err = FromCredentials(nil, "req-1")
	require.Error(t, err)
}

func TestSystem(t *testing.T) {
	audit := System("req-sys")
	require.Equal(t, ActorKindSystem, audit.ActorKind)
	require.Nil(t, audit.UserID)
}

func ptr[T any](v T) *T { return &v }
