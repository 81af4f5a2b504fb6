package contracts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAllValidates(t *testing.T) {
	t.Parallel()

	docs, err := LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, len(Names))

	for name, doc := range docs {
		require.NotNil(t, doc.Components.SecuritySchemes["bearerAuth"], name)
		require.NotNil(t, doc.Paths.Find("/api/v1/"+name+"/{id}"), name)
		require.NotNil(t, doc.Paths.Find("/api/v1/"+name+"/bulk-delete"), name)
	}
}

func TestEmployeeAuthOperationsArePublic(t *testing.T) {
	t.Parallel()

	doc, err := Load(context.Background(), "employees")
	require.NoError(t, err)

	for _, path := range []string{"/api/v1/employees/login", "/api/v1/employees/register"} {
		item := doc.Paths.Find(path)
		require.NotNil(t, item, path)
		require.NotNil(t, item.Post.Security, path)
		require.Empty(t, *item.Post.Security, path)
	}

	logout := doc.Paths.Find("/api/v1/employees/logout")
	require.NotNil(t, logout)
	require.Nil(t, logout.Post.Security)
}

func TestLoadUnknown(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), "tenants")
	require.Error(t, err)
}

func TestPageParameterIsBounded(t *testing.T) {
	t.Parallel()

	docs, err := LoadAll(context.Background())
	require.NoError(t, err)

	for name, doc := range docs {
		page := doc.Components.Parameters["Page"]
		require.NotNil(t, page, name)
		schema := page.Value.Schema.Value
		require.NotNil(t, schema.Max, name)
		require.Equal(t, float64(1_000_000), *schema.Max, name)
	}

	sortBy := docs["tournaments"].Components.Parameters["SortBy"].Value.Schema.Value
	require.NotContains(t, sortBy.Enum, "entry_fee")
	require.NotContains(t, sortBy.Enum, "prizepool")
	require.Contains(t, sortBy.Enum, "tournament_start_date")
}
