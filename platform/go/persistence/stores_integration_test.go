package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStoresIntegration(t *testing.T) {
	t.Parallel()

	pool := startPostgres(t)
	ctx := context.Background()

	users, err := NewUserStore(pool)
	require.NoError(t, err)
	employees, err := NewEmployeeStore(pool)
	require.NoError(t, err)
	tournaments, err := NewTournamentStore(pool)
	require.NoError(t, err)
	sessions, err := NewEmployeeSessionStore(pool)
	require.NoError(t, err)

	t.Run("create then find returns the input fields", func(t *testing.T) {
		created, err := users.Create(ctx, Fields{
			"first_name":      "Asha",
			"last_name":       "Rao",
			"email":           "asha@example.com",
			"whatsapp_number": "+919800000001",
			"upi_id":          "asha@upi",
		})
		require.NoError(t, err)
		require.NotZero(t, created.ID)
		require.NotEqual(t, uuid.Nil, created.ExternalID)
		require.True(t, created.IsActive)
		require.False(t, created.IsDeleted)
		require.Equal(t, "ACTIVE", created.Status)

		found, ok, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Asha", *found.FirstName)
		require.Equal(t, "asha@example.com", found.Email)
		require.Equal(t, "asha@upi", *found.UPIID)

		byExternal, ok, err := users.FindByExternalID(ctx, created.ExternalID)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, created.ID, byExternal.ID)
	})

	t.Run("find by id reports absence without error", func(t *testing.T) {
		_, ok, err := users.FindByID(ctx, 987654)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("update touches only the given fields", func(t *testing.T) {
		created, err := users.Create(ctx, Fields{"email": "partial@example.com", "first_name": "Before", "last_name": "Kept"})
		require.NoError(t, err)

		updated, ok, err := users.Update(ctx, created.ID, Fields{"first_name": "After"})
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "After", *updated.FirstName)
		require.Equal(t, "Kept", *updated.LastName)
		require.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

		_, ok, err = users.Update(ctx, 987654, Fields{"first_name": "Ghost"})
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("soft delete then restore round trips the marker pair", func(t *testing.T) {
		created, err := users.Create(ctx, Fields{"email": "toggle@example.com"})
		require.NoError(t, err)

		ok, err := users.SoftDelete(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, ok)

		deleted, found, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, found)
		require.True(t, deleted.IsDeleted)
		require.NotNil(t, deleted.DeletedAt)

		again, err := users.SoftDelete(ctx, created.ID)
		require.NoError(t, err)
		require.False(t, again)

		ok, err = users.Restore(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, ok)

		restored, found, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, found)
		require.False(t, restored.IsDeleted)
		require.Nil(t, restored.DeletedAt)

		ok, err = users.Restore(ctx, created.ID)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("delete after soft delete removes the row", func(t *testing.T) {
		created, err := users.Create(ctx, Fields{"email": "gone@example.com"})
		require.NoError(t, err)

		_, err = users.SoftDelete(ctx, created.ID)
		require.NoError(t, err)

		ok, err := users.Delete(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, ok)

		_, found, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.False(t, found)

		ok, err = users.Delete(ctx, created.ID)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("uniqueness checks exclude self and deleted rows", func(t *testing.T) {
		created, err := users.Create(ctx, Fields{"email": "unique@example.com", "upi_id": "unique@upi"})
		require.NoError(t, err)

		exists, err := users.EmailExists(ctx, "unique@example.com", &created.ID)
		require.NoError(t, err)
		require.False(t, exists)

		exists, err = users.EmailExists(ctx, "unique@example.com", nil)
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = users.UPIIDExists(ctx, "unique@upi", nil)
		require.NoError(t, err)
		require.True(t, exists)

		_, err = users.Create(ctx, Fields{"email": "unique@example.com"})
		require.Error(t, err)
		require.True(t, IsUniqueViolation(err))

		_, err = users.SoftDelete(ctx, created.ID)
		require.NoError(t, err)

		exists, err = users.EmailExists(ctx, "unique@example.com", nil)
		require.NoError(t, err)
		require.False(t, exists)

		replacement, err := users.Create(ctx, Fields{"email": "unique@example.com"})
		require.NoError(t, err)

		_, err = users.Restore(ctx, created.ID)
		require.True(t, IsUniqueViolation(err))

		_, err = users.Delete(ctx, replacement.ID)
		require.NoError(t, err)
	})

	t.Run("store constraint errors propagate untranslated", func(t *testing.T) {
		_, err := employees.Create(ctx, Fields{"first_name": "No Email"})
		require.True(t, IsNotNullViolation(err))

		_, err = employees.Create(ctx, Fields{"email": "bad-role@example.com", "role": "OWNER"})
		require.True(t, IsCheckViolation(err))

		_, err = sessions.Create(ctx, Fields{
			"employee_id": int64(987654),
			"token_id":    uuid.New(),
			"expires_at":  time.Now().Add(time.Hour),
		})
		require.True(t, IsForeignKeyViolation(err))
	})

	t.Run("pagination totals are independent of page and limit", func(t *testing.T) {
		rows := make([]Fields, 0, 25)
		for i := range 25 {
			rows = append(rows, Fields{"title": fmt.Sprintf("Page Cup %02d", i), "status": "LIVE"})
		}
		created, err := tournaments.BulkCreate(ctx, rows)
		require.NoError(t, err)
		require.Len(t, created, 25)

		live := "LIVE"
		for page := 1; page <= 4; page++ {
			result, err := tournaments.GetTournamentsWithPagination(ctx, ListParams{
				PageOptions: PageOptions{Page: page, Limit: 10, Search: "page cup", SortBy: "title", SortOrder: "asc"},
				Status:      &live,
			})
			require.NoError(t, err)
			require.LessOrEqual(t, len(result.Data), 10)
			require.Equal(t, int64(25), result.Pagination.Total)
			require.Equal(t, 3, result.Pagination.TotalPages)
			require.Equal(t, page < 3, result.Pagination.HasNext)
			require.Equal(t, page > 1, result.Pagination.HasPrev)
		}

		first, err := tournaments.GetTournamentsWithPagination(ctx, ListParams{
			PageOptions: PageOptions{Page: 1, Limit: 10, Search: "page cup", SortBy: "title", SortOrder: "asc"},
		})
		require.NoError(t, err)
		require.Equal(t, "Page Cup 00", first.Data[0].Title)

		total, err := tournaments.Count(ctx, Predicate{"status": "LIVE", "is_deleted": false})
		require.NoError(t, err)
		require.Equal(t, int64(25), total)

		ids := make([]int64, 0, len(created))
		for _, tour := range created {
			ids = append(ids, tour.ID)
		}
		ok, err := tournaments.BulkUpdate(ctx, ids, Fields{"status": "CLOSED"})
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = tournaments.BulkDelete(ctx, ids)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("search matches titles case-insensitively", func(t *testing.T) {
		rules := json.RawMessage(`{"format":"single elimination"}`)
		summer, err := tournaments.Create(ctx, Fields{"title": "Summer Cup", "slug": SlugFromTitle("Summer Cup"), "rules": rules})
		require.NoError(t, err)
		require.JSONEq(t, string(rules), string(summer.Rules))

		winter, err := tournaments.Create(ctx, Fields{"title": "Winter Cup"})
		require.NoError(t, err)
		require.Nil(t, winter.Rules)

		_, err = tournaments.Create(ctx, Fields{"title": "Spring League"})
		require.NoError(t, err)

		result, err := tournaments.FindAllWithPagination(ctx,
			PageOptions{Search: "cup", SearchFields: []string{"title"}, SortBy: "title", SortOrder: "ASC"},
			Predicate{"is_deleted": false},
		)
		require.NoError(t, err)
		require.Len(t, result.Data, 2)
		require.Equal(t, "Summer Cup", result.Data[0].Title)
		require.Equal(t, "Winter Cup", result.Data[1].Title)

		bySlug, ok, err := tournaments.FindBySlug(ctx, "summer-cup")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, summer.ID, bySlug.ID)

		_, err = tournaments.SoftDelete(ctx, winter.ID)
		require.NoError(t, err)

		result, err = tournaments.GetTournamentsWithPagination(ctx, ListParams{
			PageOptions: PageOptions{Search: "CUP"},
			IsActive:    boolPtr(true),
		})
		require.NoError(t, err)
		require.Len(t, result.Data, 1)
		require.Equal(t, "Summer Cup", result.Data[0].Title)
	})

	t.Run("bulk delete reports whether anything matched", func(t *testing.T) {
		a, err := users.Create(ctx, Fields{"email": "bulk-a@example.com"})
		require.NoError(t, err)
		b, err := users.Create(ctx, Fields{"email": "bulk-b@example.com"})
		require.NoError(t, err)

		ok, err := users.BulkDelete(ctx, []int64{a.ID, b.ID, 987654})
		require.NoError(t, err)
		require.True(t, ok)

		for _, id := range []int64{a.ID, b.ID} {
			_, found, err := users.FindByID(ctx, id)
			require.NoError(t, err)
			require.False(t, found)
		}

		ok, err = users.BulkDelete(ctx, []int64{a.ID, b.ID})
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("predicate lookups", func(t *testing.T) {
		created, err := employees.Create(ctx, Fields{
			"email":           "lead@example.com",
			"whatsapp_number": "+919800000099",
			"role":            "MANAGER",
			"password_hash":   "hash",
		})
		require.NoError(t, err)
		require.Equal(t, "MANAGER", created.Role)

		byEmail, ok, err := employees.FindByEmail(ctx, "lead@example.com")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "hash", *byEmail.PasswordHash)

		byPhone, ok, err := employees.FindByWhatsappNumber(ctx, "+919800000099")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, created.ID, byPhone.ID)

		exists, err := employees.Exists(ctx, Predicate{"role": "MANAGER", "deleted_at": nil})
		require.NoError(t, err)
		require.True(t, exists)

		all, err := employees.FindAll(ctx, Predicate{"role": "ADMIN"})
		require.NoError(t, err)
		require.Empty(t, all)

		changed, ok, err := employees.ChangeStatus(ctx, created.ID, "SUSPENDED")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "SUSPENDED", changed.Status)

		logged, ok, err := employees.UpdateLastLogin(ctx, created.ID, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "10.0.0.1", *logged.LastLoginIP)
		require.NotNil(t, logged.LastLoginAt)
	})

	t.Run("sessions expire and cascade", func(t *testing.T) {
		emp, err := employees.Create(ctx, Fields{"email": "sessions@example.com"})
		require.NoError(t, err)

		live := uuid.New()
		_, err = sessions.Create(ctx, Fields{
			"employee_id": emp.ID,
			"token_id":    live,
			"device_type": "web",
			"expires_at":  time.Now().Add(time.Hour),
		})
		require.NoError(t, err)
		_, err = sessions.Create(ctx, Fields{
			"employee_id": emp.ID,
			"token_id":    uuid.New(),
			"expires_at":  time.Now().Add(-time.Hour),
		})
		require.NoError(t, err)

		removed, err := sessions.DeleteExpired(ctx, time.Now())
		require.NoError(t, err)
		require.Equal(t, int64(1), removed)

		found, ok, err := sessions.FindByTokenID(ctx, live)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, emp.ID, found.EmployeeID)
		require.Equal(t, "web", *found.DeviceType)

		list, err := sessions.FindByEmployeeID(ctx, emp.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)

		_, err = employees.Delete(ctx, emp.ID)
		require.NoError(t, err)

		_, ok, err = sessions.FindByTokenID(ctx, live)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("created_by is caller supplied", func(t *testing.T) {
		created, err := users.Create(ctx, Fields{"email": "audit@example.com", "created_by": "seed"})
		require.NoError(t, err)
		require.Equal(t, "seed", *created.CreatedBy)
		require.Nil(t, created.UpdatedBy)

		active, err := users.FindAllActive(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, active)

		byEmail, ok, err := users.FindByEmail(ctx, "audit@example.com")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, created.ID, byEmail.ID)

		pointered, err := users.Create(ctx, Fields{"email": "pointer@example.com", "first_name": strPtr("Ptr")})
		require.NoError(t, err)
		require.Equal(t, "Ptr", *pointered.FirstName)
	})
}
