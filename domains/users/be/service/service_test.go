package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/zenGate-Global/tournament-admin/platform/go/domainerr"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/validation"
)

type mockRepository struct {
	findByIDFn       func(ctx context.Context, id int64) (persistence.User, bool, error)
	findByExternalFn func(ctx context.Context, id uuid.UUID) (persistence.User, bool, error)
	listFn           func(ctx context.Context, params persistence.ListParams) (persistence.Page[persistence.User], error)
	createFn         func(ctx context.Context, fields persistence.Fields) (persistence.User, error)
	updateFn         func(ctx context.Context, id int64, fields persistence.Fields) (persistence.User, bool, error)
	changeStatusFn   func(ctx context.Context, id int64, status string) (persistence.User, bool, error)
	softDeleteFn     func(ctx context.Context, id int64) (bool, error)
	restoreFn        func(ctx context.Context, id int64) (bool, error)
	deleteFn         func(ctx context.Context, id int64) (bool, error)
	bulkDeleteFn     func(ctx context.Context, ids []int64) (bool, error)
	emailExistsFn    func(ctx context.Context, email string, excludeID *int64) (bool, error)
	whatsappFn       func(ctx context.Context, number string, excludeID *int64) (bool, error)
	upiFn            func(ctx context.Context, upiID string, excludeID *int64) (bool, error)
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (persistence.User, bool, error) {
	if m.findByIDFn == nil {
		panic("findByIDFn not configured")
	}
	return m.findByIDFn(ctx, id)
}

func (m *mockRepository) FindByExternalID(ctx context.Context, id uuid.UUID) (persistence.User, bool, error) {
	if m.findByExternalFn == nil {
		panic("findByExternalFn not configured")
	}
	return m.findByExternalFn(ctx, id)
}

func (m *mockRepository) GetUsersWithPagination(ctx context.Context, params persistence.ListParams) (persistence.Page[persistence.User], error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, params)
}

func (m *mockRepository) Create(ctx context.Context, fields persistence.Fields) (persistence.User, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, fields)
}

func (m *mockRepository) Update(ctx context.Context, id int64, fields persistence.Fields) (persistence.User, bool, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, id, fields)
}

func (m *mockRepository) ChangeStatus(ctx context.Context, id int64, status string) (persistence.User, bool, error) {
	if m.changeStatusFn == nil {
		panic("changeStatusFn not configured")
	}
	return m.changeStatusFn(ctx, id, status)
}

func (m *mockRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	if m.softDeleteFn == nil {
		panic("softDeleteFn not configured")
	}
	return m.softDeleteFn(ctx, id)
}

func (m *mockRepository) Restore(ctx context.Context, id int64) (bool, error) {
	if m.restoreFn == nil {
		panic("restoreFn not configured")
	}
	return m.restoreFn(ctx, id)
}

func (m *mockRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, id)
}

func (m *mockRepository) BulkDelete(ctx context.Context, ids []int64) (bool, error) {
	if m.bulkDeleteFn == nil {
		panic("bulkDeleteFn not configured")
	}
	return m.bulkDeleteFn(ctx, ids)
}

func (m *mockRepository) EmailExists(ctx context.Context, email string, excludeID *int64) (bool, error) {
	if m.emailExistsFn == nil {
		panic("emailExistsFn not configured")
	}
	return m.emailExistsFn(ctx, email, excludeID)
}

func (m *mockRepository) WhatsappNumberExists(ctx context.Context, number string, excludeID *int64) (bool, error) {
	if m.whatsappFn == nil {
		panic("whatsappFn not configured")
	}
	return m.whatsappFn(ctx, number, excludeID)
}

func (m *mockRepository) UPIIDExists(ctx context.Context, upiID string, excludeID *int64) (bool, error) {
	if m.upiFn == nil {
		panic("upiFn not configured")
	}
	return m.upiFn(ctx, upiID, excludeID)
}

func noneExist(context.Context, string, *int64) (bool, error) { return false, nil }

func strPtr(v string) *string { return &v }

func newTestService(repo *mockRepository) *service {
	svc := New(repo).(*service)
	svc.hash = func(p string) (string, error) { return "hashed:" + p, nil }
	return svc
}

func TestServiceCreateSuccess(t *testing.T) {
	t.Parallel()

	repo := &mockRepository{emailExistsFn: noneExist, whatsappFn: noneExist, upiFn: noneExist}
	repo.createFn = func(ctx context.Context, fields persistence.Fields) (persistence.User, error) {
		require.Equal(t, "asha@example.com", fields["email"])
		require.Equal(t, "Asha", fields["first_name"])
		require.Equal(t, "+919876543210", fields["whatsapp_number"])
		require.Equal(t, persistence.AccountSuspended, fields["status"])
		require.Equal(t, "hashed:secret1", fields["password_hash"])
		require.NotContains(t, fields, "upi_id")
		return persistence.User{ID: 1, Email: "asha@example.com", ExternalID: uuid.New()}, nil
	}

	svc := newTestService(repo)
	created, err := svc.Create(context.Background(), CreateInput{
		Email:          " Asha@Example.com ",
		FirstName:      strPtr(" Asha "),
		WhatsappNumber: strPtr("+919876543210"),
		Status:         strPtr("suspended"),
		Password:       strPtr("secret1"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
}

func TestServiceCreateValidationError(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockRepository{})

	_, err := svc.Create(context.Background(), CreateInput{
		Email:          "not-an-email",
		WhatsappNumber: strPtr("call me"),
		Status:         strPtr("SLEEPING"),
		Password:       strPtr("123"),
	})

	validationErr, ok := validation.As(err)
	require.True(t, ok)
	require.Contains(t, validationErr.Fields, "email")
	require.Contains(t, validationErr.Fields, "whatsapp_number")
	require.Contains(t, validationErr.Fields, "status")
	require.Contains(t, validationErr.Fields, "password")

	_, err = svc.Create(context.Background(), CreateInput{})
	validationErr, ok = validation.As(err)
	require.True(t, ok)
	require.Equal(t, []string{"email is required"}, validationErr.Fields["email"])
}

func TestServiceCreateConflictFromPrecheck(t *testing.T) {
	t.Parallel()

	repo := &mockRepository{whatsappFn: noneExist, upiFn: noneExist}
	repo.emailExistsFn = func(ctx context.Context, email string, excludeID *int64) (bool, error) {
		require.Nil(t, excludeID)
		return true, nil
	}

	_, err := newTestService(repo).Create(context.Background(), CreateInput{Email: "taken@example.com"})
	require.ErrorIs(t, err, domainerr.ErrConflict)
	require.Equal(t, msgEmailTaken, err.Error())
}

func TestServiceCreateConflictFromStore(t *testing.T) {
	t.Parallel()

	repo := &mockRepository{emailExistsFn: noneExist, whatsappFn: noneExist, upiFn: noneExist}
	repo.createFn = func(context.Context, persistence.Fields) (persistence.User, error) {
		return persistence.User{}, &pgconn.PgError{Code: persistence.CodeUniqueViolation, ConstraintName: "users_upi_id_live_key"}
	}

	_, err := newTestService(repo).Create(context.Background(), CreateInput{Email: "race@example.com", UPIID: strPtr("race@upi")})
	require.ErrorIs(t, err, domainerr.ErrConflict)
	require.Equal(t, msgUPITaken, err.Error())
}

func TestServiceUpdateExcludesSelfFromUniqueness(t *testing.T) {
	t.Parallel()

	repo := &mockRepository{whatsappFn: noneExist, upiFn: noneExist}
	repo.findByIDFn = func(context.Context, int64) (persistence.User, bool, error) {
		return persistence.User{ID: 5, Email: "a@b.com"}, true, nil
	}
	repo.emailExistsFn = func(ctx context.Context, email string, excludeID *int64) (bool, error) {
		require.NotNil(t, excludeID)
		require.Equal(t, int64(5), *excludeID)
		return false, nil
	}
	repo.updateFn = func(ctx context.Context, id int64, fields persistence.Fields) (persistence.User, bool, error) {
		require.Equal(t, int64(5), id)
		require.Equal(t, persistence.Fields{"email": "a@b.com", "last_name": nil}, fields)
		return persistence.User{ID: 5, Email: "a@b.com"}, true, nil
	}

	_, err := newTestService(repo).Update(context.Background(), 5, UpdateInput{Email: strPtr("a@b.com"), LastName: strPtr("")})
	require.NoError(t, err)
}

func TestServiceUpdateDeletedIsNotFound(t *testing.T) {
	t.Parallel()

	repo := &mockRepository{}
	repo.findByIDFn = func(context.Context, int64) (persistence.User, bool, error) {
		return persistence.User{ID: 5, IsDeleted: true}, true, nil
	}

	_, err := newTestService(repo).Update(context.Background(), 5, UpdateInput{FirstName: strPtr("x")})
	require.ErrorIs(t, err, domainerr.ErrNotFound)
}

func TestServiceUpdateWithoutChangesReturnsCurrent(t *testing.T) {
	t.Parallel()

	repo := &mockRepository{}
	repo.findByIDFn = func(context.Context, int64) (persistence.User, bool, error) {
		return persistence.User{ID: 5, Email: "a@b.com"}, true, nil
	}

	got, err := newTestService(repo).Update(context.Background(), 5, UpdateInput{})
	require.NoError(t, err)
	require.Equal(t, "a@b.com", got.Email)
}

func TestServiceChangeStatus(t *testing.T) {
	t.Parallel()

	repo := &mockRepository{}
	repo.findByIDFn = func(context.Context, int64) (persistence.User, bool, error) {
		return persistence.User{ID: 3}, true, nil
	}
	repo.changeStatusFn = func(ctx context.Context, id int64, status string) (persistence.User, bool, error) {
		require.Equal(t, persistence.AccountBanned, status)
		return persistence.User{ID: id, Status: status}, true, nil
	}

	svc := newTestService(repo)
	got, err := svc.ChangeStatus(context.Background(), 3, "ban")
	require.NoError(t, err)
	require.Equal(t, persistence.AccountBanned, got.Status)

	_, err = svc.ChangeStatus(context.Background(), 3, "GONE")
	_, ok := validation.As(err)
	require.True(t, ok)
}

func TestServiceListRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockRepository{})
	status := "ARCHIVED"
	_, err := svc.List(context.Background(), persistence.ListParams{Status: &status})
	_, ok := validation.As(err)
	require.True(t, ok)
}

func TestServiceGetPropagatesStoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	repo := &mockRepository{findByIDFn: func(context.Context, int64) (persistence.User, bool, error) {
		return persistence.User{}, false, boom
	}}

	_, err := newTestService(repo).Get(context.Background(), 1)
	require.ErrorIs(t, err, boom)
}
