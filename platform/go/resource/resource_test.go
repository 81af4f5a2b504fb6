package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/zenGate-Global/tournament-admin/platform/go/domainerr"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
)

type record struct {
	ID      int64
	Deleted bool
}

type mockStore struct {
	findFn       func(ctx context.Context, id int64) (record, bool, error)
	softDeleteFn func(ctx context.Context, id int64) (bool, error)
	restoreFn    func(ctx context.Context, id int64) (bool, error)
	deleteFn     func(ctx context.Context, id int64) (bool, error)
	bulkDeleteFn func(ctx context.Context, ids []int64) (bool, error)
}

func (m *mockStore) FindByID(ctx context.Context, id int64) (record, bool, error) {
	if m.findFn == nil {
		panic("findFn not configured")
	}
	return m.findFn(ctx, id)
}

func (m *mockStore) FindByExternalID(ctx context.Context, _ uuid.UUID) (record, bool, error) {
	return m.FindByID(ctx, 0)
}

func (m *mockStore) SoftDelete(ctx context.Context, id int64) (bool, error) {
	if m.softDeleteFn == nil {
		panic("softDeleteFn not configured")
	}
	return m.softDeleteFn(ctx, id)
}

func (m *mockStore) Restore(ctx context.Context, id int64) (bool, error) {
	if m.restoreFn == nil {
		panic("restoreFn not configured")
	}
	return m.restoreFn(ctx, id)
}

func (m *mockStore) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, id)
}

func (m *mockStore) BulkDelete(ctx context.Context, ids []int64) (bool, error) {
	if m.bulkDeleteFn == nil {
		panic("bulkDeleteFn not configured")
	}
	return m.bulkDeleteFn(ctx, ids)
}

func newLifecycle(store *mockStore) Lifecycle[record] {
	return NewLifecycle[record](store, "widget", func(r record) bool { return r.Deleted }, map[string]string{
		"widgets_name_live_key": "name already exists",
	})
}

func TestLiveHidesDeletedAndAbsent(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	lc := newLifecycle(store)

	store.findFn = func(_ context.Context, id int64) (record, bool, error) {
		switch id {
		case 1:
			return record{ID: 1}, true, nil
		case 2:
			return record{ID: 2, Deleted: true}, true, nil
		default:
			return record{}, false, nil
		}
	}

	got, err := lc.Live(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.ID)

	_, err = lc.Live(context.Background(), 2)
	require.ErrorIs(t, err, domainerr.ErrNotFound)

	_, err = lc.Live(context.Background(), 3)
	require.ErrorIs(t, err, domainerr.ErrNotFound)

	_, err = lc.LiveByExternalID(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, domainerr.ErrNotFound)
}

func TestLivePropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	lc := newLifecycle(&mockStore{findFn: func(context.Context, int64) (record, bool, error) {
		return record{}, false, boom
	}})

	_, err := lc.Live(context.Background(), 1)
	require.ErrorIs(t, err, boom)
}

func TestDeleteRestorePurge(t *testing.T) {
	t.Parallel()

	store := &mockStore{
		softDeleteFn: func(_ context.Context, id int64) (bool, error) { return id == 1, nil },
		restoreFn:    func(_ context.Context, id int64) (bool, error) { return id == 1, nil },
		deleteFn:     func(_ context.Context, id int64) (bool, error) { return id == 1, nil },
		bulkDeleteFn: func(_ context.Context, ids []int64) (bool, error) { return ids[0] == 1, nil },
	}
	lc := newLifecycle(store)
	ctx := context.Background()

	require.NoError(t, lc.SoftDelete(ctx, 1))
	require.ErrorIs(t, lc.SoftDelete(ctx, 2), domainerr.ErrNotFound)
	require.NoError(t, lc.Restore(ctx, 1))
	require.ErrorIs(t, lc.Restore(ctx, 2), domainerr.ErrNotFound)
	require.NoError(t, lc.Purge(ctx, 1))
	require.ErrorIs(t, lc.Purge(ctx, 2), domainerr.ErrNotFound)
	require.NoError(t, lc.BulkPurge(ctx, []int64{1, 9}))
	require.ErrorIs(t, lc.BulkPurge(ctx, []int64{8, 9}), domainerr.ErrNotFound)
}

func TestRestoreCollisionIsConflict(t *testing.T) {
	t.Parallel()

	lc := newLifecycle(&mockStore{restoreFn: func(context.Context, int64) (bool, error) {
		return false, &pgconn.PgError{Code: persistence.CodeUniqueViolation, ConstraintName: "widgets_name_live_key"}
	}})

	err := lc.Restore(context.Background(), 1)
	require.ErrorIs(t, err, domainerr.ErrConflict)
	require.Equal(t, "name already exists", err.Error())
}

func TestMapConflictAndCheckUnique(t *testing.T) {
	t.Parallel()

	lc := newLifecycle(&mockStore{})

	other := errors.New("boom")
	require.Same(t, other, lc.MapConflict(other))

	err := lc.MapConflict(&pgconn.PgError{Code: persistence.CodeUniqueViolation, ConstraintName: "widgets_sku_key"})
	require.ErrorIs(t, err, domainerr.ErrConflict)
	require.Equal(t, "widget already exists", err.Error())

	var gotExclude *int64
	exists := func(_ context.Context, value string, excludeID *int64) (bool, error) {
		gotExclude = excludeID
		return value == "taken", nil
	}

	self := int64(5)
	require.NoError(t, CheckUnique(context.Background(), exists, "free", &self, "name already exists"))
	require.Equal(t, &self, gotExclude)
	require.ErrorIs(t, CheckUnique(context.Background(), exists, "taken", nil, "name already exists"), domainerr.ErrConflict)
}
