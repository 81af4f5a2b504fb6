// Package resource implements the lifecycle rules every managed record shares:
// soft-deleted rows read as not found, restore only applies to deleted rows,
// and store unique violations surface as conflicts with a readable message.
package resource

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/zenGate-Global/tournament-admin/platform/go/domainerr"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
)

// Store is the slice of a persistence store the lifecycle needs.
type Store[T any] interface {
	FindByID(ctx context.Context, id int64) (T, bool, error)
	FindByExternalID(ctx context.Context, id uuid.UUID) (T, bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
	Restore(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	BulkDelete(ctx context.Context, ids []int64) (bool, error)
}

// Lifecycle applies the shared read/delete/restore rules for one record type.
type Lifecycle[T any] struct {
	store     Store[T]
	noun      string
	isDeleted func(T) bool
	conflicts map[string]string
}

// NewLifecycle binds store. noun names the record in messages ("user").
// conflicts maps unique constraint names to the message returned on violation.
func NewLifecycle[T any](store Store[T], noun string, isDeleted func(T) bool, conflicts map[string]string) Lifecycle[T] {
	return Lifecycle[T]{store: store, noun: noun, isDeleted: isDeleted, conflicts: conflicts}
}

func (l Lifecycle[T]) notFound() error {
	return domainerr.NotFound(l.noun + " not found")
}

// Live returns the record unless it is absent or soft-deleted.
func (l Lifecycle[T]) Live(ctx context.Context, id int64) (T, error) {
	record, found, err := l.store.FindByID(ctx, id)
	return l.live(record, found, err)
}

// LiveByExternalID is Live keyed by the public identifier.
func (l Lifecycle[T]) LiveByExternalID(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	if id == uuid.Nil {
		return zero, l.notFound()
	}
	record, found, err := l.store.FindByExternalID(ctx, id)
	return l.live(record, found, err)
}

func (l Lifecycle[T]) live(record T, found bool, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if !found || l.isDeleted(record) {
		return zero, l.notFound()
	}
	return record, nil
}

// SoftDelete hides a live record.
func (l Lifecycle[T]) SoftDelete(ctx context.Context, id int64) error {
	ok, err := l.store.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return l.notFound()
	}
	return nil
}

// Restore brings back a soft-deleted record. Restoring a value another live record took meanwhile is a conflict.
func (l Lifecycle[T]) Restore(ctx context.Context, id int64) error {
	ok, err := l.store.Restore(ctx, id)
	if err != nil {
		return l.MapConflict(err)
	}
	if !ok {
		return domainerr.NotFound("deleted " + l.noun + " not found")
	}
	return nil
}

// Purge removes the row permanently, deleted or not.
func (l Lifecycle[T]) Purge(ctx context.Context, id int64) error {
	ok, err := l.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return l.notFound()
	}
	return nil
}

// BulkPurge permanently removes every matching id. It is not found only when none matched.
func (l Lifecycle[T]) BulkPurge(ctx context.Context, ids []int64) error {
	ok, err := l.store.BulkDelete(ctx, ids)
	if err != nil {
		return err
	}
	if !ok {
		return domainerr.NotFound(fmt.Sprintf("no %s matched the given ids", l.noun))
	}
	return nil
}

// MapConflict turns a store unique violation into a conflict. Other errors pass through.
func (l Lifecycle[T]) MapConflict(err error) error {
	if !persistence.IsUniqueViolation(err) {
		return err
	}
	if msg, ok := l.conflicts[persistence.ConstraintName(err)]; ok {
		return domainerr.Conflict(msg)
	}
	return domainerr.Conflict(l.noun + " already exists")
}

// CheckUnique runs an advisory *Exists check and reports a conflict on hit.
func CheckUnique(ctx context.Context, exists func(context.Context, string, *int64) (bool, error), value string, excludeID *int64, message string) error {
	taken, err := exists(ctx, value, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domainerr.Conflict(message)
	}
	return nil
}
