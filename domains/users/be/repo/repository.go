package repo

import (
	"context"

	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/resource"
)

// Repository defines the persistence operations required by the users service.
type Repository interface {
	resource.Store[persistence.User]
	GetUsersWithPagination(ctx context.Context, params persistence.ListParams) (persistence.Page[persistence.User], error)
	Create(ctx context.Context, fields persistence.Fields) (persistence.User, error)
	Update(ctx context.Context, id int64, fields persistence.Fields) (persistence.User, bool, error)
	ChangeStatus(ctx context.Context, id int64, status string) (persistence.User, bool, error)
	EmailExists(ctx context.Context, email string, excludeID *int64) (bool, error)
	WhatsappNumberExists(ctx context.Context, number string, excludeID *int64) (bool, error)
	UPIIDExists(ctx context.Context, upiID string, excludeID *int64) (bool, error)
}

var _ Repository = (*persistence.UserStore)(nil)

// NewPostgresRepository returns the users store as the service repository.
func NewPostgresRepository(store *persistence.UserStore) Repository {
	if store == nil {
		panic("user store is required")
	}
	return store
}
