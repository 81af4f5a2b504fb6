package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/resource"
)

// Repository defines the persistence operations required by the employees service.
type Repository interface {
	resource.Store[persistence.Employee]
	GetEmployeesWithPagination(ctx context.Context, params persistence.ListParams) (persistence.Page[persistence.Employee], error)
	FindByEmail(ctx context.Context, email string) (persistence.Employee, bool, error)
	FindByWhatsappNumber(ctx context.Context, number string) (persistence.Employee, bool, error)
	Create(ctx context.Context, fields persistence.Fields) (persistence.Employee, error)
	Update(ctx context.Context, id int64, fields persistence.Fields) (persistence.Employee, bool, error)
	ChangeStatus(ctx context.Context, id int64, status string) (persistence.Employee, bool, error)
	UpdateLastLogin(ctx context.Context, id int64, ip string) (persistence.Employee, bool, error)
	EmailExists(ctx context.Context, email string, excludeID *int64) (bool, error)
	WhatsappNumberExists(ctx context.Context, number string, excludeID *int64) (bool, error)
}

// SessionRepository stores the server side of issued employee tokens.
type SessionRepository interface {
	Create(ctx context.Context, fields persistence.Fields) (persistence.EmployeeSession, error)
	FindByTokenID(ctx context.Context, tokenID uuid.UUID) (persistence.EmployeeSession, bool, error)
	DeleteByTokenID(ctx context.Context, tokenID uuid.UUID) (bool, error)
	DeleteByEmployeeID(ctx context.Context, employeeID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

var (
	_ Repository        = (*persistence.EmployeeStore)(nil)
	_ SessionRepository = (*persistence.EmployeeSessionStore)(nil)
)

// NewPostgresRepository returns the employees store as the service repository.
func NewPostgresRepository(store *persistence.EmployeeStore) Repository {
	if store == nil {
		panic("employee store is required")
	}
	return store
}

// NewPostgresSessionRepository returns the sessions store as the auth service repository.
func NewPostgresSessionRepository(store *persistence.EmployeeSessionStore) SessionRepository {
	if store == nil {
		panic("employee session store is required")
	}
	return store
}
