package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const EmployeesTable = "employees"

// Employee represents a row in the employees table.
type Employee struct {
	ID             int64      `json:"id"`
	ExternalID     uuid.UUID  `json:"external_id"`
	FirstName      *string    `json:"first_name"`
	LastName       *string    `json:"last_name"`
	Email          string     `json:"email"`
	WhatsappNumber *string    `json:"whatsapp_number"`
	PasswordHash   *string    `json:"-"`
	ProfilePicture *string    `json:"profile_picture"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	LastLoginIP    *string    `json:"last_login_ip"`
	LastLoginAt    *time.Time `json:"last_login_at"`
	IsActive       bool       `json:"is_active"`
	IsDeleted      bool       `json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at"`
	CreatedBy      *string    `json:"created_by"`
	UpdatedBy      *string    `json:"updated_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

var EmployeeSearchFields = []string{"first_name", "last_name", "email", "whatsapp_number"}

var employeeTable = Table[Employee]{
	Name: EmployeesTable,
	Columns: []string{
		"id", "external_id", "first_name", "last_name", "email", "whatsapp_number", "password_hash",
		"profile_picture", "role", "status", "last_login_ip", "last_login_at",
		"is_active", "is_deleted", "deleted_at", "created_by", "updated_by", "created_at", "updated_at",
	},
	Writable: []string{
		"first_name", "last_name", "email", "whatsapp_number", "password_hash", "profile_picture",
		"role", "status", "last_login_ip", "last_login_at", "is_active", "is_deleted", "deleted_at",
		"created_by", "updated_by",
	},
	Scan: scanEmployee,
}

// EmployeeStore is the employees repository.
type EmployeeStore struct {
	*Repository[Employee]
}

func NewEmployeeStore(db Querier) (*EmployeeStore, error) {
	repo, err := NewRepository(db, employeeTable)
	if err != nil {
		return nil, err
	}
	return &EmployeeStore{Repository: repo}, nil
}

func (s *EmployeeStore) FindByExternalID(ctx context.Context, id uuid.UUID) (Employee, bool, error) {
	return s.FindOne(ctx, Predicate{columnExternalID: id})
}

// FindByEmail returns the live employee holding email, password hash included.
func (s *EmployeeStore) FindByEmail(ctx context.Context, email string) (Employee, bool, error) {
	return s.FindOne(ctx, Predicate{"email": email, columnIsDeleted: false})
}

func (s *EmployeeStore) FindByWhatsappNumber(ctx context.Context, number string) (Employee, bool, error) {
	return s.FindOne(ctx, Predicate{"whatsapp_number": number, columnIsDeleted: false})
}

func (s *EmployeeStore) EmailExists(ctx context.Context, email string, excludeID *int64) (bool, error) {
	return s.ValueExists(ctx, "email", email, excludeID)
}

func (s *EmployeeStore) WhatsappNumberExists(ctx context.Context, number string, excludeID *int64) (bool, error) {
	return s.ValueExists(ctx, "whatsapp_number", number, excludeID)
}

func (s *EmployeeStore) UpdateLastLogin(ctx context.Context, id int64, ip string) (Employee, bool, error) {
	return s.Update(ctx, id, Fields{"last_login_ip": ip, "last_login_at": time.Now().UTC()})
}

func (s *EmployeeStore) ChangeStatus(ctx context.Context, id int64, status string) (Employee, bool, error) {
	return s.Update(ctx, id, Fields{columnStatus: status})
}

func (s *EmployeeStore) GetEmployeesWithPagination(ctx context.Context, params ListParams) (Page[Employee], error) {
	return s.listLive(ctx, params, EmployeeSearchFields)
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.ExternalID, &e.FirstName, &e.LastName, &e.Email, &e.WhatsappNumber, &e.PasswordHash,
		&e.ProfilePicture, &e.Role, &e.Status, &e.LastLoginIP, &e.LastLoginAt,
		&e.IsActive, &e.IsDeleted, &e.DeletedAt, &e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}
