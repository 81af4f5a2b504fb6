package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zenGate-Global/tournament-admin/domains/employees/be/repo"
	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/resource"
	"github.com/zenGate-Global/tournament-admin/platform/go/validation"
)

const (
	msgEmailTaken    = "email already exists"
	msgWhatsappTaken = "whatsapp number already exists"
)

// Roles lists the employee roles.
var Roles = []string{platformauth.RoleAdmin, platformauth.RoleManager, platformauth.RoleStaff}

// SortableFields are the columns the employees list may be ordered by.
var SortableFields = []string{"created_at", "updated_at", "first_name", "last_name", "email", "role", "status", "last_login_at"}

// CreateInput represents the payload required to create a new employee.
type CreateInput struct {
	FirstName       *string
	LastName        *string
	Email           string
	WhatsappNumber  *string
	Password        *string
	ConfirmPassword *string
	ProfilePicture  *string
	Role            *string
	Status          *string
	IsActive        *bool
}

// UpdateInput carries the fields to change. Nil fields are left untouched.
type UpdateInput struct {
	FirstName      *string
	LastName       *string
	Email          *string
	WhatsappNumber *string
	Password       *string
	ProfilePicture *string
	Role           *string
	Status         *string
	IsActive       *bool
}

// Service defines the business operations for the employees domain.
type Service interface {
	List(ctx context.Context, params persistence.ListParams) (persistence.Page[persistence.Employee], error)
	Get(ctx context.Context, id int64) (persistence.Employee, error)
	GetByExternalID(ctx context.Context, id uuid.UUID) (persistence.Employee, error)
	Create(ctx context.Context, input CreateInput) (persistence.Employee, error)
	Update(ctx context.Context, id int64, input UpdateInput) (persistence.Employee, error)
	ChangeStatus(ctx context.Context, id int64, status string) (persistence.Employee, error)
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	Purge(ctx context.Context, id int64) error
	BulkPurge(ctx context.Context, ids []int64) error
}

type service struct {
	repo      repo.Repository
	lifecycle resource.Lifecycle[persistence.Employee]
	hash      func(string) (string, error)
}

// New constructs an employees Service instance backed by the provided repository.
func New(r repo.Repository) Service {
	return newService(r)
}

func newService(r repo.Repository) *service {
	if r == nil {
		panic("employees repository is required")
	}
	return &service{
		repo: r,
		lifecycle: resource.NewLifecycle[persistence.Employee](r, "employee",
			func(e persistence.Employee) bool { return e.IsDeleted },
			map[string]string{
				"employees_email_live_key":           msgEmailTaken,
				"employees_whatsapp_number_live_key": msgWhatsappTaken,
			}),
		hash: platformauth.HashPassword,
	}
}

func (s *service) List(ctx context.Context, params persistence.ListParams) (persistence.Page[persistence.Employee], error) {
	if params.Status != nil {
		fieldErrors := validation.FieldErrors{}
		fieldErrors.Enum("status", *params.Status, persistence.AccountStatuses...)
		if err := fieldErrors.Err(); err != nil {
			return persistence.Page[persistence.Employee]{}, err
		}
	}
	return s.repo.GetEmployeesWithPagination(ctx, params)
}

func (s *service) Get(ctx context.Context, id int64) (persistence.Employee, error) {
	return s.lifecycle.Live(ctx, id)
}

func (s *service) GetByExternalID(ctx context.Context, id uuid.UUID) (persistence.Employee, error) {
	return s.lifecycle.LiveByExternalID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateInput) (persistence.Employee, error) {
	fieldErrors := validation.FieldErrors{}
	fields := persistence.Fields{}

	fields["email"] = normalizeEmail(fieldErrors, input.Email)
	applyProfile(fieldErrors, fields, profileInput{
		FirstName: input.FirstName, LastName: input.LastName, WhatsappNumber: input.WhatsappNumber,
		ProfilePicture: input.ProfilePicture, Role: input.Role, Status: input.Status, IsActive: input.IsActive,
	})
	checkPassword(fieldErrors, input.Password)
	if input.Password != nil && input.ConfirmPassword != nil && *input.Password != *input.ConfirmPassword {
		fieldErrors.Add("confirm_password", "passwords do not match")
	}

	if err := fieldErrors.Err(); err != nil {
		return persistence.Employee{}, err
	}

	return s.insert(ctx, fields, input.Password)
}

// insert runs the uniqueness pre-checks, hashes the password and writes the row.
func (s *service) insert(ctx context.Context, fields persistence.Fields, password *string) (persistence.Employee, error) {
	if err := s.checkUnique(ctx, fields, nil); err != nil {
		return persistence.Employee{}, err
	}
	if err := s.setPasswordHash(fields, password); err != nil {
		return persistence.Employee{}, err
	}

	created, err := s.repo.Create(ctx, fields)
	if err != nil {
		return persistence.Employee{}, s.lifecycle.MapConflict(err)
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (persistence.Employee, error) {
	existing, err := s.lifecycle.Live(ctx, id)
	if err != nil {
		return persistence.Employee{}, err
	}

	fieldErrors := validation.FieldErrors{}
	fields := persistence.Fields{}

	if input.Email != nil {
		fields["email"] = normalizeEmail(fieldErrors, *input.Email)
	}
	applyProfile(fieldErrors, fields, profileInput{
		FirstName: input.FirstName, LastName: input.LastName, WhatsappNumber: input.WhatsappNumber,
		ProfilePicture: input.ProfilePicture, Role: input.Role, Status: input.Status, IsActive: input.IsActive,
	})
	checkPassword(fieldErrors, input.Password)

	if err := fieldErrors.Err(); err != nil {
		return persistence.Employee{}, err
	}
	if len(fields) == 0 && input.Password == nil {
		return existing, nil
	}

	if err := s.checkUnique(ctx, fields, &existing.ID); err != nil {
		return persistence.Employee{}, err
	}
	if err := s.setPasswordHash(fields, input.Password); err != nil {
		return persistence.Employee{}, err
	}

	updated, found, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return persistence.Employee{}, s.lifecycle.MapConflict(err)
	}
	if !found {
		return s.lifecycle.Live(ctx, id)
	}
	return updated, nil
}

func (s *service) ChangeStatus(ctx context.Context, id int64, status string) (persistence.Employee, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	fieldErrors := validation.FieldErrors{}
	fieldErrors.Enum("status", status, persistence.AccountStatuses...)
	if err := fieldErrors.Err(); err != nil {
		return persistence.Employee{}, err
	}
	if _, err := s.lifecycle.Live(ctx, id); err != nil {
		return persistence.Employee{}, err
	}

	updated, found, err := s.repo.ChangeStatus(ctx, id, status)
	if err != nil {
		return persistence.Employee{}, err
	}
	if !found {
		return s.lifecycle.Live(ctx, id)
	}
	return updated, nil
}

func (s *service) SoftDelete(ctx context.Context, id int64) error {
	return s.lifecycle.SoftDelete(ctx, id)
}

func (s *service) Restore(ctx context.Context, id int64) error {
	return s.lifecycle.Restore(ctx, id)
}

func (s *service) Purge(ctx context.Context, id int64) error {
	return s.lifecycle.Purge(ctx, id)
}

func (s *service) BulkPurge(ctx context.Context, ids []int64) error {
	return s.lifecycle.BulkPurge(ctx, ids)
}

type profileInput struct {
	FirstName, LastName, WhatsappNumber, ProfilePicture, Role, Status *string
	IsActive                                                          *bool
}

func applyProfile(fieldErrors validation.FieldErrors, fields persistence.Fields, in profileInput) {
	persistence.SetText(fields, "first_name", in.FirstName)
	persistence.SetText(fields, "last_name", in.LastName)
	persistence.SetText(fields, "whatsapp_number", in.WhatsappNumber)
	persistence.SetText(fields, "profile_picture", in.ProfilePicture)
	persistence.SetIfPresent(fields, "is_active", in.IsActive)

	if number, ok := fields["whatsapp_number"].(string); ok && !validation.Phone(number) {
		fieldErrors.Add("whatsapp_number", "whatsapp_number should be a phone number")
	}
	if in.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*in.Role))
		fieldErrors.Enum("role", role, Roles...)
		fields["role"] = role
	}
	if in.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*in.Status))
		fieldErrors.Enum("status", status, persistence.AccountStatuses...)
		fields["status"] = status
	}
}

func normalizeEmail(fieldErrors validation.FieldErrors, raw string) string {
	email := strings.ToLower(fieldErrors.Required("email", raw))
	if email != "" && !validation.Email(email) {
		fieldErrors.Add("email", "email should be valid email")
	}
	return email
}

func (s *service) checkUnique(ctx context.Context, fields persistence.Fields, excludeID *int64) error {
	if email, ok := fields["email"].(string); ok {
		if err := resource.CheckUnique(ctx, s.repo.EmailExists, email, excludeID, msgEmailTaken); err != nil {
			return err
		}
	}
	if number, ok := fields["whatsapp_number"].(string); ok {
		if err := resource.CheckUnique(ctx, s.repo.WhatsappNumberExists, number, excludeID, msgWhatsappTaken); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) setPasswordHash(fields persistence.Fields, password *string) error {
	if password == nil {
		return nil
	}
	hash, err := s.hash(*password)
	if err != nil {
		return err
	}
	fields["password_hash"] = hash
	return nil
}

func checkPassword(fieldErrors validation.FieldErrors, password *string) {
	if password != nil && len(*password) < platformauth.MinPasswordLength {
		fieldErrors.Add("password", fmt.Sprintf("password should be at least %d characters", platformauth.MinPasswordLength))
	}
}
