package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zenGate-Global/tournament-admin/domains/users/be/repo"
	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/resource"
	"github.com/zenGate-Global/tournament-admin/platform/go/validation"
)

const (
	msgEmailTaken    = "email already exists"
	msgWhatsappTaken = "whatsapp number already exists"
	msgUPITaken      = "upi id already exists"
)

// SortableFields are the columns the users list may be ordered by.
var SortableFields = []string{"created_at", "updated_at", "first_name", "last_name", "email", "status", "last_login_at"}

// CreateInput represents the payload required to create a new user.
type CreateInput struct {
	FirstName      *string
	LastName       *string
	Email          string
	WhatsappNumber *string
	CountryCode    *string
	Password       *string
	UPIID          *string
	ProfilePicture *string
	Avatar         *string
	Role           *string
	Status         *string
	IsVerified     *bool
	IsActive       *bool
}

// UpdateInput carries the fields to change. Nil fields are left untouched.
type UpdateInput struct {
	FirstName      *string
	LastName       *string
	Email          *string
	WhatsappNumber *string
	CountryCode    *string
	Password       *string
	UPIID          *string
	ProfilePicture *string
	Avatar         *string
	Role           *string
	Status         *string
	IsVerified     *bool
	IsActive       *bool
}

// Service defines the business operations for the users domain.
type Service interface {
	List(ctx context.Context, params persistence.ListParams) (persistence.Page[persistence.User], error)
	Get(ctx context.Context, id int64) (persistence.User, error)
	GetByExternalID(ctx context.Context, id uuid.UUID) (persistence.User, error)
	Create(ctx context.Context, input CreateInput) (persistence.User, error)
	Update(ctx context.Context, id int64, input UpdateInput) (persistence.User, error)
	ChangeStatus(ctx context.Context, id int64, status string) (persistence.User, error)
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	Purge(ctx context.Context, id int64) error
	BulkPurge(ctx context.Context, ids []int64) error
}

type service struct {
	repo      repo.Repository
	lifecycle resource.Lifecycle[persistence.User]
	hash      func(string) (string, error)
}

// New constructs a users Service instance backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("users repository is required")
	}
	return &service{
		repo: r,
		lifecycle: resource.NewLifecycle[persistence.User](r, "user",
			func(u persistence.User) bool { return u.IsDeleted },
			map[string]string{
				"users_email_live_key":           msgEmailTaken,
				"users_whatsapp_number_live_key": msgWhatsappTaken,
				"users_upi_id_live_key":          msgUPITaken,
			}),
		hash: platformauth.HashPassword,
	}
}

func (s *service) List(ctx context.Context, params persistence.ListParams) (persistence.Page[persistence.User], error) {
	if params.Status != nil {
		if err := checkStatus(*params.Status); err != nil {
			return persistence.Page[persistence.User]{}, err
		}
	}
	return s.repo.GetUsersWithPagination(ctx, params)
}

func (s *service) Get(ctx context.Context, id int64) (persistence.User, error) {
	return s.lifecycle.Live(ctx, id)
}

func (s *service) GetByExternalID(ctx context.Context, id uuid.UUID) (persistence.User, error) {
	return s.lifecycle.LiveByExternalID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateInput) (persistence.User, error) {
	fieldErrors := validation.FieldErrors{}
	fields := persistence.Fields{}

	email := strings.ToLower(fieldErrors.Required("email", input.Email))
	if email != "" && !validation.Email(email) {
		fieldErrors.Add("email", "email should be valid email")
	}
	fields["email"] = email

	s.applyCommon(fieldErrors, fields, commonInput{
		FirstName: input.FirstName, LastName: input.LastName, WhatsappNumber: input.WhatsappNumber,
		CountryCode: input.CountryCode, UPIID: input.UPIID, ProfilePicture: input.ProfilePicture,
		Avatar: input.Avatar, Role: input.Role, Status: input.Status,
		IsVerified: input.IsVerified, IsActive: input.IsActive,
	})
	checkPassword(fieldErrors, input.Password)

	if err := fieldErrors.Err(); err != nil {
		return persistence.User{}, err
	}

	if err := s.checkUnique(ctx, fields, nil); err != nil {
		return persistence.User{}, err
	}
	if err := s.setPasswordHash(fields, input.Password); err != nil {
		return persistence.User{}, err
	}

	created, err := s.repo.Create(ctx, fields)
	if err != nil {
		return persistence.User{}, s.lifecycle.MapConflict(err)
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (persistence.User, error) {
	existing, err := s.lifecycle.Live(ctx, id)
	if err != nil {
		return persistence.User{}, err
	}

	fieldErrors := validation.FieldErrors{}
	fields := persistence.Fields{}

	if input.Email != nil {
		email := strings.ToLower(fieldErrors.Required("email", *input.Email))
		if email != "" && !validation.Email(email) {
			fieldErrors.Add("email", "email should be valid email")
		}
		fields["email"] = email
	}

	s.applyCommon(fieldErrors, fields, commonInput{
		FirstName: input.FirstName, LastName: input.LastName, WhatsappNumber: input.WhatsappNumber,
		CountryCode: input.CountryCode, UPIID: input.UPIID, ProfilePicture: input.ProfilePicture,
		Avatar: input.Avatar, Role: input.Role, Status: input.Status,
		IsVerified: input.IsVerified, IsActive: input.IsActive,
	})
	checkPassword(fieldErrors, input.Password)

	if err := fieldErrors.Err(); err != nil {
		return persistence.User{}, err
	}
	if len(fields) == 0 && input.Password == nil {
		return existing, nil
	}

	if err := s.checkUnique(ctx, fields, &existing.ID); err != nil {
		return persistence.User{}, err
	}
	if err := s.setPasswordHash(fields, input.Password); err != nil {
		return persistence.User{}, err
	}

	updated, found, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return persistence.User{}, s.lifecycle.MapConflict(err)
	}
	if !found {
		return s.lifecycle.Live(ctx, id)
	}
	return updated, nil
}

func (s *service) ChangeStatus(ctx context.Context, id int64, status string) (persistence.User, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if err := checkStatus(status); err != nil {
		return persistence.User{}, err
	}
	if _, err := s.lifecycle.Live(ctx, id); err != nil {
		return persistence.User{}, err
	}

	updated, found, err := s.repo.ChangeStatus(ctx, id, status)
	if err != nil {
		return persistence.User{}, err
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

type commonInput struct {
	FirstName, LastName, WhatsappNumber, CountryCode, UPIID *string
	ProfilePicture, Avatar, Role, Status                   *string
	IsVerified, IsActive                                   *bool
}

func (s *service) applyCommon(fieldErrors validation.FieldErrors, fields persistence.Fields, in commonInput) {
	persistence.SetText(fields, "first_name", in.FirstName)
	persistence.SetText(fields, "last_name", in.LastName)
	persistence.SetText(fields, "whatsapp_number", in.WhatsappNumber)
	persistence.SetText(fields, "country_code", in.CountryCode)
	persistence.SetText(fields, "upi_id", in.UPIID)
	persistence.SetText(fields, "profile_picture", in.ProfilePicture)
	persistence.SetText(fields, "avatar", in.Avatar)
	persistence.SetIfPresent(fields, "is_verified", in.IsVerified)
	persistence.SetIfPresent(fields, "is_active", in.IsActive)

	if number, ok := fields["whatsapp_number"].(string); ok && !validation.Phone(number) {
		fieldErrors.Add("whatsapp_number", "whatsapp_number should be a phone number")
	}

	if in.Role != nil {
		role := strings.TrimSpace(*in.Role)
		if role == "" {
			fieldErrors.Add("role", "role cannot be empty")
		}
		fields["role"] = role
	}

	if in.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*in.Status))
		fieldErrors.Enum("status", status, persistence.AccountStatuses...)
		fields["status"] = status
	}
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
	if upi, ok := fields["upi_id"].(string); ok {
		if err := resource.CheckUnique(ctx, s.repo.UPIIDExists, upi, excludeID, msgUPITaken); err != nil {
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

func checkStatus(status string) error {
	fieldErrors := validation.FieldErrors{}
	fieldErrors.Enum("status", status, persistence.AccountStatuses...)
	return fieldErrors.Err()
}
