package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zenGate-Global/tournament-admin/domains/employees/be/repo"
	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
	"github.com/zenGate-Global/tournament-admin/platform/go/domainerr"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/validation"
)

const msgInvalidCredentials = "invalid credentials"

// TokenIssuer signs employee access tokens.
type TokenIssuer interface {
	Issue(subject string, employeeID int64, email, role string) (platformauth.IssuedToken, error)
}

// RegisterInput is the public self-registration payload. The role is always STAFF.
type RegisterInput struct {
	FirstName       *string
	LastName        *string
	Email           string
	WhatsappNumber  *string
	Password        string
	ConfirmPassword string
	ProfilePicture  *string
}

// LoginInput identifies the employee by email or whatsapp number.
type LoginInput struct {
	Email          *string
	WhatsappNumber *string
	Password       string
	IPAddress      string
	UserAgent      string
	DeviceID       *string
	DeviceType     *string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Employee  persistence.Employee
}

// AuthService signs employees in and out and checks that a presented token still has a live session.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (persistence.Employee, error)
	Login(ctx context.Context, input LoginInput) (Session, error)
	Logout(ctx context.Context, creds *platformauth.Credentials) error
	Authenticate(ctx context.Context, creds *platformauth.Credentials) error
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type authService struct {
	employees *service
	sessions  repo.SessionRepository
	tokens    TokenIssuer
	check     func(hash, plain string) error
	now       func() time.Time
}

// NewAuth constructs the employee AuthService.
func NewAuth(r repo.Repository, sessions repo.SessionRepository, tokens TokenIssuer) AuthService {
	if sessions == nil {
		panic("employee session repository is required")
	}
	if tokens == nil {
		panic("token issuer is required")
	}
	return &authService{
		employees: newService(r),
		sessions:  sessions,
		tokens:    tokens,
		check:     platformauth.CheckPassword,
		now:       time.Now,
	}
}

func (a *authService) Register(ctx context.Context, input RegisterInput) (persistence.Employee, error) {
	fieldErrors := validation.FieldErrors{}
	fields := persistence.Fields{"role": platformauth.RoleStaff}

	fields["email"] = normalizeEmail(fieldErrors, input.Email)
	applyProfile(fieldErrors, fields, profileInput{
		FirstName: input.FirstName, LastName: input.LastName,
		WhatsappNumber: input.WhatsappNumber, ProfilePicture: input.ProfilePicture,
	})

	password := input.Password
	if password == "" {
		fieldErrors.Add("password", "password is required")
	} else {
		checkPassword(fieldErrors, &password)
	}
	if input.ConfirmPassword != input.Password {
		fieldErrors.Add("confirm_password", "passwords do not match")
	}

	if err := fieldErrors.Err(); err != nil {
		return persistence.Employee{}, err
	}

	return a.employees.insert(ctx, fields, &password)
}

func (a *authService) Login(ctx context.Context, input LoginInput) (Session, error) {
	employee, err := a.findForLogin(ctx, input)
	if err != nil {
		return Session{}, err
	}

	if employee.PasswordHash == nil {
		return Session{}, domainerr.Unauthorized(msgInvalidCredentials)
	}
	if err := a.check(*employee.PasswordHash, input.Password); err != nil {
		if errors.Is(err, platformauth.ErrPasswordMismatch) {
			return Session{}, domainerr.Unauthorized(msgInvalidCredentials)
		}
		return Session{}, err
	}

	if !employee.IsActive || employee.Status != persistence.AccountActive {
		return Session{}, domainerr.Forbidden("employee account is not active")
	}

	issued, err := a.tokens.Issue(employee.ExternalID.String(), employee.ID, employee.Email, employee.Role)
	if err != nil {
		return Session{}, err
	}

	fields := persistence.Fields{
		"employee_id": employee.ID,
		"token_id":    issued.TokenID,
		"expires_at":  issued.ExpiresAt,
	}
	persistence.SetText(fields, "ip_address", &input.IPAddress)
	persistence.SetText(fields, "user_agent", &input.UserAgent)
	persistence.SetText(fields, "device_id", input.DeviceID)
	persistence.SetText(fields, "device_type", input.DeviceType)

	if _, err := a.sessions.Create(ctx, fields); err != nil {
		return Session{}, err
	}

	if updated, found, err := a.employees.repo.UpdateLastLogin(ctx, employee.ID, input.IPAddress); err != nil {
		return Session{}, err
	} else if found {
		employee = updated
	}

	return Session{Token: issued.Token, ExpiresAt: issued.ExpiresAt, Employee: employee}, nil
}

func (a *authService) findForLogin(ctx context.Context, input LoginInput) (persistence.Employee, error) {
	fieldErrors := validation.FieldErrors{}
	if input.Password == "" {
		fieldErrors.Add("password", "password is required")
	}

	var (
		employee persistence.Employee
		found    bool
		err      error
	)
	switch {
	case input.Email != nil && strings.TrimSpace(*input.Email) != "":
		if err := fieldErrors.Err(); err != nil {
			return persistence.Employee{}, err
		}
		employee, found, err = a.employees.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(*input.Email)))
	case input.WhatsappNumber != nil && strings.TrimSpace(*input.WhatsappNumber) != "":
		if err := fieldErrors.Err(); err != nil {
			return persistence.Employee{}, err
		}
		employee, found, err = a.employees.repo.FindByWhatsappNumber(ctx, strings.TrimSpace(*input.WhatsappNumber))
	default:
		fieldErrors.Add("email", "email or whatsapp_number is required")
		return persistence.Employee{}, fieldErrors.Err()
	}

	if err != nil {
		return persistence.Employee{}, err
	}
	if !found || employee.IsDeleted {
		return persistence.Employee{}, domainerr.Unauthorized(msgInvalidCredentials)
	}
	return employee, nil
}

func (a *authService) Logout(ctx context.Context, creds *platformauth.Credentials) error {
	tokenID, err := sessionTokenID(creds)
	if err != nil {
		return err
	}
	if _, err := a.sessions.DeleteByTokenID(ctx, tokenID); err != nil {
		return err
	}
	return nil
}

func (a *authService) Authenticate(ctx context.Context, creds *platformauth.Credentials) error {
	tokenID, err := sessionTokenID(creds)
	if err != nil {
		return err
	}

	session, found, err := a.sessions.FindByTokenID(ctx, tokenID)
	if err != nil {
		return err
	}
	if !found || session.EmployeeID != creds.EmployeeID {
		return domainerr.Unauthorized("session revoked")
	}
	if !session.ExpiresAt.After(a.now()) {
		return domainerr.Unauthorized("session expired")
	}

	employee, found, err := a.employees.repo.FindByID(ctx, creds.EmployeeID)
	if err != nil {
		return err
	}
	if !found || employee.IsDeleted || !employee.IsActive || employee.Status != persistence.AccountActive {
		return domainerr.Unauthorized("employee account is not active")
	}
	return nil
}

func (a *authService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return a.sessions.DeleteExpired(ctx, a.now().UTC())
}

func sessionTokenID(creds *platformauth.Credentials) (uuid.UUID, error) {
	if creds == nil {
		return uuid.Nil, domainerr.Unauthorized("authentication required")
	}
	tokenID, err := uuid.Parse(creds.TokenID)
	if err != nil {
		return uuid.Nil, domainerr.Unauthorized("malformed token id")
	}
	return tokenID, nil
}
