package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const UsersTable = "users"

// User represents a row in the users table.
type User struct {
	ID             int64      `json:"id"`
	ExternalID     uuid.UUID  `json:"external_id"`
	FirstName      *string    `json:"first_name"`
	LastName       *string    `json:"last_name"`
	Email          string     `json:"email"`
	WhatsappNumber *string    `json:"whatsapp_number"`
	CountryCode    *string    `json:"country_code"`
	PasswordHash   *string    `json:"-"`
	UPIID          *string    `json:"upi_id"`
	ProfilePicture *string    `json:"profile_picture"`
	Avatar         *string    `json:"avatar"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	IsVerified     bool       `json:"is_verified"`
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

// UserSearchFields are matched by the free-text search on the users list.
var UserSearchFields = []string{"first_name", "last_name", "email", "whatsapp_number", "upi_id"}

var userTable = Table[User]{
	Name: UsersTable,
	Columns: []string{
		"id", "external_id", "first_name", "last_name", "email", "whatsapp_number", "country_code",
		"password_hash", "upi_id", "profile_picture", "avatar", "role", "status", "is_verified",
		"last_login_ip", "last_login_at", "is_active", "is_deleted", "deleted_at",
		"created_by", "updated_by", "created_at", "updated_at",
	},
	Writable: []string{
		"first_name", "last_name", "email", "whatsapp_number", "country_code", "password_hash",
		"upi_id", "profile_picture", "avatar", "role", "status", "is_verified",
		"last_login_ip", "last_login_at", "is_active", "is_deleted", "deleted_at",
		"created_by", "updated_by",
	},
	Scan: scanUser,
}

// UserStore is the users repository: the generic operations plus user-specific lookups.
type UserStore struct {
	*Repository[User]
}

// NewUserStore binds the users table to db.
func NewUserStore(db Querier) (*UserStore, error) {
	repo, err := NewRepository(db, userTable)
	if err != nil {
		return nil, err
	}
	return &UserStore{Repository: repo}, nil
}

// FindByExternalID looks a user up by its public identifier, deleted or not.
func (s *UserStore) FindByExternalID(ctx context.Context, id uuid.UUID) (User, bool, error) {
	return s.FindOne(ctx, Predicate{columnExternalID: id})
}

// FindByEmail returns the live user holding email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (User, bool, error) {
	return s.FindOne(ctx, Predicate{"email": email, columnIsDeleted: false})
}

// FindAllActive lists live, enabled users.
func (s *UserStore) FindAllActive(ctx context.Context) ([]User, error) {
	return s.FindAll(ctx, Predicate{columnIsActive: true, columnIsDeleted: false})
}

func (s *UserStore) EmailExists(ctx context.Context, email string, excludeID *int64) (bool, error) {
	return s.ValueExists(ctx, "email", email, excludeID)
}

func (s *UserStore) WhatsappNumberExists(ctx context.Context, number string, excludeID *int64) (bool, error) {
	return s.ValueExists(ctx, "whatsapp_number", number, excludeID)
}

func (s *UserStore) UPIIDExists(ctx context.Context, upiID string, excludeID *int64) (bool, error) {
	return s.ValueExists(ctx, "upi_id", upiID, excludeID)
}

// UpdateLastLogin records the address and time of the latest sign-in.
func (s *UserStore) UpdateLastLogin(ctx context.Context, id int64, ip string) (User, bool, error) {
	return s.Update(ctx, id, Fields{"last_login_ip": ip, "last_login_at": time.Now().UTC()})
}

func (s *UserStore) ChangeStatus(ctx context.Context, id int64, status string) (User, bool, error) {
	return s.Update(ctx, id, Fields{columnStatus: status})
}

// GetUsersWithPagination pages over live users.
func (s *UserStore) GetUsersWithPagination(ctx context.Context, params ListParams) (Page[User], error) {
	return s.listLive(ctx, params, UserSearchFields)
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.ExternalID, &u.FirstName, &u.LastName, &u.Email, &u.WhatsappNumber, &u.CountryCode,
		&u.PasswordHash, &u.UPIID, &u.ProfilePicture, &u.Avatar, &u.Role, &u.Status, &u.IsVerified,
		&u.LastLoginIP, &u.LastLoginAt, &u.IsActive, &u.IsDeleted, &u.DeletedAt,
		&u.CreatedBy, &u.UpdatedBy, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return u, nil
}
