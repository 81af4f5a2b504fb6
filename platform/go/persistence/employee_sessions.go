package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const EmployeeSessionsTable = "employee_sessions"

// EmployeeSession is one issued access token. TokenID is the token's jti claim.
type EmployeeSession struct {
	ID         int64     `json:"id"`
	ExternalID uuid.UUID `json:"external_id"`
	EmployeeID int64     `json:"employee_id"`
	TokenID    uuid.UUID `json:"token_id"`
	DeviceID   *string   `json:"device_id"`
	DeviceType *string   `json:"device_type"`
	IPAddress  *string   `json:"ip_address"`
	UserAgent  *string   `json:"user_agent"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var employeeSessionTable = Table[EmployeeSession]{
	Name: EmployeeSessionsTable,
	Columns: []string{
		"id", "external_id", "employee_id", "token_id", "device_id", "device_type",
		"ip_address", "user_agent", "expires_at", "created_at", "updated_at",
	},
	Writable: []string{"employee_id", "token_id", "device_id", "device_type", "ip_address", "user_agent", "expires_at"},
	Scan:     scanEmployeeSession,
}

// EmployeeSessionStore persists employee sessions. Sessions are hard-deleted only.
type EmployeeSessionStore struct {
	*Repository[EmployeeSession]
}

func NewEmployeeSessionStore(db Querier) (*EmployeeSessionStore, error) {
	repo, err := NewRepository(db, employeeSessionTable)
	if err != nil {
		return nil, err
	}
	return &EmployeeSessionStore{Repository: repo}, nil
}

func (s *EmployeeSessionStore) FindByTokenID(ctx context.Context, tokenID uuid.UUID) (EmployeeSession, bool, error) {
	return s.FindOne(ctx, Predicate{"token_id": tokenID})
}

func (s *EmployeeSessionStore) FindByEmployeeID(ctx context.Context, employeeID int64) ([]EmployeeSession, error) {
	return s.FindAll(ctx, Predicate{"employee_id": employeeID})
}

func (s *EmployeeSessionStore) DeleteByTokenID(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM employee_sessions WHERE token_id = $1`, tokenID)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByEmployeeID signs the employee out everywhere and returns the number of sessions removed.
func (s *EmployeeSessionStore) DeleteByEmployeeID(ctx context.Context, employeeID int64) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM employee_sessions WHERE employee_id = $1`, employeeID)
	if err != nil {
		return 0, fmt.Errorf("delete employee sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (s *EmployeeSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM employee_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEmployeeSession(row pgx.Row) (EmployeeSession, error) {
	var s EmployeeSession
	err := row.Scan(
		&s.ID, &s.ExternalID, &s.EmployeeID, &s.TokenID, &s.DeviceID, &s.DeviceType,
		&s.IPAddress, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return EmployeeSession{}, err
	}
	return s, nil
}
