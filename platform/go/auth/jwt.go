package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ExtractJWTToken returns the bearer token from the Authorization header.
func ExtractJWTToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	const prefix = "Bearer "
	// Case-insensitive prefix match.
	if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", false
	}

	return strings.TrimSpace(authHeader[len(prefix):]), true
}

// TokenClaims is the payload of an employee access token.
type TokenClaims struct {
	EmployeeID int64  `json:"eid"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token plus the identifiers a session row needs.
type IssuedToken struct {
	Token     string
	TokenID   uuid.UUID
	ExpiresAt time.Time
}

// TokenManager signs and verifies HS256 employee tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager for the given secret. A zero ttl defaults to 24h.
func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new token for the employee with a fresh jti.
func (m *TokenManager) Issue(subject string, employeeID int64, email, role string) (IssuedToken, error) {
	now := m.now().UTC()
	tokenID := uuid.New()
	expiresAt := now.Add(m.ttl)

	claims := TokenClaims{
		EmployeeID: employeeID,
		Email:      email,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   subject,
			ID:        tokenID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}

	return IssuedToken{Token: signed, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}

// Parse verifies signature, issuer and expiry and returns the claims.
func (m *TokenManager) Parse(token string) (*TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &TokenClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...); err != nil {
		return nil, err
	}
	return claims, nil
}

// Verifier adapts Parse to the JWT middleware.
func (m *TokenManager) Verifier() VerifyFunc {
	return func(_ context.Context, token string) (map[string]any, error) {
		claims, err := m.Parse(token)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"sub":   claims.Subject,
			"eid":   claims.EmployeeID,
			"email": claims.Email,
			"role":  claims.Role,
			"jti":   claims.ID,
		}, nil
	}
}
