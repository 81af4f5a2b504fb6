package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

type ctxKey string

const (
	ctxCredentials ctxKey = "TOURNAMENT_ADMIN_CREDENTIALS"
)

// Employee roles, from most to least privileged.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleStaff   = "STAFF"
)

// Credentials describe the signed-in employee.
type Credentials struct {
	// Subject is the employee's external id.
	Subject    string
	EmployeeID int64
	Email      string
	Role       string
	// TokenID is the token's jti; it names the server-side session.
	TokenID string
}

// WithCredentials stores creds on the context.
func WithCredentials(ctx context.Context, creds *Credentials) context.Context {
	return context.WithValue(ctx, ctxCredentials, creds)
}

func CredentialsFromContext(ctx context.Context) (*Credentials, bool) {
	v := ctx.Value(ctxCredentials)
	if v == nil {
		return nil, false
	}
	c, ok := v.(*Credentials)
	return c, ok && c != nil
}

// VerifyFunc validates the incoming JWT and returns its claims map.
type VerifyFunc func(ctx context.Context, token string) (map[string]any, error)

// ExtractFunc converts a claims map into Credentials.
type ExtractFunc func(ctx context.Context, claims map[string]any) (*Credentials, error)

// JWT parses the bearer token when present and sets the context credentials using the provided verify/extract functions.
// Requests without a token pass through anonymously; use RequireAuthenticated to reject them.
func JWT(verify VerifyFunc, extract ExtractFunc) func(http.Handler) http.Handler {
	if verify == nil {
		panic("auth.JWT: verify func must not be nil")
	}
	if extract == nil {
		extract = DefaultCredentialExtractor
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, found := ExtractJWTToken(r)
			if token == "" || !found {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verify(r.Context(), token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="api", error="invalid_token", error_description=%q`, err.Error()))
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			creds, err := extract(r.Context(), claims)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="invalid claims"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCredentials(r.Context(), creds)))
		})
	}
}

// DefaultCredentialExtractor converts the claims issued by TokenManager into Credentials.
func DefaultCredentialExtractor(_ context.Context, claims map[string]any) (*Credentials, error) {
	if claims == nil {
		return nil, errors.New("missing claims")
	}

	creds := &Credentials{
		Subject:    extractStringClaim(claims, "sub"),
		EmployeeID: extractIntClaim(claims, "eid"),
		Email:      extractStringClaim(claims, "email"),
		Role:       strings.ToUpper(extractStringClaim(claims, "role")),
		TokenID:    extractStringClaim(claims, "jti"),
	}

	if creds.Subject == "" || creds.EmployeeID <= 0 {
		return nil, errors.New("subject claims are required")
	}
	if creds.TokenID == "" {
		return nil, errors.New("jti claim is required")
	}

	return creds, nil
}

func extractStringClaim(claims map[string]any, key string) string {
	if v, ok := claims[key]; ok {
		if strVal, valid := v.(string); valid {
			return strVal
		}
	}
	return ""
}

func extractIntClaim(claims map[string]any, key string) int64 {
	switch v := claims[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

// RequireAuthenticated rejects requests that carry no verified credentials.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CredentialsFromContext(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits only employees holding one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds, ok := CredentialsFromContext(r.Context())
			if !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			if !slices.Contains(roles, creds.Role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
