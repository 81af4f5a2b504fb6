package middleware

import (
	"context"
	"errors"
	"slices"

	"github.com/getkin/kin-openapi/openapi3filter"

	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
)

// ValidateAuthenticationViaSwagger satisfies operations that declare bearerAuth in the OpenAPI contract.
// It requires verified credentials from the JWT middleware and, when the requirement lists scopes, one of those roles.
// Operations without security (login, register) never reach it.
func ValidateAuthenticationViaSwagger(_ context.Context, input *openapi3filter.AuthenticationInput) error {
	if input == nil || input.SecuritySchemeName != "bearerAuth" {
		return nil
	}

	r := input.RequestValidationInput.Request
	if r == nil {
		return errors.New("no request in validation input")
	}

	creds, ok := platformauth.CredentialsFromContext(r.Context())
	if !ok {
		return errors.New("missing or invalid bearer token")
	}

	if len(input.Scopes) > 0 && !slices.Contains(input.Scopes, creds.Role) {
		return errors.New("insufficient role")
	}
	return nil
}
