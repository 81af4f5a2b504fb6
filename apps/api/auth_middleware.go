package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	employeesservice "github.com/zenGate-Global/tournament-admin/domains/employees/be/service"
	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
)

// buildAuthMiddleware verifies bearer tokens and rejects tokens whose session was revoked or expired,
// or whose employee can no longer sign in.
func buildAuthMiddleware(tokens *platformauth.TokenManager, authService employeesservice.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	extractor := func(ctx context.Context, claims map[string]any) (*platformauth.Credentials, error) {
		creds, err := platformauth.DefaultCredentialExtractor(ctx, claims)
		if err != nil {
			return nil, err
		}
		if err := authService.Authenticate(ctx, creds); err != nil {
			logger.Debug("session rejected", zap.Int64("employee_id", creds.EmployeeID), zap.Error(err))
			return nil, err
		}
		return creds, nil
	}

	return platformauth.JWT(tokens.Verifier(), extractor)
}
