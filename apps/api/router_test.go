package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/zenGate-Global/tournament-admin/contracts"
	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
	"github.com/zenGate-Global/tournament-admin/platform/go/httpapi"
)

func stubHandler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handler", name)
		w.WriteHeader(http.StatusOK)
	})
}

// asEmployee stands in for the JWT middleware and injects the given role.
func asEmployee(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			creds := &platformauth.Credentials{Subject: "emp-1", EmployeeID: 1, Email: "ops@example.com", Role: role, TokenID: "tok"}
			next.ServeHTTP(w, r.WithContext(platformauth.WithCredentials(r.Context(), creds)))
		})
	}
}

func newTestRouter(t *testing.T, ready func(context.Context) error) http.Handler {
	t.Helper()

	docs, err := contracts.LoadAll(context.Background())
	require.NoError(t, err)

	return newRouter(routerDeps{
		Logger:         zaptest.NewLogger(t),
		RequestTimeout: 5 * time.Second,
		AllowedOrigins: []string{"*"},
		Contracts:      docs,
		Auth:           asEmployee(platformauth.RoleAdmin),
		Ready:          ready,
		Users:          stubHandler("users"),
		Employees:      stubHandler("employees"),
		Tournaments:    stubHandler("tournaments"),
	})
}

func do(t *testing.T, h http.Handler, method, target, body string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer test")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	healthy := newTestRouter(t, func(context.Context) error { return nil })
	require.Equal(t, http.StatusOK, do(t, healthy, http.MethodGet, "/healthz", "", false).Code)
	require.Equal(t, http.StatusOK, do(t, healthy, http.MethodGet, "/readyz", "", false).Code)

	down := newTestRouter(t, func(context.Context) error { return errors.New("connection refused") })
	require.Equal(t, http.StatusOK, do(t, down, http.MethodGet, "/healthz", "", false).Code)
	require.Equal(t, http.StatusServiceUnavailable, do(t, down, http.MethodGet, "/readyz", "", false).Code)
}

func TestDocsRoutes(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/docs", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/openapi/tournaments.json")
	require.Contains(t, rec.Body.String(), "/openapi/employees.json")

	rec = do(t, h, http.MethodGet, "/openapi/users.json", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "3.0.3", doc["openapi"])

	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/openapi/tenants.json", "", false).Code)
}

func TestProtectedMountsRequireCredentials(t *testing.T) {
	h := newTestRouter(t, nil)

	require.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/v1/users", "", false).Code)
	require.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/v1/tournaments", "", false).Code)

	rec := do(t, h, http.MethodGet, "/api/v1/tournaments?page=2&limit=5", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "tournaments", rec.Header().Get("X-Handler"))
}

func TestPublicEmployeeRoutesSkipCredentials(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/employees/login", `{"email":"ops@example.com","password":"secret1"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "employees", rec.Header().Get("X-Handler"))
}

func TestContractValidationRejectsBadRequests(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/tournaments", `{"title":123}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Header().Get("X-Handler"))

	var problem httpapi.ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, httpapi.CodeValidation, problem.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/users/abc", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/tournaments?page=100000000000000000&limit=100", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Header().Get("X-Handler"))

	rec = do(t, h, http.MethodPost, "/api/v1/employees/login", `{"email":"ops@example.com"}`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type purgerFunc func(ctx context.Context) (int64, error)

func (f purgerFunc) PurgeExpiredSessions(ctx context.Context) (int64, error) { return f(ctx) }

func TestPurgeExpiredSessions(t *testing.T) {
	calls := 0
	purgeExpiredSessions(context.Background(), purgerFunc(func(context.Context) (int64, error) {
		calls++
		return 3, nil
	}), zaptest.NewLogger(t))
	purgeExpiredSessions(context.Background(), purgerFunc(func(context.Context) (int64, error) {
		calls++
		return 0, errors.New("db down")
	}), zaptest.NewLogger(t))
	require.Equal(t, 2, calls)
}

func TestSessionJanitorRunsOnInterval(t *testing.T) {
	ran := make(chan struct{}, 1)
	sched, err := startSessionJanitor(purgerFunc(func(context.Context) (int64, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return 1, nil
	}), 50*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	defer func() { require.NoError(t, sched.Shutdown()) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not run")
	}
}
