package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/zenGate-Global/tournament-admin/platform/go/domainerr"
	platformlogging "github.com/zenGate-Global/tournament-admin/platform/go/logging"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/validation"
)

const (
	problemTypeValidation   = "https://tournament-admin.dev/problems/validation-error"
	problemTypeNotFound     = "https://tournament-admin.dev/problems/not-found"
	problemTypeConflict     = "https://tournament-admin.dev/problems/conflict"
	problemTypeUnauthorized = "https://tournament-admin.dev/problems/unauthorized"
	problemTypeForbidden    = "https://tournament-admin.dev/problems/forbidden"
	problemTypeInternal     = "https://tournament-admin.dev/problems/internal-error"
)

// Problem codes returned in ProblemDetails.Code.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeUniqueViolation     = "UNIQUE_VIOLATION"
	CodeForeignKeyViolation = "FOREIGN_KEY_VIOLATION"
	CodeNotNullViolation    = "NOT_NULL_VIOLATION"
	CodeCheckViolation      = "CHECK_VIOLATION"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInternal            = "INTERNAL_ERROR"
)

// ProblemDetails is the RFC 7807 error body.
type ProblemDetails struct {
	Type   string              `json:"type,omitempty"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Code   string              `json:"code"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// Classify maps a service or store error to a problem.
func Classify(err error) ProblemDetails {
	if v, ok := validation.As(err); ok {
		return ProblemDetails{
			Type:   problemTypeValidation,
			Title:  "Validation failed",
			Status: http.StatusBadRequest,
			Detail: "one or more fields are invalid",
			Code:   CodeValidation,
			Errors: v.Fields,
		}
	}

	switch {
	case errors.Is(err, domainerr.ErrNotFound):
		return problem(http.StatusNotFound, problemTypeNotFound, "Resource not found", domainerr.Message(err, "resource not found"), CodeNotFound)
	case errors.Is(err, domainerr.ErrConflict):
		return problem(http.StatusConflict, problemTypeConflict, "Conflict", domainerr.Message(err, "resource conflict"), CodeConflict)
	case errors.Is(err, domainerr.ErrUnauthorized):
		return problem(http.StatusUnauthorized, problemTypeUnauthorized, "Unauthorized", domainerr.Message(err, "authentication required"), CodeUnauthorized)
	case errors.Is(err, domainerr.ErrForbidden):
		return problem(http.StatusForbidden, problemTypeForbidden, "Forbidden", domainerr.Message(err, "access denied"), CodeForbidden)
	case errors.Is(err, persistence.ErrUnknownField), errors.Is(err, persistence.ErrInvalidSortOrder):
		return problem(http.StatusBadRequest, problemTypeValidation, "Invalid input", err.Error(), CodeInvalidInput)
	case persistence.IsUniqueViolation(err):
		return problem(http.StatusConflict, problemTypeConflict, "Conflict", constraintDetail(err, "duplicate value"), CodeUniqueViolation)
	case persistence.IsForeignKeyViolation(err):
		return problem(http.StatusConflict, problemTypeConflict, "Conflict", constraintDetail(err, "referenced record missing"), CodeForeignKeyViolation)
	case persistence.IsNotNullViolation(err):
		return problem(http.StatusBadRequest, problemTypeValidation, "Invalid input", "a required field is missing", CodeNotNullViolation)
	case persistence.IsCheckViolation(err):
		return problem(http.StatusBadRequest, problemTypeValidation, "Invalid input", constraintDetail(err, "value out of range"), CodeCheckViolation)
	case persistence.IsInvalidInput(err):
		return problem(http.StatusBadRequest, problemTypeValidation, "Invalid input", "malformed value", CodeInvalidInput)
	default:
		return problem(http.StatusInternalServerError, problemTypeInternal, "Internal server error", "an unexpected error occurred", CodeInternal)
	}
}

func problem(status int, problemType, title, detail, code string) ProblemDetails {
	return ProblemDetails{Type: problemType, Title: title, Status: status, Detail: detail, Code: code}
}

func constraintDetail(err error, fallback string) string {
	if name := persistence.ConstraintName(err); name != "" {
		return fallback + " (" + name + ")"
	}
	return fallback
}

// WriteProblem writes p as application/problem+json.
func WriteProblem(w http.ResponseWriter, p ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// Responder writes classified errors and logs them against a resource name.
type Responder struct {
	Resource string
	Logger   *zap.Logger
}

// Fail classifies err, logs it at a level matching the status and writes the problem.
func (rs Responder) Fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	p := Classify(err)

	logger := rs.loggerFrom(r.Context())
	fields := []zap.Field{
		zap.String("operation", op),
		zap.Int("status", p.Status),
		zap.String("code", p.Code),
		zap.Error(err),
	}

	switch {
	case p.Status >= http.StatusInternalServerError:
		logger.Error(rs.Resource+" operation failed", fields...)
	case p.Status == http.StatusNotFound:
		logger.Info(rs.Resource+" resource not found", fields...)
	default:
		logger.Warn(rs.Resource+" request rejected", fields...)
	}

	WriteProblem(w, p)
}

func (rs Responder) loggerFrom(ctx context.Context) *zap.Logger {
	return platformlogging.FromContextOr(ctx, rs.Logger)
}
