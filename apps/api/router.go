package main

import (
	"context"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"
	"go.uber.org/zap"

	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
	"github.com/zenGate-Global/tournament-admin/platform/go/httpapi"
	platformlogging "github.com/zenGate-Global/tournament-admin/platform/go/logging"
	platformmiddleware "github.com/zenGate-Global/tournament-admin/platform/go/middleware"
)

// routerDeps is everything newRouter needs; handlers arrive already built so tests can pass stubs.
type routerDeps struct {
	Logger         *zap.Logger
	RequestTimeout time.Duration
	AllowedOrigins []string
	Contracts      map[string]*openapi3.T
	Auth           func(http.Handler) http.Handler
	Ready          func(ctx context.Context) error
	Users          http.Handler
	Employees      http.Handler
	Tournaments    http.Handler
}

func newRouter(deps routerDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		platformmiddleware.CORS(deps.AllowedOrigins),
	)
	if deps.RequestTimeout > 0 {
		rootRouter.Use(chimw.Timeout(deps.RequestTimeout))
	}

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			if err := deps.Ready(r.Context()); err != nil {
				platformlogging.FromRequest(r, logger).Warn("readiness check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	registerDocsRoutes(rootRouter, deps.Contracts, logger)

	apiRouter := chi.NewRouter()
	if deps.Auth != nil {
		apiRouter.Use(deps.Auth)
	}
	apiRouter.Use(platformmiddleware.RequestTrace)

	// Employees mixes public (register, login) and protected routes, so it guards itself.
	apiRouter.With(specValidator(logger, "employees", deps.Contracts)).Mount("/employees", deps.Employees)
	apiRouter.With(platformauth.RequireAuthenticated, specValidator(logger, "users", deps.Contracts)).Mount("/users", deps.Users)
	apiRouter.With(platformauth.RequireAuthenticated, specValidator(logger, "tournaments", deps.Contracts)).Mount("/tournaments", deps.Tournaments)

	rootRouter.Mount("/api/v1", apiRouter)

	return rootRouter
}

// specValidator checks requests against the named contract. A missing contract disables validation for that mount.
func specValidator(logger *zap.Logger, name string, docs map[string]*openapi3.T) func(http.Handler) http.Handler {
	spec, ok := docs[name]
	if !ok {
		logger.Warn("no contract loaded; request validation disabled", zap.String("contract", name))
		return func(next http.Handler) http.Handler { return next }
	}

	logSecuritySchemes(logger, name, spec)

	return oapimiddleware.OapiRequestValidatorWithOptions(spec, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: platformmiddleware.ValidateAuthenticationViaSwagger,
		},
		ErrorHandler: writeValidationProblem,
	})
}

func writeValidationProblem(w http.ResponseWriter, message string, statusCode int) {
	p := httpapi.ProblemDetails{
		Title:  http.StatusText(statusCode),
		Status: statusCode,
		Detail: message,
		Code:   httpapi.CodeInvalidInput,
	}
	switch statusCode {
	case http.StatusUnauthorized:
		p.Code = httpapi.CodeUnauthorized
	case http.StatusForbidden:
		p.Code = httpapi.CodeForbidden
	case http.StatusNotFound:
		p.Code = httpapi.CodeNotFound
	case http.StatusBadRequest:
		p.Code = httpapi.CodeValidation
	}
	httpapi.WriteProblem(w, p)
}

func logSecuritySchemes(logger *zap.Logger, name string, spec *openapi3.T) {
	if spec.Components.SecuritySchemes == nil {
		spec.Components.SecuritySchemes = openapi3.SecuritySchemes{}
	}

	if _, ok := spec.Components.SecuritySchemes["bearerAuth"]; !ok {
		spec.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
			Value: openapi3.NewJWTSecurityScheme(),
		}
		logger.Warn("injecting default bearerAuth security scheme", zap.String("contract", name))
	}

	names := make([]string, 0, len(spec.Components.SecuritySchemes))
	for schemeName := range spec.Components.SecuritySchemes {
		names = append(names, schemeName)
	}
	logger.Debug("loaded security schemes", zap.String("contract", name), zap.Strings("names", names))
}
