package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zenGate-Global/tournament-admin/contracts"
	employeeshandler "github.com/zenGate-Global/tournament-admin/domains/employees/be/handler"
	employeesrepo "github.com/zenGate-Global/tournament-admin/domains/employees/be/repo"
	employeesservice "github.com/zenGate-Global/tournament-admin/domains/employees/be/service"
	tournamentshandler "github.com/zenGate-Global/tournament-admin/domains/tournaments/be/handler"
	tournamentsrepo "github.com/zenGate-Global/tournament-admin/domains/tournaments/be/repo"
	tournamentsservice "github.com/zenGate-Global/tournament-admin/domains/tournaments/be/service"
	usershandler "github.com/zenGate-Global/tournament-admin/domains/users/be/handler"
	usersrepo "github.com/zenGate-Global/tournament-admin/domains/users/be/repo"
	usersservice "github.com/zenGate-Global/tournament-admin/domains/users/be/service"
	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
	platformlogging "github.com/zenGate-Global/tournament-admin/platform/go/logging"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
)

type config struct {
	Port                 string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment       bool          `env:"LOG_DEVELOPMENT" envDefault:"false"`
	DatabaseURL          string        `env:"DATABASE_URL"`
	DBHost               string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort               int           `env:"DB_PORT" envDefault:"5432"`
	DBUser               string        `env:"DB_USER" envDefault:"postgres"`
	DBPass               string        `env:"DB_PASS"`
	DBName               string        `env:"DB_NAME" envDefault:"tournament_admin"`
	DBSSLMode            string        `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns           int32         `env:"DB_MAX_CONNS"`
	DBMinConns           int32         `env:"DB_MIN_CONNS"`
	ApplySchema          bool          `env:"APPLY_SCHEMA" envDefault:"true"`
	JWTSecret            string        `env:"JWT_SECRET,required"`
	JWTTTL               time.Duration `env:"JWT_TTL" envDefault:"24h"`
	JWTIssuer            string        `env:"JWT_ISSUER" envDefault:"tournament-admin"`
	SessionPurgeInterval time.Duration `env:"SESSION_PURGE_INTERVAL" envDefault:"1h"`
	CORSAllowedOrigins   []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// connString prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (c config) connString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return persistence.ConnParams{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPass,
		Database: c.DBName,
		SSLMode:  c.DBSSLMode,
	}.ConnString()
}

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component:   "api-server",
		Level:       cfg.LogLevel,
		Development: cfg.LogDevelopment,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("api server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{
		ConnString: cfg.connString(),
		MaxConns:   cfg.DBMaxConns,
		MinConns:   cfg.DBMinConns,
	})
	if err != nil {
		return err
	}
	defer persistence.ClosePool(pool)

	if cfg.ApplySchema {
		if err := persistence.ApplySchema(ctx, pool); err != nil {
			return err
		}
		logger.Info("database schema applied")
	}

	docs, err := contracts.LoadAll(ctx)
	if err != nil {
		return err
	}

	tokens, err := platformauth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return err
	}

	userStore, err := persistence.NewUserStore(pool)
	if err != nil {
		return err
	}
	userService := usersservice.New(usersrepo.NewPostgresRepository(userStore))

	employeeStore, err := persistence.NewEmployeeStore(pool)
	if err != nil {
		return err
	}
	sessionStore, err := persistence.NewEmployeeSessionStore(pool)
	if err != nil {
		return err
	}
	employeeRepo := employeesrepo.NewPostgresRepository(employeeStore)
	employeeService := employeesservice.New(employeeRepo)
	authService := employeesservice.NewAuth(employeeRepo, employeesrepo.NewPostgresSessionRepository(sessionStore), tokens)

	tournamentStore, err := persistence.NewTournamentStore(pool)
	if err != nil {
		return err
	}
	tournamentRulesValidator, err := tournamentsservice.NewRulesValidator()
	if err != nil {
		return err
	}
	tournamentService := tournamentsservice.New(tournamentsrepo.NewPostgresRepository(tournamentStore), tournamentRulesValidator)

	janitor, err := startSessionJanitor(authService, cfg.SessionPurgeInterval, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := janitor.Shutdown(); err != nil {
			logger.Warn("session janitor shutdown", zap.Error(err))
		}
	}()

	router := newRouter(routerDeps{
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Contracts:      docs,
		Auth:           buildAuthMiddleware(tokens, authService, logger),
		Ready:          pool.Ping,
		Users:          usershandler.New(userService, logger).Routes(),
		Employees:      employeeshandler.New(employeeService, authService, logger).Routes(),
		Tournaments:    tournamentshandler.New(tournamentService, logger).Routes(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("api server stopped")
	return nil
}
