// @title                       Healthgate API Gateway
// @version                     1.0
// @description                 User registration, JWT login and administrator user management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/healthgate/api-gateway/internal/api"
	"github.com/healthgate/api-gateway/internal/api/handler"
	"github.com/healthgate/api-gateway/internal/core/service"
	"github.com/healthgate/api-gateway/internal/infrastructure/config"
	"github.com/healthgate/api-gateway/internal/infrastructure/db/mongo"
	"github.com/healthgate/api-gateway/internal/infrastructure/db/redis"
	"github.com/healthgate/api-gateway/internal/infrastructure/queue"
	"github.com/healthgate/api-gateway/internal/pkg/validation"
	"github.com/healthgate/api-gateway/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "healthgate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(ctx, nil)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "healthgate",
	})

	// Token service fails fast without a signing secret
	tokens, err := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpire)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	// Set up database
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "healthgate"})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	auditRepo := mongo.NewAuditRepository(db)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	checks := map[string]handler.Check{"mongodb": handler.MongoCheck(db)}

	// Redis is optional; without it each replica limits on its own
	var limiter middleware.RateLimiterStore
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer func(c *goredis.Client) { _ = c.Close() }(rdb)

		limiter = redis.NewRateLimiterStore(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, log)
		checks["redis"] = handler.RedisCheck(rdb)
	}

	// Audit trail
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditRepo, log)
	dispatcher.Start(context.WithoutCancel(ctx))

	// Set up services
	store, err := service.NewCredentialStore(users, validation.New(), cfg.Auth.BcryptCost, log)
	if err != nil {
		return err
	}
	authService := service.NewAuthService(store, tokens, dispatcher, log)

	router := api.NewRouter(api.Dependencies{
		Config:         cfg,
		Log:            log,
		Auth:           authService,
		Store:          store,
		Tokens:         tokens,
		Audit:          dispatcher,
		RateLimitStore: limiter,
		HealthChecks:   checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Flush queued audit events before the database goes away
	dispatcher.Close()
	log.Info().Msg("server exiting")
	return nil
}
