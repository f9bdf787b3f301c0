// Command server runs the identity gateway HTTP API.
//
//	@title						ABC Retailers Identity Gateway
//	@version					1.0
//	@description				Registration, login, sessions and the storefront dashboard.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/abcretailers/identity-gateway/internal/api"
	"github.com/abcretailers/identity-gateway/internal/api/handler"
	"github.com/abcretailers/identity-gateway/internal/api/metrics"
	"github.com/abcretailers/identity-gateway/internal/core/ports"
	"github.com/abcretailers/identity-gateway/internal/core/service"
	"github.com/abcretailers/identity-gateway/internal/infrastructure/config"
	"github.com/abcretailers/identity-gateway/internal/infrastructure/db/memory"
	mongodb "github.com/abcretailers/identity-gateway/internal/infrastructure/db/mongo"
	"github.com/abcretailers/identity-gateway/internal/infrastructure/db/postgres"
	redisdb "github.com/abcretailers/identity-gateway/internal/infrastructure/db/redis"
	"github.com/abcretailers/identity-gateway/internal/infrastructure/profileapi"
	"github.com/abcretailers/identity-gateway/internal/infrastructure/queue"
	"github.com/abcretailers/identity-gateway/pkg/logger"
)

const serviceName = "identity-gateway"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	var healthChecks []handler.DependencyCheck

	credentials, closePG, err := credentialStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closePG()
	if pg, ok := credentials.(*postgresStore); ok {
		healthChecks = append(healthChecks, handler.DependencyCheck{Name: "postgres", Ping: pg.pool.Ping})
	}

	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongodb.Disconnect(mongoClient, cfg.ShutdownTimeout); err != nil {
			log.Warn().Err(err).Msg("close mongo")
		}
	}()
	orphans := mongodb.NewOrphanRepository(mongoDB)
	if err := orphans.EnsureIndexes(ctx); err != nil {
		return err
	}
	healthChecks = append(healthChecks, handler.DependencyCheck{
		Name: "mongodb",
		Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	})

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis")
		}
	}()
	healthChecks = append(healthChecks, handler.DependencyCheck{
		Name: "redis",
		Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	profiles, err := profileapi.NewClient(profileapi.Config{
		BaseURL: cfg.ProfileAPI.URL,
		APIKey:  cfg.ProfileAPI.Key,
		Timeout: cfg.ProfileAPI.Timeout,
	}, log.With().Str("component", "profileapi").Logger())
	if err != nil {
		return err
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	monitor := queue.NewOrphanMonitor(0, orphans, credentials, profiles,
		func(state string) { metrics.OrphanInspectionsTotal.WithLabelValues(state).Inc() },
		log.With().Str("component", "orphan_monitor").Logger())
	monitor.Start(workerCtx)

	sessions := service.NewSessionService(redisdb.NewSessionStore(rdb), cfg.Session.JWTSecret, cfg.Session.TTL, log)

	e := api.NewRouter(api.Dependencies{
		Registration:   service.NewRegistrationService(credentials, profiles, monitor, log),
		Login:          service.NewLoginService(credentials, profiles, log),
		Sessions:       sessions,
		Dashboard:      service.NewDashboardService(profiles, log),
		Storage:        profiles,
		Orphans:        orphans,
		RateLimitCache: rdb,
		LoginRateLimit: cfg.Session.LoginRateLimit,
		HealthChecks:   healthChecks,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErrCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErrCh <- err
		}
		close(srvErrCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-srvErrCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	stopWorkers()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server exited cleanly")
	return nil
}

// postgresStore pairs the repository with its pool for health checks.
type postgresStore struct {
	*postgres.CredentialRepository
	pool *pgxpool.Pool
}

// credentialStore opens Postgres, or falls back to the in-memory store when
// no DATABASE_URL is configured in development.
func credentialStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.CredentialRepository, func(), error) {
	if cfg.Postgres.URL == "" {
		log.Warn().Msg("DATABASE_URL not set, credentials are kept in memory")
		return memory.NewCredentialStore(), func() {}, nil
	}

	pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL})
	if err != nil {
		return nil, nil, err
	}
	repo := postgres.NewCredentialRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return &postgresStore{CredentialRepository: repo, pool: pool}, pool.Close, nil
}
