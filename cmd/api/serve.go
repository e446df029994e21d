package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/healthcare-api/internal/config"
	auditHandler "github.com/jwalitptl/healthcare-api/internal/handler/audit"
	chatHandler "github.com/jwalitptl/healthcare-api/internal/handler/chat"
	facilityHandler "github.com/jwalitptl/healthcare-api/internal/handler/facility"
	"github.com/jwalitptl/healthcare-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/healthcare-api/internal/handler/patient"
	promHandler "github.com/jwalitptl/healthcare-api/internal/handler/prometheus"
	"github.com/jwalitptl/healthcare-api/internal/middleware"
	"github.com/jwalitptl/healthcare-api/internal/repository/postgres"
	"github.com/jwalitptl/healthcare-api/internal/router"
	auditService "github.com/jwalitptl/healthcare-api/internal/service/audit"
	chatService "github.com/jwalitptl/healthcare-api/internal/service/chat"
	facilityService "github.com/jwalitptl/healthcare-api/internal/service/facility"
	patientService "github.com/jwalitptl/healthcare-api/internal/service/patient"
	"github.com/jwalitptl/healthcare-api/internal/worker"
	"github.com/jwalitptl/healthcare-api/pkg/auth"
	"github.com/jwalitptl/healthcare-api/pkg/llm"
	"github.com/jwalitptl/healthcare-api/pkg/messaging"
	"github.com/jwalitptl/healthcare-api/pkg/messaging/redis"
	"github.com/jwalitptl/healthcare-api/pkg/metrics"
	"github.com/jwalitptl/healthcare-api/pkg/validator"
)

const metricsNamespace = "healthcare"

func runServer(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.Logger

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(metricsNamespace, registry)

	checks := map[string]health.Check{"database": db.PingContext}

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			return err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("Redis unreachable, audit entries will be published once it recovers")
		}
		broker = redis.NewBroker(client, logger)
		defer broker.Close()
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	base := postgres.NewBaseRepository(db)
	tx := postgres.NewTransactor(db)
	facilityRepo := postgres.NewFacilityRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	auditRepo := postgres.NewAuditRepository(base)

	auditWorker := worker.NewAuditWorker(auditRepo, broker, worker.AuditWorkerConfig{
		Workers:      cfg.Audit.Workers,
		QueueSize:    cfg.Audit.QueueSize,
		WriteTimeout: cfg.Audit.WriteTimeout,
		Channel:      cfg.Redis.Channel,
	}, logger, m)
	auditWorker.Start()
	recorder := auditService.NewAuditLogger(auditWorker, logger)

	validate := validator.New()
	facilities := facilityService.NewService(facilityRepo, tx, recorder, validate, logger)
	patients := patientService.NewService(patientRepo, facilityRepo, tx, recorder, validate, logger)
	audits := auditService.NewService(auditRepo, logger)

	generator := llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, logger, m)
	chat := chatService.NewService(facilities, patients, generator, chatService.Config{CacheTTL: cfg.LLM.CacheTTL}, logger)

	jwtSvc := auth.NewJWTService(cfg.Auth.Secret, cfg.Auth.Issuer)

	r := router.NewRouter(logger, m, middleware.NewAuthMiddleware(jwtSvc, cfg.Auth.Required), router.Handlers{
		Facility: facilityHandler.NewHandler(facilities, patients),
		Patient:  patientHandler.NewHandler(patients),
		Audit:    auditHandler.NewHandler(audits),
		Chat:     chatHandler.NewHandler(chat, validate),
		Health:   health.NewHandler(checks),
		Metrics:  promHandler.New(registry),
	}, router.RouterConfig{
		Mode:             cfg.Server.Mode,
		CORSOrigins:      cfg.CORS.AllowedOrigins,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit: middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RPS),
			Burst: cfg.RateLimit.Burst,
		},
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	// The worker stops after the server so in-flight requests can still record.
	auditCtx, cancelAudit := context.WithTimeout(context.Background(), cfg.Audit.ShutdownTimeout)
	defer cancelAudit()
	if err := auditWorker.Stop(auditCtx); err != nil {
		logger.Error().Err(err).Msg("Audit entries lost during shutdown")
	}

	logger.Info().Msg("Server exited properly")
	return nil
}
