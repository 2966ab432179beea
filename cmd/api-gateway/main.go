package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gardenia-api/api/swagger"
	"github.com/noah-isme/gardenia-api/internal/handler"
	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/internal/repository"
	"github.com/noah-isme/gardenia-api/internal/service"
	"github.com/noah-isme/gardenia-api/pkg/cache"
	"github.com/noah-isme/gardenia-api/pkg/config"
	"github.com/noah-isme/gardenia-api/pkg/database"
	"github.com/noah-isme/gardenia-api/pkg/export"
	"github.com/noah-isme/gardenia-api/pkg/jobs"
	"github.com/noah-isme/gardenia-api/pkg/logger"
	"github.com/noah-isme/gardenia-api/pkg/storage"
)

// @title Gardenia 2025 API
// @version 1.0.0
// @description Festival registration, credential verification and gate entry log
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.NewPostgres(connectCtx, cfg.Database)
	cancelConnect()
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(migrateCtx, db)
		cancel()
		if err != nil {
			logr.Fatal("failed to apply schema", zap.Error(err))
		}
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	checks := map[string]handler.Pinger{"postgres": db}

	var catalogCache *service.CacheService
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
			catalogCache = service.NewCacheService(repository.NewCacheRepository(client, logr), metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled)
		}
	}

	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	decisionRepo := repository.NewEntryDecisionRepository(db)
	userRepo := repository.NewUserRepository(db)

	validate := service.NewValidator()
	eventSvc := service.NewEventService(eventRepo, catalogCache, cfg.Catalog.CacheTTL, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, eventSvc, nil, userRepo, metrics, validate, logr, service.RegistrationConfig{
		IDPrefix: cfg.Registration.IDPrefix,
		IDPad:    cfg.Registration.IDPad,
	})
	credentialSvc := service.NewCredentialService(registrationRepo, eventSvc, metrics, logr, service.RetryPolicy{
		Attempts: cfg.Verifier.ReadAttempts,
		Backoff:  cfg.Verifier.ReadBackoff,
	})
	decisionSvc := service.NewEntryDecisionService(decisionRepo, credentialSvc, eventSvc, userRepo, metrics, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	dashboardSvc := service.NewDashboardService(repository.NewAnalyticsRepository(db), catalogCache, cfg.Dashboard.CacheTTL, logr)

	if cfg.Bootstrap.AdminEmail != "" {
		bootCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, created, err := authSvc.EnsureUser(bootCtx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName, models.RoleAdmin)
		cancel()
		switch {
		case err != nil:
			logr.Error("failed to bootstrap admin", zap.Error(err))
		case created:
			logr.Info("bootstrap admin created", zap.String("email", cfg.Bootstrap.AdminEmail))
		}
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var ticketHandler *handler.TicketHandler
	var ticketQueue *jobs.Queue
	if cfg.Tickets.Enabled {
		files, err := storage.NewLocalStorage(cfg.Tickets.StorageDir)
		if err != nil {
			logr.Fatal("failed to prepare ticket storage", zap.Error(err))
		}
		ticketSvc := service.NewTicketService(
			registrationRepo,
			eventSvc,
			files,
			export.NewTicketRenderer(""),
			storage.NewSignedURLSigner(cfg.Tickets.SignedURLSecret, cfg.Tickets.SignedURLTTL),
			userRepo,
			metrics,
			logr,
			service.TicketConfig{APIPrefix: cfg.APIPrefix},
		)
		ticketQueue = jobs.NewQueue("tickets", ticketSvc.HandleJob, jobs.QueueConfig{
			Workers:     cfg.Tickets.WorkerConcurrency,
			MaxRetries:  cfg.Tickets.WorkerRetries,
			RetryDelay:  cfg.Tickets.RetryDelay,
			Logger:      logr,
			OnExhausted: ticketSvc.MarkFailed,
		})
		ticketSvc.UseQueue(ticketQueue)
		ticketQueue.Start(workerCtx)
		registrationSvc.UseTickets(ticketSvc)

		if resumed := ticketSvc.ResumeBacklog(workerCtx); resumed > 0 {
			logr.Info("ticket backlog re-enqueued", zap.Int("count", resumed))
		}
		ticketHandler = handler.NewTicketHandler(ticketSvc)
	}

	router := handler.NewRouter(handler.Routes{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Tokens:         authSvc,
		Audit:          userRepo,
		Metrics:        metrics,
		Logger:         logr,
		Auth:           handler.NewAuthHandler(authSvc),
		Events:         handler.NewEventHandler(eventSvc),
		Registrations:  handler.NewRegistrationHandler(registrationSvc, credentialSvc),
		Decisions:      handler.NewEntryDecisionHandler(decisionSvc),
		Tickets:        ticketHandler,
		Staff:          handler.NewStaffHandler(service.NewStaffService(userRepo, validate, logr)),
		Dashboard:      handler.NewDashboardHandler(dashboardSvc),
		Observability:  handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signals:
		logr.Info("shutdown requested", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logr.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}

	cancelWorkers()
	if ticketQueue != nil {
		ticketQueue.Stop()
	}
	logr.Info("shutdown complete")
}
