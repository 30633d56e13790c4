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

	"hospital-recruitment-backend/config"
	_ "hospital-recruitment-backend/docs" // Important for Swagger
	v1 "hospital-recruitment-backend/internal/delivery/http/v1"
	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/internal/reconcile"
	"hospital-recruitment-backend/internal/repository/postgres"
	"hospital-recruitment-backend/internal/usecase"
	"hospital-recruitment-backend/pkg/audit"
	"hospital-recruitment-backend/pkg/auth"
	"hospital-recruitment-backend/pkg/database"
	"hospital-recruitment-backend/pkg/email"
	"hospital-recruitment-backend/pkg/eventbus"
	"hospital-recruitment-backend/pkg/logger"
	"hospital-recruitment-backend/pkg/redis"
	"hospital-recruitment-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// @title           Hospital Recruitment API
// @version         1.0
// @description     Applicant intake and reconciliation for the hospital HR office.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting hospital recruitment backend", "port", cfg.Port, "env", cfg.Environment)

	auditLogger := audit.New("hospital-recruitment", cfg.Environment)
	defer func() { _ = auditLogger.Sync() }()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(context.Background(), cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis and the event bus
	var bus eventbus.Bus
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		if !errors.Is(err, redis.ErrNotConfigured) {
			logger.Log.Warn("Redis unavailable, using in-memory fallbacks", "error", err)
		}
		bus = eventbus.NewMemoryBus()
	} else {
		bus = eventbus.NewRedisBus(redis.Client())
		defer func() { _ = redis.Close() }()
	}
	defer func() { _ = bus.Close() }()

	// 5. Setup Repositories
	staffRepo := postgres.NewStaffUserRepository(dbPool)
	resumeDepositRepo := postgres.NewIntakeRepository(dbPool, domain.IntakeResumeDeposit)
	applicationFormRepo := postgres.NewIntakeRepository(dbPool, domain.IntakeApplicationForm)

	// 6. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - submission notices will be skipped")
	}

	// 7. Setup UseCases
	validate := validation.New()
	intakeCfg := usecase.IntakeConfig{AdminListLimit: cfg.AdminListLimit, ReviewBaseURL: cfg.FrontendURL}

	authUC := usecase.NewAuthUsecase(staffRepo)
	resumeDepositUC := usecase.NewIntakeUsecase(domain.IntakeResumeDeposit, resumeDepositRepo,
		staffRepo, bus, emailService, auditLogger, validate, intakeCfg)
	applicationFormUC := usecase.NewIntakeUsecase(domain.IntakeApplicationForm, applicationFormRepo,
		staffRepo, bus, emailService, auditLogger, validate, intakeCfg)
	fallbackBound := reconcile.LocalPartBound{MinLength: cfg.FallbackMinLocalPart, MinOverlap: cfg.FallbackMinOverlap}
	applicantUC := usecase.NewApplicantUsecase(resumeDepositRepo, applicationFormRepo, usecase.ApplicantConfig{
		AdminListLimit:    cfg.AdminListLimit,
		FallbackListLimit: cfg.FallbackListLimit,
		FetchTimeout:      cfg.UpstreamFetchTimeout,
		SelfServiceBound:  fallbackBound,
		Audit:             auditLogger,
	})

	checks := map[string]usecase.Pinger{"database": dbPool}
	if redis.Client() != nil {
		checks["redis"] = usecase.PingFunc(redis.HealthCheck)
	}
	healthUC := usecase.NewHealthUsecase(checks)

	// 8. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.JWKSURL)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:            authUC,
		HealthUC:          healthUC,
		ResumeDepositUC:   resumeDepositUC,
		ApplicationFormUC: applicationFormUC,
		ApplicantUC:       applicantUC,
		Events:            bus,
		JWKSProvider:      jwksProvider,
		Audit:             auditLogger,
		Config:            cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Open event streams end when the bus closes
	_ = bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
