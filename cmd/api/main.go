package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skills-marketplace-api/config"
	httpHandler "skills-marketplace-api/internal/adapter/http/handler"
	pgStorage "skills-marketplace-api/internal/adapter/storage/postgres"
	redisStorage "skills-marketplace-api/internal/adapter/storage/redis"
	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/internal/service"
	"skills-marketplace-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Skills Marketplace API")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	instructorRepo := pgStorage.NewInstructorRepo(pool)
	listingRepo := pgStorage.NewListingRepo(pool)
	enrollRepo := pgStorage.NewEnrollmentRepo(pool)
	reviewRepo := pgStorage.NewReviewRepo(pool)
	messageRepo := pgStorage.NewMessageRepo(pool)
	discussionRepo := pgStorage.NewDiscussionRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	certRepo := pgStorage.NewCertificateRepo(pool)
	categoryRepo := pgStorage.NewCategoryRepo(pool)
	statsRepo := pgStorage.NewStatsRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)

	// Initialize Redis stores
	viewCache := redisStorage.NewViewCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc)

	// Audit subsystem. Every auditable collection registers an accessor;
	// the permission policy and query service resolve ownership and
	// existence through the registry.
	registry := service.NewEntityRegistry()
	registry.Register(domain.EntityUser, service.NewUserAccessor(userRepo))
	registry.Register(domain.EntityInstructor, service.NewInstructorAccessor(instructorRepo))
	registry.Register(domain.EntityListing, service.NewListingAccessor(listingRepo))
	registry.Register(domain.EntityEnrollment, service.NewEnrollmentAccessor(enrollRepo))
	registry.Register(domain.EntityPayment, service.NewPaymentAccessor(paymentRepo))
	registry.Register(domain.EntityReview, service.NewReviewAccessor(reviewRepo))

	auditRecorder := service.NewAuditRecorder(auditRepo, log)
	auditQuerySvc := service.NewAuditQueryService(auditRepo, userRepo, registry, cfg.Audit, log)
	auditPolicy := service.NewAuditPolicy(registry)

	// Business services
	listingSvc := service.NewListingService(listingRepo, auditRecorder, log)
	enrollmentSvc := service.NewEnrollmentService(enrollRepo, listingRepo, userRepo, auditRecorder, log)
	reviewSvc := service.NewReviewService(reviewRepo, listingRepo, enrollRepo, auditRecorder, log)
	messageSvc := service.NewMessageService(messageRepo, discussionRepo, listingRepo, userRepo)
	paymentSvc := service.NewPaymentService(paymentRepo, listingRepo, auditRecorder, log)
	certificateSvc := service.NewCertificateService(certRepo, enrollRepo)
	userSvc := service.NewUserService(userRepo, auditRecorder)
	instructorSvc := service.NewInstructorService(instructorRepo, auditRecorder)
	categorySvc := service.NewCategoryService(categoryRepo, viewCache, log)
	dashboardSvc := service.NewDashboardService(statsRepo, viewCache, log)

	// Health checkers
	pgHealth := pgStorage.NewHealthChecker(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		TokenSvc:       tokenSvc,
		UserSvc:        userSvc,
		InstructorSvc:  instructorSvc,
		ListingSvc:     listingSvc,
		EnrollmentSvc:  enrollmentSvc,
		ReviewSvc:      reviewSvc,
		MessageSvc:     messageSvc,
		PaymentSvc:     paymentSvc,
		CertificateSvc: certificateSvc,
		CategorySvc:    categorySvc,
		DashboardSvc:   dashboardSvc,
		AuditQuerySvc:  auditQuerySvc,
		AuditPolicy:    auditPolicy,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
