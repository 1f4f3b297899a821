package handler

import (
	"skills-marketplace-api/internal/adapter/http/middleware"
	redisStore "skills-marketplace-api/internal/adapter/storage/redis"
	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	TokenSvc       ports.TokenService
	UserSvc        ports.UserService
	InstructorSvc  ports.InstructorService
	ListingSvc     ports.ListingService
	EnrollmentSvc  ports.EnrollmentService
	ReviewSvc      ports.ReviewService
	MessageSvc     ports.MessageService
	PaymentSvc     ports.PaymentService
	CertificateSvc ports.CertificateService
	CategorySvc    ports.CategoryService
	DashboardSvc   ports.DashboardService
	AuditQuerySvc  ports.AuditQueryService
	AuditPolicy    ports.AuditAccessPolicy
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	v1 := r.Group("/api/v1")

	// --- Public routes ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	listingHandler := NewListingHandler(deps.ListingSvc, deps.ReviewSvc)
	messageHandler := NewMessageHandler(deps.MessageSvc)
	listings := v1.Group("/listings")
	{
		listings.GET("", rl("listings"), listingHandler.List)
		listings.GET("/:id", rl("listings"), listingHandler.Get)
		listings.GET("/:id/reviews", rl("listings"), listingHandler.Reviews)
		listings.GET("/:id/discussions", rl("listings"), messageHandler.ListDiscussions)

		listings.POST("", jwtAuth, rl("listings"), listingHandler.Create)
		listings.PATCH("/:id", jwtAuth, rl("listings"), listingHandler.Update)
		listings.DELETE("/:id", jwtAuth, rl("listings"), listingHandler.Delete)
		listings.POST("/:id/restore", jwtAuth, rl("listings"), listingHandler.Restore)
		listings.POST("/:id/status", jwtAuth, rl("listings"), listingHandler.ChangeStatus)
		listings.POST("/:id/reviews", jwtAuth, rl("listings"), listingHandler.AddReview)
		listings.POST("/:id/discussions", jwtAuth, rl("messages"), messageHandler.PostDiscussion)
	}

	categoryHandler := NewCategoryHandler(deps.CategorySvc)
	categories := v1.Group("/categories")
	{
		categories.GET("/tree", categoryHandler.Tree)
		categories.POST("", jwtAuth, adminOnly, categoryHandler.CreateCategory)
		categories.POST("/:id/subcategories", jwtAuth, adminOnly, categoryHandler.CreateSubCategory)
		categories.DELETE("/:id", jwtAuth, adminOnly, categoryHandler.DeleteCategory)
	}
	v1.POST("/subcategories/:id/topics", jwtAuth, adminOnly, categoryHandler.CreateTopic)

	// --- Authenticated routes ---
	enrollmentHandler := NewEnrollmentHandler(deps.EnrollmentSvc, deps.CertificateSvc)
	enrollments := v1.Group("/enrollments", jwtAuth)
	{
		enrollments.POST("", rl("enrollments"), enrollmentHandler.Enroll)
		enrollments.GET("", adminOnly, enrollmentHandler.List)
		enrollments.GET("/me", enrollmentHandler.Me)
		enrollments.GET("/participants", enrollmentHandler.Participants)
		enrollments.PATCH("/:id/progress", enrollmentHandler.UpdateProgress)
		enrollments.DELETE("/:id", rl("enrollments"), enrollmentHandler.Cancel)
	}
	v1.POST("/certificates", jwtAuth, enrollmentHandler.IssueCertificate)

	userHandler := NewUserHandler(deps.UserSvc, deps.InstructorSvc)
	users := v1.Group("/users", jwtAuth)
	{
		users.GET("/me", userHandler.Me)
		users.GET("/:id", userHandler.Get)
		users.PATCH("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	instructors := v1.Group("/instructors")
	{
		instructors.GET("/:id", userHandler.GetInstructor)
		instructors.POST("/:id/approve", jwtAuth, userHandler.ApproveInstructor)
		instructors.POST("/:id/reject", jwtAuth, userHandler.RejectInstructor)
	}

	messages := v1.Group("/messages", jwtAuth)
	{
		messages.POST("", rl("messages"), messageHandler.Send)
		messages.GET("/:userId", rl("messages"), messageHandler.Conversation)
	}

	paymentHandler := NewPaymentHandler(deps.PaymentSvc)
	payments := v1.Group("/payments", jwtAuth)
	{
		payments.POST("/intent", rl("payments"), paymentHandler.CreateIntent)
		payments.POST("/:id/confirm", rl("payments"), paymentHandler.Confirm)
	}

	dashboardHandler := NewDashboardHandler(deps.DashboardSvc)
	dashboard := v1.Group("/dashboard", jwtAuth, adminOnly)
	{
		dashboard.GET("/stats", rl("dashboard"), dashboardHandler.Stats)
	}

	// --- Audit ledger (permission checks in the handler) ---
	auditHandler := NewAuditHandler(deps.AuditQuerySvc, deps.AuditPolicy)
	audit := v1.Group("/audit", jwtAuth, rl("audit"))
	{
		audit.GET("/documents/:entityType/:documentId", auditHandler.DocumentHistory)
		audit.GET("/documents/:entityType/:documentId/summary", auditHandler.DocumentSummary)
		audit.GET("/actors/:actorId", auditHandler.ActorHistory)
		audit.GET("/system", auditHandler.SystemQuery)
		audit.GET("/feed", auditHandler.RecentActivity)
	}

	return r
}
