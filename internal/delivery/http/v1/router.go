package v1

import (
	"net/http"
	"time"

	"hospital-recruitment-backend/config"
	"hospital-recruitment-backend/internal/delivery/http/middleware"
	"hospital-recruitment-backend/internal/delivery/http/response"
	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/internal/usecase"
	"hospital-recruitment-backend/pkg/audit"
	"hospital-recruitment-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC            domain.AuthUsecase
	HealthUC          usecase.HealthUsecase
	ResumeDepositUC   domain.IntakeUsecase
	ApplicationFormUC domain.IntakeUsecase
	ApplicantUC       domain.ApplicantUsecase
	Events            domain.EventSubscriber
	JWKSProvider      *auth.Provider
	Audit             *audit.Logger
	Config            *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(
		deps.Config.RateLimitGlobalThreshold,
		time.Duration(deps.Config.RateLimitWindowSeconds)*time.Second,
		deps.Audit,
	)))
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		if status["status"] != "ok" {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config.JWTSecret, deps.AuthUC))
	{
		submitLimit := middleware.RateLimitMiddleware(middleware.SubmissionRateLimitConfig(deps.Audit))

		NewAuthHandler(protected, deps.AuthUC)
		NewIntakeHandler(protected, "/resume-deposits", deps.ResumeDepositUC, submitLimit)
		NewIntakeHandler(protected, "/application-forms", deps.ApplicationFormUC, submitLimit)
		NewApplicantHandler(protected, deps.ApplicantUC, deps.Events, deps.Config.DedupByID)
	}

	return r
}
