package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/schoolware/result-portal-api/internal/middleware"
	"github.com/schoolware/result-portal-api/internal/models"
	"github.com/schoolware/result-portal-api/internal/service"
	"github.com/schoolware/result-portal-api/pkg/config"
	"github.com/schoolware/result-portal-api/pkg/logger"
	corsmiddleware "github.com/schoolware/result-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/schoolware/result-portal-api/pkg/middleware/requestid"
)

// RouterDeps collects everything the HTTP layer needs.
type RouterDeps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService

	Auth      *service.AuthService
	Terms     *service.TermService
	Grading   *service.GradingService
	Results   *service.ResultService
	Summaries *service.SummaryService
	Students  *service.StudentService
	Reports   *service.ReportService
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := NewAuthHandler(deps.Auth)
	termHandler := NewTermHandler(deps.Terms)
	gradingHandler := NewGradingHandler(deps.Grading)
	resultHandler := NewResultHandler(deps.Results)
	summaryHandler := NewSummaryHandler(deps.Summaries, deps.Students)
	reportHandler := NewReportHandler(deps.Reports, deps.Students)

	api := r.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.Auth))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/change-password", authHandler.ChangePassword)

	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleSchoolAdmin, models.RoleTeacher)
	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleSchoolAdmin)

	terms := authed.Group("/terms")
	terms.GET("", termHandler.List)
	terms.GET("/:id", termHandler.Get)
	terms.POST("/:id/lock", admins, termHandler.Lock)
	terms.POST("/:id/unlock", admins, termHandler.Unlock)

	grading := authed.Group("/grading-systems")
	grading.GET("/active-scale", gradingHandler.ActiveScale)
	grading.GET("", admins, gradingHandler.List)
	grading.POST("", admins, gradingHandler.Create)
	grading.POST("/:id/default", admins, gradingHandler.SetDefault)

	results := authed.Group("/results")
	results.Use(staff)
	results.POST("", resultHandler.Record)
	results.POST("/batch", resultHandler.Batch)
	results.POST("/submit", resultHandler.Submit)
	results.GET("", resultHandler.List)
	results.GET("/:id", resultHandler.Get)

	summaries := authed.Group("/summaries")
	summaries.GET("/students/:studentId/terms/:termId", summaryHandler.StudentTerm)
	summaries.PATCH("/students/:studentId/terms/:termId/remarks", staff, summaryHandler.UpdateRemarks)
	summaries.GET("/classes/:classId/terms/:termId", staff, summaryHandler.ClassTerm)
	summaries.POST("/classes/:classId/terms/:termId/recompute", staff, summaryHandler.Recompute)

	reports := authed.Group("/reports")
	reports.GET("/students/:studentId/terms/:termId", reportHandler.StudentCard)
	reports.POST("/classes", staff, reportHandler.EnqueueClass)
	reports.GET("/jobs/:id", staff, reportHandler.JobStatus)

	// Archive downloads authenticate via the signed token in the path, not a JWT.
	api.GET("/reports/download/:token", reportHandler.Download)

	return r
}
