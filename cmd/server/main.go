package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushq/college-adp-api/api/swagger"
	"github.com/campushq/college-adp-api/internal/handler"
	"github.com/campushq/college-adp-api/internal/middleware"
	"github.com/campushq/college-adp-api/internal/repository"
	"github.com/campushq/college-adp-api/internal/service"
	"github.com/campushq/college-adp-api/pkg/cache"
	"github.com/campushq/college-adp-api/pkg/config"
	"github.com/campushq/college-adp-api/pkg/database"
	"github.com/campushq/college-adp-api/pkg/logger"
	corsmiddleware "github.com/campushq/college-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/college-adp-api/pkg/middleware/requestid"
)

// @title College ADP API
// @version 1.0.0
// @description Academic administration API for a single college
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(migrateCtx, db, logr); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr,
		cfg.Dashboard.CacheEnabled && redisClient != nil)

	adminRepo := repository.NewAdminRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	markRepo := repository.NewMarkRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(adminRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, cacheSvc, metricsSvc, validate, logr)
	taskSvc := service.NewTaskService(taskRepo, studentRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	markSvc := service.NewMarkService(markRepo, validate, logr)
	reportSvc := service.NewReportService(studentRepo, attendanceRepo, markRepo, taskRepo, cacheSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	markHandler := handler.NewMarkHandler(markSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	lookupHandler := handler.NewLookupHandler(studentSvc, subjectSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.PUT("/auth/password", authHandler.ChangePassword)

		protected.GET("/students", studentHandler.List)
		protected.POST("/students", studentHandler.Create)
		protected.GET("/students/:id", studentHandler.Get)
		protected.PUT("/students/:id", studentHandler.Update)
		protected.DELETE("/students/:id", studentHandler.Delete)

		protected.GET("/attendance", attendanceHandler.History)
		protected.POST("/attendance", attendanceHandler.Mark)
		protected.POST("/attendance/bulk", attendanceHandler.BulkMark)
		protected.GET("/attendance/students/:id", attendanceHandler.StudentSummary)

		protected.GET("/tasks", taskHandler.List)
		protected.POST("/tasks", taskHandler.Create)
		protected.GET("/tasks/:id", taskHandler.Detail)
		protected.DELETE("/tasks/:id", taskHandler.Delete)
		protected.POST("/tasks/:id/assignments", taskHandler.AssignOne)
		protected.PUT("/tasks/:id/assignments", taskHandler.UpdateAssignments)
		protected.PUT("/tasks/:id/assignments/:studentId/complete", taskHandler.Complete)
		protected.PUT("/tasks/:id/assignments/:studentId/reset", taskHandler.Reset)
		protected.PUT("/tasks/:id/complete-all", taskHandler.BulkComplete)

		protected.GET("/subjects", subjectHandler.List)
		protected.POST("/subjects", subjectHandler.Create)
		protected.PUT("/subjects/:id", subjectHandler.Update)
		protected.DELETE("/subjects/:id", subjectHandler.Delete)

		protected.GET("/marks", markHandler.List)
		protected.POST("/marks", markHandler.Create)
		protected.POST("/marks/bulk", markHandler.BulkCreate)
		protected.PUT("/marks/:id", markHandler.Update)
		protected.DELETE("/marks/:id", markHandler.Delete)
		protected.GET("/marks/students/:id", markHandler.ByStudent)

		protected.GET("/dashboard", reportHandler.Dashboard)
		protected.GET("/reports/class", reportHandler.ClassReport)
		protected.GET("/reports/class/export", reportHandler.ClassReportCSV)
		protected.GET("/reports/students/:id", reportHandler.StudentReport)
		protected.GET("/reports/students/:id/export", reportHandler.StudentReportPDF)

		protected.GET("/lookups/options", lookupHandler.Options)
		protected.GET("/lookups/students", lookupHandler.StudentsByDepartment)
		protected.GET("/lookups/semesters", lookupHandler.SemestersByCourse)
		protected.GET("/lookups/subjects", lookupHandler.SubjectsByCourseSemester)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
