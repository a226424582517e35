package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/course-registration-api/internal/engine"
	"github.com/noah-isme/course-registration-api/internal/handler"
	"github.com/noah-isme/course-registration-api/internal/middleware"
	"github.com/noah-isme/course-registration-api/internal/models"
	"github.com/noah-isme/course-registration-api/internal/repository"
	"github.com/noah-isme/course-registration-api/internal/service"
	"github.com/noah-isme/course-registration-api/pkg/cache"
	"github.com/noah-isme/course-registration-api/pkg/config"
	"github.com/noah-isme/course-registration-api/pkg/database"
	"github.com/noah-isme/course-registration-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-registration-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-registration-api/pkg/middleware/requestid"
)

// @title Course Registration API
// @version 0.1.0
// @description Seat allocation, waitlists and prerequisite checking for course registration
// @BasePath /api/v1
// @schemes http

type studentStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Exists(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

type courseStore interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindAll(ctx context.Context) ([]models.Course, error)
	Exists(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, course *models.Course) error
}

type enrollmentStore interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindAll(ctx context.Context) ([]models.Enrollment, error)
	FindByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	FindByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
	FindActiveByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	IsStudentEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
	Save(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id string) (bool, error)
}

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

	var (
		students    studentStore
		courses     courseStore
		enrollments enrollmentStore
	)
	if cfg.Database.Host != "" {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		students = repository.NewStudentRepository(db)
		courses = repository.NewCourseRepository(db)
		enrollments = repository.NewEnrollmentRepository(db)
		logr.Sugar().Infow("using postgres stores", "host", cfg.Database.Host)
	} else {
		students = repository.NewMemoryStudentStore()
		courses = repository.NewMemoryCourseStore()
		enrollments = repository.NewMemoryEnrollmentStore()
		logr.Info("using in-memory stores")
	}

	var cacheRepo service.CacheRepository
	if cfg.Redis.Host != "" {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer client.Close() //nolint:errcheck
		cacheRepo = repository.NewCacheRepository(client, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled)

	seats := engine.NewSeatAllocator()
	waitlist := engine.NewWaitlistManager(seats)
	prereqs := engine.NewPrerequisiteEngine()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	registrar := service.NewRegistrationService(students, courses, enrollments, prereqs, seats, waitlist, metricsSvc, logr)
	studentSvc := service.NewStudentService(students, registrar, validate, logr)
	courseSvc := service.NewCourseService(courses, seats, validate, logr)
	analyticsSvc := service.NewAnalyticsService(courses, enrollments, cacheSvc, logr)
	exportSvc := service.NewExportService(courses, enrollments, logr)

	registrationHandler := handler.NewRegistrationHandler(registrar)
	studentHandler := handler.NewStudentHandler(studentSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/students", studentHandler.List)
		api.POST("/students", studentHandler.Create)
		api.GET("/students/:id", studentHandler.Get)
		api.PUT("/students/:id", studentHandler.Update)
		api.DELETE("/students/:id", studentHandler.Delete)
		api.POST("/students/:id/completed-courses/:courseId", studentHandler.CompleteCourse)
		api.GET("/students/:id/enrollments", registrationHandler.StudentEnrollments)

		api.GET("/courses", courseHandler.List)
		api.POST("/courses", courseHandler.Create)
		api.GET("/courses/:id", courseHandler.Get)
		api.PUT("/courses/:id", courseHandler.Update)
		api.GET("/courses/:id/availability", courseHandler.Availability)
		api.GET("/courses/:id/enrollments", registrationHandler.CourseEnrollments)
		api.GET("/courses/:id/waitlist", registrationHandler.CourseWaitlist)
		api.GET("/courses/:id/waitlist/:studentId", registrationHandler.WaitlistPosition)
		api.GET("/courses/:id/roster", exportHandler.CourseRoster)

		api.POST("/registrations", registrationHandler.Register)
		api.DELETE("/registrations", registrationHandler.Drop)
		api.GET("/registrations/eligibility", registrationHandler.CheckEligibility)

		api.GET("/analytics/overview", analyticsHandler.Overview)
		api.GET("/analytics/courses/:courseId/fill-rate", analyticsHandler.FillRate)
		api.GET("/analytics/popular-courses", analyticsHandler.PopularCourses)
		api.GET("/analytics/courses-above-threshold", analyticsHandler.CoursesAboveThreshold)
		api.GET("/analytics/average-class-size", analyticsHandler.AverageClassSize)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
