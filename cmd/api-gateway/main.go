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
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/snow-school-api/api/swagger"
	"github.com/noah-isme/snow-school-api/internal/handler"
	"github.com/noah-isme/snow-school-api/internal/repository"
	"github.com/noah-isme/snow-school-api/internal/router"
	"github.com/noah-isme/snow-school-api/internal/service"
	"github.com/noah-isme/snow-school-api/pkg/cache"
	"github.com/noah-isme/snow-school-api/pkg/config"
	"github.com/noah-isme/snow-school-api/pkg/database"
	"github.com/noah-isme/snow-school-api/pkg/logger"
)

// @title Snow School API
// @version 1.0.0
// @description Students, instructors, activities, shifts, classes and enrollments of a ski and snowboard school.
// @BasePath /
// @schemes http
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient redis.UniversalClient
	if cfg.Reports.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("report cache disabled", zap.Error(err))
		} else {
			redisClient = client
			defer client.Close()
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	location := cfg.Location()

	studentRepo := repository.NewStudentRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	reportRepo := repository.NewReportRepository(db)

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.Reports.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(service.AuthConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		TokenTTL: cfg.JWT.Expiration,
	}, nil)

	studentSvc := service.NewStudentService(studentRepo, enrollmentRepo, authSvc, cacheSvc, validate, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, cacheSvc, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, cacheSvc, validate, logr)
	shiftSvc := service.NewShiftService(shiftRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(db, classRepo, enrollmentRepo, studentRepo, activityRepo, cacheSvc, metrics, validate, logr)
	classSvc := service.NewClassService(db, classRepo, enrollmentRepo, shiftRepo, instructorRepo, studentRepo, activityRepo, service.ClassServiceConfig{
		Cache:    cacheSvc,
		Metrics:  metrics,
		Location: location,
	}, validate, logr)
	reportSvc := service.NewReportService(reportRepo, cacheSvc, metrics, cfg.Reports.CacheTTL, logr)
	exportSvc := service.NewExportService(reportSvc, func() time.Time { return time.Now().In(location) })

	engine := router.New(router.Config{
		Logger:         logr,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Tokens:         authSvc,
		Metrics:        metrics,
		EnableDocs:     cfg.Env != config.EnvProduction,
	}, router.Handlers{
		Health:      handler.NewHealthHandler(metrics, db),
		Students:    handler.NewStudentHandler(studentSvc),
		Instructors: handler.NewInstructorHandler(instructorSvc),
		Activities:  handler.NewActivityHandler(activitySvc),
		Shifts:      handler.NewShiftHandler(shiftSvc),
		Classes:     handler.NewClassHandler(classSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Reports:     handler.NewReportHandler(reportSvc, exportSvc),
	})

	server := router.NewServer(router.ServerConfig{
		Address:      fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, engine)

	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env), zap.String("timezone", location.String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	logr.Info("server stopped")
}
