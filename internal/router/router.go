// Package router wires handlers and middleware into the gin engine.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/snow-school-api/internal/handler"
	"github.com/noah-isme/snow-school-api/internal/middleware"
	"github.com/noah-isme/snow-school-api/internal/models"
	"github.com/noah-isme/snow-school-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/snow-school-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/snow-school-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Health      *handler.HealthHandler
	Students    *handler.StudentHandler
	Instructors *handler.InstructorHandler
	Activities  *handler.ActivityHandler
	Shifts      *handler.ShiftHandler
	Classes     *handler.ClassHandler
	Enrollments *handler.EnrollmentHandler
	Reports     *handler.ReportHandler
}

// Config holds the cross-cutting collaborators of the engine.
type Config struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	Tokens         middleware.TokenValidator
	Metrics        middleware.RequestObserver
	EnableDocs     bool
}

// New builds the gin engine with the school routes.
func New(cfg Config, h Handlers) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Health.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/login/", h.Students.Login)

	students := r.Group("/alumnos")
	{
		students.GET("/", h.Students.List)
		students.POST("/", h.Students.Register)
		students.GET("/:ci/", h.Students.Get)
		students.PUT("/:ci/", h.Students.Update)
		students.DELETE("/:ci/", h.Students.Delete)
	}

	me := r.Group("/me", middleware.JWT(cfg.Tokens), middleware.RequireRoles(models.RoleStudent))
	me.GET("/clases/", h.Students.MyClasses)

	instructors := r.Group("/instructores")
	{
		instructors.GET("/", h.Instructors.List)
		instructors.POST("/", h.Instructors.Create)
		instructors.GET("/:ci/", h.Instructors.Get)
		instructors.PUT("/:ci/", h.Instructors.Update)
		instructors.DELETE("/:ci/", h.Instructors.Delete)
	}

	activities := r.Group("/actividades")
	{
		activities.GET("/", h.Activities.List)
		activities.POST("/", h.Activities.Create)
		activities.GET("/:id/", h.Activities.Get)
		activities.PUT("/:id/", h.Activities.Update)
		activities.DELETE("/:id/", h.Activities.Delete)
		activities.GET("/:id/equipamiento/", h.Activities.ListEquipment)
		activities.POST("/:id/equipamiento/", h.Activities.CreateEquipment)
	}
	r.PUT("/equipamiento/:id/", h.Activities.UpdateEquipment)
	r.DELETE("/equipamiento/:id/", h.Activities.DeleteEquipment)

	shifts := r.Group("/turnos")
	{
		shifts.GET("/", h.Shifts.List)
		shifts.POST("/", h.Shifts.Create)
		shifts.GET("/:id/", h.Shifts.Get)
		shifts.PUT("/:id/", h.Shifts.Update)
		shifts.DELETE("/:id/", h.Shifts.Delete)
	}

	classes := r.Group("/clases")
	{
		classes.GET("/", h.Classes.List)
		classes.POST("/", h.Classes.Create)
		classes.GET("/:id/", h.Classes.Get)
		classes.PUT("/:id/", h.Classes.Modify)
		classes.DELETE("/:id/", h.Classes.Delete)
		classes.GET("/:id/alumnos/", h.Classes.Students)
		classes.POST("/:id/dictada/", h.Classes.MarkDelivered)
	}

	enrollments := r.Group("/inscripciones")
	{
		enrollments.GET("/", h.Enrollments.List)
		enrollments.POST("/", h.Enrollments.Enroll)
		enrollments.DELETE("/:classId/:ci/", h.Enrollments.Unenroll)
	}
	r.POST("/alumno_clase/", h.Enrollments.EnrollIntoClass)

	reports := r.Group("/reportes")
	{
		reports.GET("/actividades_mas_ingresos/", h.Reports.ActivitiesByRevenue)
		reports.GET("/actividades_mas_alumnos/", h.Reports.ActivitiesByStudents)
		reports.GET("/turnos_mas_clases/", h.Reports.ShiftsByClasses)
	}

	return r
}

// ServerConfig contains tunables for the HTTP server.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates an *http.Server around next.
func NewServer(cfg ServerConfig, next http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           next,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
