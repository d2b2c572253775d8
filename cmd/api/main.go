package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/rehberlik-api/api/swagger"
	"github.com/noah-isme/rehberlik-api/internal/handler"
	"github.com/noah-isme/rehberlik-api/internal/middleware"
	"github.com/noah-isme/rehberlik-api/internal/repository"
	"github.com/noah-isme/rehberlik-api/internal/service"
	"github.com/noah-isme/rehberlik-api/pkg/cache"
	"github.com/noah-isme/rehberlik-api/pkg/config"
	"github.com/noah-isme/rehberlik-api/pkg/database"
	"github.com/noah-isme/rehberlik-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/rehberlik-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/rehberlik-api/pkg/middleware/requestid"
)

// @title Rehberlik API
// @version 0.1.0
// @description Appointment scheduling service for school guidance counselors
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	appointmentRepo := repository.NewAppointmentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	metricsSvc := service.NewMetricsService()
	appointmentSvc := service.NewAppointmentService(appointmentRepo, cacheRepo, cfg.Scheduling, validate, logr)
	taskSvc := service.NewTaskService(taskRepo, appointmentRepo, cacheRepo, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, cacheRepo, validate, logr)
	rosterSvc := service.NewRosterService(rosterRepo, logr)
	calendarSvc := service.NewCalendarService([]service.Projector{
		service.NewAppointmentProjector(appointmentRepo),
		service.NewActivityProjector(activityRepo),
		service.NewTaskProjector(taskRepo),
		service.NewFollowUpProjector(appointmentRepo),
	}, cacheRepo, cfg.Calendar, metricsSvc, logr)

	appointmentHandler := handler.NewAppointmentHandler(appointmentSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
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
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/appointments", appointmentHandler.List)
		api.POST("/appointments", appointmentHandler.Create)
		api.GET("/appointments/:id", appointmentHandler.Get)
		api.PUT("/appointments/:id", appointmentHandler.Update)
		api.POST("/appointments/:id/close", appointmentHandler.Close)
		api.POST("/appointments/:id/follow-up", appointmentHandler.FollowUp)
		api.DELETE("/appointments/:id", appointmentHandler.Delete)

		api.GET("/appointment-tasks", taskHandler.List)
		api.POST("/appointment-tasks", taskHandler.Create)
		api.PATCH("/appointment-tasks/:id", taskHandler.Toggle)
		api.DELETE("/appointment-tasks/:id", taskHandler.Delete)

		api.GET("/class-activities", activityHandler.List)
		api.POST("/class-activities", activityHandler.Create)
		api.PUT("/class-activities/:id", activityHandler.Update)
		api.DELETE("/class-activities/:id", activityHandler.Delete)

		api.GET("/calendar", calendarHandler.View)
		api.GET("/calendar/events", calendarHandler.EventsForDate)
		api.GET("/calendar/appointments", appointmentHandler.DayDetail)

		api.GET("/classes", rosterHandler.Classes)
		api.GET("/students", rosterHandler.Students)
		api.GET("/teachers", rosterHandler.Teachers)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
