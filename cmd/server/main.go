// Package main runs the Hackatown API server with WebSocket feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/polyhx/hackatown-backend/config"
	"github.com/polyhx/hackatown-backend/internal/attendees"
	"github.com/polyhx/hackatown-backend/internal/auth"
	"github.com/polyhx/hackatown-backend/internal/events"
	"github.com/polyhx/hackatown-backend/internal/mail"
	"github.com/polyhx/hackatown-backend/internal/middleware"
	"github.com/polyhx/hackatown-backend/internal/models"
	"github.com/polyhx/hackatown-backend/internal/questions"
	"github.com/polyhx/hackatown-backend/internal/realtime"
	"github.com/polyhx/hackatown-backend/pkg/database"
	"github.com/polyhx/hackatown-backend/pkg/redis"
	"github.com/polyhx/hackatown-backend/pkg/response"
	"github.com/polyhx/hackatown-backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var cvStorage attendees.CVStorage
	if cfg.AWS.Region != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			Endpoint:             cfg.AWS.Endpoint,
			CVBucket:             cfg.AWS.CVBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			cvStorage = s3Client
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Attendees
	attendeeRepo := attendees.NewRepository(pool)
	attendeeHandler := attendees.NewHandler(attendeeRepo, cvStorage, logger)

	// Events
	mailClient := mail.NewClient(cfg.Mail.ServiceURL, cfg.Mail.APIKey, cfg.Mail.Timeout)
	eventRepo := events.NewRepository(pool)
	eventService := events.NewService(eventRepo, attendeeRepo, authRepo, mailClient, hub, events.SelectionEmail{
		From:     cfg.Mail.SelectionFrom,
		Subject:  cfg.Mail.SelectionSubject,
		Template: cfg.Mail.SelectionTemplate,
	}, logger)
	eventHandler := events.NewHandler(eventService, logger)

	// Questions
	questionRepo := questions.NewRepository(pool)
	remoteValidator := questions.NewRemoteValidator(cfg.Puzzle.ValidationSecret, cfg.Puzzle.ValidationTimeout, logger)
	validator := questions.NewValidator(questionRepo, remoteValidator, logger)
	questionHandler := questions.NewHandler(questionRepo, validator, logger)

	jwtValidate := func(token string) (uuid.UUID, string, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, "", err
		}
		return claims.UserID, claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	staff := middleware.RequireRole(models.RoleAdmin, models.RoleOrganizer)
	admin := middleware.RequireRole(models.RoleAdmin)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/users", admin, authHandler.List)

		// Attendee profiles
		api.POST("/attendees", attendeeHandler.Create)
		api.GET("/attendees/me", attendeeHandler.Me)
		api.PUT("/attendees/me/cv", attendeeHandler.UploadCV)
		api.GET("/attendees/:id/cv", staff, attendeeHandler.CVURL)

		// Events
		api.GET("/events", eventHandler.List)
		api.POST("/events", admin, eventHandler.Create)
		api.GET("/events/:id", eventHandler.Get)
		api.POST("/events/:id/attendees", eventHandler.Register)
		api.GET("/events/:id/attendees", staff, eventHandler.ListAttendees)
		api.GET("/events/:id/attendees/me", eventHandler.IsRegistered)
		api.GET("/events/:id/attendees/me/status", eventHandler.MyStatus)
		api.PUT("/events/:id/attendees/me/confirm", eventHandler.Confirm)
		api.GET("/events/:id/attendees/:attendeeId/status", staff, eventHandler.AttendeeStatus)
		api.PUT("/events/:id/selection", admin, eventHandler.Select)

		// Questions
		api.GET("/questions", admin, questionHandler.List)
		api.POST("/questions", admin, questionHandler.Create)
		api.GET("/questions/:id", admin, questionHandler.Get)
		api.PUT("/questions/:id", admin, questionHandler.Update)
		api.DELETE("/questions/:id", admin, questionHandler.Delete)
		api.POST("/questions/:id/validate", questionHandler.Validate)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/events/:id/ws", realtime.ServeWs(hub, logger, jwtValidate, cfg.Server.Origins()))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
