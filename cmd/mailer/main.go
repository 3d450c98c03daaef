// Package main runs the mail service: it accepts send requests, renders templates and queues delivery.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/polyhx/hackatown-backend/config"
	"github.com/polyhx/hackatown-backend/internal/emaillogs"
	"github.com/polyhx/hackatown-backend/internal/mail"
	"github.com/polyhx/hackatown-backend/internal/middleware"
	"github.com/polyhx/hackatown-backend/pkg/database"
	"github.com/polyhx/hackatown-backend/pkg/queue"
	"github.com/polyhx/hackatown-backend/pkg/redis"
	"github.com/polyhx/hackatown-backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Mailer.APIKey == "" {
		logger.Warn("MAILER_API_KEY not set, mail endpoints are unauthenticated")
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

	jobQueue := queue.NewQueue(rdb.Client, logger)
	logRepo := emaillogs.NewRepository(pool)
	sendHandler := mail.NewHandler(mail.NewTemplateRepository(pool), logRepo, jobQueue, logger)
	logHandler := emaillogs.NewHandler(logRepo, jobQueue, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("")
	api.Use(middleware.APIKey(cfg.Mailer.APIKey))
	{
		api.POST("/email", sendHandler.Send)
		api.GET("/emails", logHandler.List)
		api.POST("/emails/:id/resend", logHandler.Resend)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Mailer.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("mail service listening", zap.String("port", cfg.Mailer.Port))
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
	logger.Info("mail service stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
