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
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutoring-admin-api/api/swagger"
	"github.com/noah-isme/tutoring-admin-api/internal/handler"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	"github.com/noah-isme/tutoring-admin-api/internal/repository"
	"github.com/noah-isme/tutoring-admin-api/internal/router"
	"github.com/noah-isme/tutoring-admin-api/internal/service"
	"github.com/noah-isme/tutoring-admin-api/migrations"
	"github.com/noah-isme/tutoring-admin-api/pkg/cache"
	"github.com/noah-isme/tutoring-admin-api/pkg/config"
	"github.com/noah-isme/tutoring-admin-api/pkg/database"
	"github.com/noah-isme/tutoring-admin-api/pkg/jobs"
	"github.com/noah-isme/tutoring-admin-api/pkg/logger"
	"github.com/noah-isme/tutoring-admin-api/pkg/mail"
	"github.com/noah-isme/tutoring-admin-api/pkg/storage"
)

// @title Tutoring Admin API
// @version 1.0.0
// @description Back office for a tutoring business: calendar, availability, lessons, payments and reports.
// @BasePath /api/v1
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
	if cfg.Rollbar.Token != "" {
		defer logger.Flush()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, migrations.FS, migrations.Dir); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, calendar cache disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()
	roles := models.DefaultRoleTable()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Calendar.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "tutoring-admin-api",
	})
	permissionSvc := service.NewPermissionService(permissionRepo, userRepo, roles, logr)
	calendarSvc := service.NewCalendarService(userRepo, lessonRepo, availabilityRepo, permissionSvc, cacheSvc, metricsSvc, userRepo, logr,
		service.CalendarConfig{CacheTTL: cfg.Calendar.CacheTTL, BatchConcurrency: cfg.Calendar.BatchConcurrency})
	userSvc := service.NewUserService(userRepo, roles, validate, calendarSvc, logr)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, userRepo, cacheSvc, userRepo, validate, logr)
	lessonSvc := service.NewLessonService(lessonRepo, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, lessonRepo, userRepo, userRepo, validate, logr)
	salarySvc := service.NewSalaryService(userRepo, lessonRepo, paymentRepo, userRepo, logr)

	if written, err := permissionSvc.SeedDefaults(ctx); err != nil {
		logr.Error("failed to seed default permissions", zap.Error(err))
	} else if written > 0 {
		logr.Info("default permissions written", zap.Int("rows", written))
	}

	fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(lessonRepo, fileStore, signer,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL}, logr)

	var mailer mail.Sender = mail.NewLogSender(logr)
	if cfg.Mail.SendGridAPIKey != "" {
		mailer = mail.NewSendGridSender(cfg.Mail.SendGridAPIKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
	}

	worker := service.NewDailyReportWorker(lessonRepo, exportSvc, mailer, metricsSvc, service.DailyReportConfig{
		Recipients:    cfg.Reports.DailyRecipients,
		PublicBaseURL: cfg.Reports.PublicBaseURL,
	}, logr)
	reportQueue := jobs.NewQueue[service.DailyReportPayload]("daily-report", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 30 * time.Second,
		Logger:     logr,
	})
	reportQueue.Start(ctx)
	defer reportQueue.Stop()
	dailySvc := service.NewDailyReportService(reportQueue, logr)

	if cfg.Reports.DailyEnabled {
		daily := jobs.NewTicker("daily-report", cfg.Reports.DailyInterval, dailySvc.RunScheduled, logr)
		daily.Start(ctx)
		defer daily.Stop()
	}
	cleanup := jobs.NewTicker("export-cleanup", cfg.Reports.CleanupInterval, func(context.Context) {
		if _, err := exportSvc.Cleanup(0); err != nil {
			logr.Warn("export cleanup failed", zap.Error(err))
		}
	}, logr)
	cleanup.Start(ctx)
	defer cleanup.Stop()

	engine := router.New(router.Config{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		EnableSwagger:  cfg.Env != config.EnvProduction,
		Tokens:         authSvc,
		Permissions:    permissionSvc,
		Audit:          userRepo,
		Metrics:        metricsSvc,
		Logger:         logr,
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Users:        handler.NewUserHandler(userSvc, roles),
		Calendar:     handler.NewCalendarHandler(calendarSvc),
		Availability: handler.NewAvailabilityHandler(availabilitySvc),
		Lessons:      handler.NewLessonHandler(lessonSvc),
		Payments:     handler.NewPaymentHandler(paymentSvc),
		Reports:      handler.NewReportHandler(salarySvc, dailySvc),
		Exports:      handler.NewExportHandler(exportSvc),
		Permissions:  handler.NewPermissionHandler(permissionSvc, roles, validate),
		Metrics:      handler.NewMetricsHandler(metricsSvc, db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
