package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bicired/bicired-api/internal/handler"
	"github.com/bicired/bicired-api/internal/repository"
	"github.com/bicired/bicired-api/internal/router"
	"github.com/bicired/bicired-api/internal/service"
	"github.com/bicired/bicired-api/pkg/cache"
	"github.com/bicired/bicired-api/pkg/config"
	"github.com/bicired/bicired-api/pkg/database"
	"github.com/bicired/bicired-api/pkg/jobs"
	"github.com/bicired/bicired-api/pkg/logger"
	"github.com/bicired/bicired-api/pkg/storage"
)

// @title BiciRed API
// @version 1.0.0
// @description Bicycle lending backend: loans, applications and the availability scheduler
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis connection failed", "error", err)
	}

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	userRepo := repository.NewUserRepository(db)
	bicycleRepo := repository.NewBicycleRepository(db)
	modelRepo := repository.NewBicycleModelRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	exitFormRepo := repository.NewExitFormRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "bicired-api",
	})
	userSvc := service.NewUserService(userRepo, submissionRepo, bookingRepo, validate, logr)
	bicycleSvc := service.NewBicycleService(bicycleRepo, cacheRepo, validate, logr)
	modelSvc := service.NewBicycleModelService(modelRepo, cacheRepo, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, modelRepo, bookingRepo, cacheRepo, validate, logr)
	bookingSvc := service.NewBookingService(bookingRepo, bicycleRepo, submissionRepo, cacheRepo, validate, logr)
	exitFormSvc := service.NewExitFormService(exitFormRepo, bookingRepo, validate, logr)
	kpiSvc := service.NewKPIService(bookingRepo, logr)
	metricsSvc := service.NewMetricsService()

	var files *storage.LocalStorage
	var signer *storage.SignedURLSigner
	if cfg.Exports.Enabled {
		files, err = storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("export storage init failed", "error", err)
		}
		signer = storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	}

	scheduleSvc := service.NewScheduleService(
		scheduleRepo,
		submissionRepo,
		bookingRepo,
		cacheRepo,
		cfg.Schedule.TemplateCacheTTL,
		validate,
		logr,
		files,
		signer,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		exportQueue = jobs.NewQueue("agenda-exports", func(ctx context.Context, job jobs.Job) error {
			return scheduleSvc.ProcessExportJob(ctx, job.ID)
		}, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportQueue.Start(ctx)
		defer exportQueue.Stop()
		scheduleSvc.SetQueue(exportQueue)

		// Sweep export files that outlived their download window.
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if removed, err := files.CleanupOlderThan(cfg.Exports.SignedURLTTL); err != nil {
						logr.Sugar().Warnw("export cleanup failed", "error", err)
					} else if len(removed) > 0 {
						logr.Sugar().Infow("export files removed", "count", len(removed))
					}
				}
			}
		}()
	}

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		User:         handler.NewUserHandler(userSvc),
		Bicycle:      handler.NewBicycleHandler(bicycleSvc),
		BicycleModel: handler.NewBicycleModelHandler(modelSvc),
		Submission:   handler.NewSubmissionHandler(submissionSvc),
		Booking:      handler.NewBookingHandler(bookingSvc),
		ExitForm:     handler.NewExitFormHandler(exitFormSvc),
		Schedule:     handler.NewScheduleHandler(scheduleSvc),
		KPI:          handler.NewKPIHandler(kpiSvc),
	}

	engine := router.New(cfg, logr, authSvc, metricsSvc, handlers)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}
