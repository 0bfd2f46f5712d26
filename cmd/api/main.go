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

	_ "github.com/schoolware/result-portal-api/api/swagger"
	"github.com/schoolware/result-portal-api/internal/handler"
	"github.com/schoolware/result-portal-api/internal/repository"
	"github.com/schoolware/result-portal-api/internal/service"
	"github.com/schoolware/result-portal-api/pkg/cache"
	"github.com/schoolware/result-portal-api/pkg/config"
	"github.com/schoolware/result-portal-api/pkg/database"
	"github.com/schoolware/result-portal-api/pkg/export"
	"github.com/schoolware/result-portal-api/pkg/logger"
	"github.com/schoolware/result-portal-api/pkg/storage"
)

// @title Result Portal API
// @version 1.0.0
// @description Role-based academic result management for Nigerian secondary schools
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
	sugar := logr.Sugar()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			sugar.Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	defer cacheRepo.Close() //nolint:errcheck

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		sugar.Fatalw("failed to init report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	termRepo := repository.NewTermRepository(db)
	gradingRepo := repository.NewGradingRepository(db)
	resultRepo := repository.NewResultRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)

	validate := validator.New()
	metrics := service.NewMetricsService()
	locker := service.NewCohortLocker(cfg.Cohort.LockTimeout)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	termSvc := service.NewTermService(termRepo, logr)
	gradingSvc := service.NewGradingService(gradingRepo, cacheRepo, validate, logr)
	summarySvc := service.NewSummaryService(summaryRepo, resultRepo, termRepo, locker, cacheRepo, cfg.Cache.DefaultTTL, metrics, validate, logr)
	resultSvc := service.NewResultService(resultRepo, termRepo, gradingSvc, summarySvc, locker, metrics, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)
	reportSvc := service.NewReportService(
		reportRepo, studentRepo, summarySvc, directoryRepo, termRepo,
		export.NewReportCardPDF(), store, signer,
		service.ReportQueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
		},
		metrics, validate, logr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportSvc.Start(ctx)
	defer reportSvc.Stop()

	router := handler.NewRouter(handler.RouterDeps{
		Config:    cfg,
		Logger:    logr,
		Metrics:   metrics,
		Auth:      authSvc,
		Terms:     termSvc,
		Grading:   gradingSvc,
		Results:   resultSvc,
		Summaries: summarySvc,
		Students:  studentSvc,
		Reports:   reportSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("server shutdown", "error", err)
	}
}
