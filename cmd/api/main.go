package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/bodhmantraa/bodhmantraa-api/api/swagger"
	"github.com/bodhmantraa/bodhmantraa-api/internal/repository"
	"github.com/bodhmantraa/bodhmantraa-api/internal/service"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/cache"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/config"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/database"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/logger"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/storage"
)

// @title BodhMantraa API
// @version 1.0.0
// @description Mentorship platform backend: students, mentors, requests, reviews, admin moderation
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The directory cache is an optimization; the API serves without it.
		logr.Sugar().Warnw("redis unavailable, directory cache disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(db)
	mentorRepo := repository.NewMentorRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Directory.CacheTTL, logr,
		cfg.Directory.CacheEnabled && redisClient != nil)

	notificationSvc := service.NewNotificationService(cfg.Notifications, logr)

	authSvc := service.NewAuthService(studentRepo, mentorRepo, adminRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	mentorSvc := service.NewMentorService(mentorRepo, cacheSvc, validate, logr)
	requestSvc := service.NewRequestService(requestRepo, mentorRepo, notificationSvc, validate, logr)
	reviewSvc := service.NewReviewService(reviewRepo, mentorSvc, validate, logr)

	adminSvc := service.NewAdminService(studentRepo, mentorRepo, requestRepo, mentorSvc, nil, logr)
	if cfg.Exports.ArchiveEnabled {
		archive, err := storage.NewLocalStorage(cfg.Exports.ArchiveDir)
		if err != nil {
			logr.Sugar().Warnw("export archive unavailable", "error", err)
		} else {
			if removed, err := archive.Prune(cfg.Exports.Retention); err != nil {
				logr.Sugar().Warnw("failed to prune export archive", "error", err)
			} else if removed > 0 {
				logr.Sugar().Infow("pruned expired export archives", "removed", removed)
			}
			adminSvc = service.NewAdminService(studentRepo, mentorRepo, requestRepo, mentorSvc, archive, logr)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	router := setupRouter(cfg, logr, db, routerServices{
		auth:     authSvc,
		mentors:  mentorSvc,
		requests: requestSvc,
		reviews:  reviewSvc,
		admin:    adminSvc,
		metrics:  metricsSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
