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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/branch-roster-api/api/swagger"
	"github.com/noah-isme/branch-roster-api/internal/handler"
	"github.com/noah-isme/branch-roster-api/internal/middleware"
	"github.com/noah-isme/branch-roster-api/internal/repository"
	"github.com/noah-isme/branch-roster-api/internal/service"
	"github.com/noah-isme/branch-roster-api/pkg/cache"
	"github.com/noah-isme/branch-roster-api/pkg/config"
	"github.com/noah-isme/branch-roster-api/pkg/database"
	"github.com/noah-isme/branch-roster-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/branch-roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/branch-roster-api/pkg/middleware/requestid"
	"github.com/noah-isme/branch-roster-api/pkg/storage"
)

// @title Branch Roster API
// @version 1.0.0
// @description Assigns teachers to branches by weekday and week.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, roster cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := validator.New()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Roster.CacheTTL, logr, cfg.Roster.CacheEnabled && cacheRepo.Enabled())

	branchRepo := repository.NewBranchRepository(db)
	scheduleRepo := repository.NewBranchScheduleRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	ledgerRepo := repository.NewWeeklyAssignmentRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)

	projection := service.NewProjectionService(branchRepo, scheduleRepo, teacherRepo, ledgerRepo, slotRepo, cacheSvc, metrics, logr)
	branchSvc := service.NewBranchService(branchRepo, scheduleRepo, slotRepo, db, projection, validate, metrics, logr)
	scheduleSvc := service.NewBranchScheduleService(scheduleRepo, branchRepo, projection, validate, metrics, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, ledgerRepo, slotRepo, db, projection, validate, logr)
	assignmentSvc := service.NewAssignmentService(teacherRepo, branchRepo, scheduleRepo, ledgerRepo, db, projection, validate, metrics, logr)
	slotSvc := service.NewTimeSlotService(slotRepo, teacherRepo, branchRepo, projection, validate, logr)

	exportHandler := handler.NewExportHandler(nil)
	if cfg.Exports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			return fmt.Errorf("init export storage: %w", err)
		}
		exportSvc := service.NewExportService(projection, files, storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL), service.ExportConfig{
			APIPrefix:       cfg.APIPrefix,
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			Workers:         cfg.Exports.WorkerConcurrency,
			MaxRetries:      cfg.Exports.WorkerRetries,
		}, validate, metrics, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
		exportHandler = handler.NewExportHandler(exportSvc)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	probes := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", probes.Health)
	r.GET("/ready", probes.Ready)
	r.GET("/metrics", probes.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), handler.Handlers{
		Branches:  handler.NewBranchHandler(branchSvc, scheduleSvc),
		Schedules: handler.NewBranchScheduleHandler(scheduleSvc),
		Teachers:  handler.NewTeacherHandler(teacherSvc, projection, assignmentSvc),
		Roster:    handler.NewRosterHandler(projection),
		TimeSlots: handler.NewTimeSlotHandler(slotSvc),
		Exports:   exportHandler,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
