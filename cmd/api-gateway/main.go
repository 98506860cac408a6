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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/timetabler-api/api/swagger"
	"github.com/noah-isme/timetabler-api/internal/handler"
	"github.com/noah-isme/timetabler-api/internal/mapper"
	"github.com/noah-isme/timetabler-api/internal/middleware"
	"github.com/noah-isme/timetabler-api/internal/repository"
	"github.com/noah-isme/timetabler-api/internal/service"
	"github.com/noah-isme/timetabler-api/internal/solver"
	"github.com/noah-isme/timetabler-api/internal/store"
	"github.com/noah-isme/timetabler-api/pkg/cache"
	"github.com/noah-isme/timetabler-api/pkg/config"
	"github.com/noah-isme/timetabler-api/pkg/database"
	"github.com/noah-isme/timetabler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetabler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetabler-api/pkg/middleware/requestid"
)

// @title Timetabler API
// @version 0.1.0
// @description Constraint-based timetable solver for school terms
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
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	solutions := store.NewSolutionStore(cfg.Solver.SolutionTTL, logr)
	solutions.StartSweeper(rootCtx, cfg.Solver.SweepInterval)

	metricsSvc := service.NewMetricsService()
	snapshots := repository.NewTermSnapshotRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	mirror := repository.NewScoreMirrorRepository(redisClient, cfg.Solver.ScoreMirrorTTL, logr)

	solverSvc := service.NewSolverService(
		snapshots,
		assignments,
		mapper.New(logr),
		solutions,
		mirror,
		metricsSvc,
		validator.New(),
		logr,
		service.SolverConfig{
			SolveTimeout:  cfg.Solver.SolveTimeout,
			MaxSteps:      cfg.Solver.MaxSteps,
			MaxUnimproved: cfg.Solver.MaxUnimproved,
			Weights:       solverWeights(cfg),
		},
	).WithBaseContext(rootCtx)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	handler.NewSolverHandler(solverSvc).Register(api)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

func solverWeights(cfg *config.Config) solver.Weights {
	w := solver.DefaultWeights()
	w.MaxHoursOverload = cfg.Solver.MaxHoursWeight
	return w
}
