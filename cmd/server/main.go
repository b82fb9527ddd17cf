package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/uniflow/uniflow-backend/internal/config"
	"github.com/uniflow/uniflow-backend/internal/database"
	"github.com/uniflow/uniflow-backend/internal/handler"
	"github.com/uniflow/uniflow-backend/internal/lock"
	"github.com/uniflow/uniflow-backend/internal/logger"
	"github.com/uniflow/uniflow-backend/internal/middleware"
	"github.com/uniflow/uniflow-backend/internal/repository"
	"github.com/uniflow/uniflow-backend/internal/repository/memory"
	"github.com/uniflow/uniflow-backend/internal/router"
	"github.com/uniflow/uniflow-backend/internal/seed"
	"github.com/uniflow/uniflow-backend/internal/service"
	"github.com/uniflow/uniflow-backend/internal/validator"
	"github.com/uniflow/uniflow-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("scheduling_lock", cfg.SchedulingLock).
		Bool("auth_enabled", cfg.JWTSecret != "").
		Msg("Starting Uniflow Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Timetable Store ──────────────────────────────────────────
	var (
		store     service.TimetableStore
		memStore  *memory.Store
		pingStore handler.PingFunc
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		memStore = memory.New()
		store = memStore
		log.Warn().Msg("Using in-memory store; data is lost on restart")
	case config.StoreDriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		store = repository.NewStore(pool)
		pingStore = pool.Ping
	default:
		log.Fatal().Str("store", cfg.StoreDriver).Msg("Unknown STORE_DRIVER")
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	var rdb *redis.Client
	if cfg.UsesRedis() {
		var err error
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
	}

	// ─── Scheduling Lock, Events, Report Cache ─────────────────────────
	locker := newLocker(cfg, rdb, log)

	var (
		events service.EventBus
		cache  service.ReportCache
	)
	if rdb != nil {
		events = service.NewRedisEventBus(rdb, log)
		cache = service.NewRedisReportCache(rdb)
	} else {
		events = service.NewLocalEventBus()
		cache = service.NewMemoryReportCache()
	}

	// ─── Initialize Services ──────────────────────────────────────────
	conflictValidator := service.NewConflictValidator(store, log)
	sessionService := service.NewSessionService(store, conflictValidator, locker, events, log)
	enrollmentService := service.NewEnrollmentService(store, conflictValidator, locker, events, log)
	referenceService := service.NewReferenceService(store)
	reportService := service.NewConflictReportService(store, log)

	if memStore != nil {
		sum, err := seed.Demo(ctx, memStore, sessionService, enrollmentService, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo timetable")
		}
		log.Info().
			Int("sessions", sum.Sessions).
			Int("enrollments", sum.Enrollments).
			Msg("Demo timetable seeded")
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	auditWorker := worker.NewAuditWorker(reportService, cache, events, rdb, cfg.AuditInterval, log)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		auditWorker.Start(workerCtx)
	}()

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Session:    handler.NewSessionHandler(sessionService),
		Enrollment: handler.NewEnrollmentHandler(enrollmentService),
		Reference:  handler.NewReferenceHandler(referenceService),
		Report:     handler.NewReportHandler(reportService, cache, auditWorker, log),
		WS:         handler.NewWSHandler(events, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(rdb, cfg.StoreDriver, pingStore, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, middleware.NewTokenVerifier(cfg.JWTSecret), handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the audit worker; an in-flight audit is abandoned.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(2 * time.Second):
		log.Warn().Msg("AuditWorker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// newLocker picks the scheduling lock backend named by SCHEDULING_LOCK.
func newLocker(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) service.Locker {
	switch cfg.SchedulingLock {
	case config.LockBackendRedis:
		return lock.NewRedis(rdb, cfg.LockTTL, cfg.LockWait)
	case config.LockBackendLocal:
		return lock.NewLocal(cfg.LockWait)
	case config.LockBackendNone:
		log.Warn().Msg("Scheduling lock disabled; store constraints are the only race guard")
		return lock.Nop{}
	default:
		log.Fatal().Str("scheduling_lock", cfg.SchedulingLock).Msg("Unknown SCHEDULING_LOCK")
		return nil
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
