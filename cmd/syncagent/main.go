package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shush-app/guarded-blocking-go/internal/config"
	"github.com/shush-app/guarded-blocking-go/internal/db"
	"github.com/shush-app/guarded-blocking-go/internal/db/repository"
	"github.com/shush-app/guarded-blocking-go/internal/handler"
	"github.com/shush-app/guarded-blocking-go/internal/localstore"
	"github.com/shush-app/guarded-blocking-go/internal/middleware"
	"github.com/shush-app/guarded-blocking-go/internal/screening"
	"github.com/shush-app/guarded-blocking-go/internal/service"
	"github.com/shush-app/guarded-blocking-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	log := logger.Named("syncagent")

	userID, err := uuid.Parse(cfg.Agent.UserID)
	if err != nil {
		log.Fatal("agent.userid must be set to the account UUID this device mirrors", zap.Error(err))
	}

	store, err := localstore.Open(cfg.Agent.DataDir)
	if err != nil {
		log.Fatal("Failed to open local block store", zap.Error(err))
	}
	defer store.Close() //nolint:errcheck // closing on the way out

	ctx := context.Background()
	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close(pool)

	log.Info("Sync agent starting",
		zap.String("userId", userID.String()),
		zap.String("dataDir", cfg.Agent.DataDir),
		zap.Duration("syncInterval", cfg.Agent.SyncInterval),
	)

	contactRepo := repository.NewBlockedContactRepository(pool)
	requestRepo := repository.NewUnblockRequestRepository(pool)

	engine := service.NewSyncEngine(userID, contactRepo, requestRepo, store)
	screener := screening.NewScreener(store)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewAgentRouter(
		handler.NewAgentHandler(engine, screener, store),
		handler.NewHealthHandler(pool, nil),
		middleware.RequestLogger(nil),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Agent.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Agent endpoint listening", zap.Int("port", cfg.Agent.Port))
		serverErrors <- server.ListenAndServe()
	}()

	// Run an initial sync immediately so a fresh device converges before the
	// first tick.
	runSync(ctx, engine, log)

	ticker := time.NewTicker(cfg.Agent.SyncInterval)
	defer ticker.Stop()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runSync(ctx, engine, log)
		case err := <-serverErrors:
			log.Fatal("Agent endpoint error", zap.Error(err))
		case sig := <-shutdown:
			log.Info("Shutdown signal received", zap.String("signal", sig.String()))

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("Graceful shutdown failed", zap.Error(err))
				_ = server.Close()
			}

			log.Info("Sync agent stopped gracefully")
			return
		}
	}
}

func runSync(ctx context.Context, engine *service.SyncEngine, log *zap.Logger) {
	stats, err := engine.Run(ctx)
	if err != nil {
		// An overlapping manual sync already doing the work is not a failure.
		if errors.Is(err, service.ErrSyncInProgress) {
			log.Debug("Sync already in progress, skipping scheduled run")
			return
		}
		log.Error("Sync run failed", zap.Error(err))
		return
	}

	log.Info("Sync run completed",
		zap.Int("added", stats.Added),
		zap.Int("removed", stats.Removed),
		zap.Int("completed", stats.Completed),
		zap.Int("failures", stats.Failures),
	)
}
