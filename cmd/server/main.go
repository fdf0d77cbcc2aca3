package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shush-app/guarded-blocking-go/internal/config"
	"github.com/shush-app/guarded-blocking-go/internal/db"
	"github.com/shush-app/guarded-blocking-go/internal/db/repository"
	"github.com/shush-app/guarded-blocking-go/internal/handler"
	"github.com/shush-app/guarded-blocking-go/internal/middleware"
	"github.com/shush-app/guarded-blocking-go/internal/notify"
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

	log := logger.Named("server")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close(pool)

	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)

	// Notifications are best-effort: without a broker the API still runs,
	// guardians just do not get emails.
	var notifier notify.Notifier = notify.Nop{}
	var broker handler.BrokerHealth
	publisher, err := notify.NewPublisher(&cfg.RabbitMQ)
	if err != nil {
		log.Warn("RabbitMQ unavailable, notifications disabled", zap.Error(err))
	} else {
		notifier = publisher
		broker = publisher
		defer publisher.Close() //nolint:errcheck // closing on the way out
		log.Info("Notification publisher initialized",
			zap.String("exchange", cfg.RabbitMQ.Exchange),
		)
	}

	contactRepo := repository.NewBlockedContactRepository(pool)
	guardianRepo := repository.NewGuardianRepository(pool)
	requestRepo := repository.NewUnblockRequestRepository(pool)

	blocklist := service.NewBlocklistService(contactRepo)
	guardians := service.NewGuardianService(guardianRepo)
	flow := service.NewFlowService(contactRepo, guardianRepo, requestRepo, notifier, cfg.Flow.CoolingOffBase)
	gateway := service.NewDecisionGateway(requestRepo, contactRepo, notifier)
	stats := service.NewStatsService(contactRepo, guardianRepo, requestRepo)

	if len(cfg.Auth.APIKeys) == 0 {
		log.Warn("No API keys configured, all API requests will be rejected")
	}
	auth := middleware.NewAPIKeyAuth(cfg.Auth.APIKeys, nil)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewServerRouter(handler.ServerHandlers{
		Contacts:  handler.NewContactHandler(blocklist),
		Guardians: handler.NewGuardianHandler(guardians, gateway, stats),
		Flows:     handler.NewFlowHandler(flow, gateway),
		Stats:     handler.NewStatsHandler(stats),
		Health:    handler.NewHealthHandler(pool, broker),
	}, middleware.RequestLogger(nil), auth.Middleware())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("Server error", zap.Error(err))
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				log.Error("Failed to close server", zap.Error(err))
			}
			return
		}

		log.Info("Server stopped gracefully")
	}
}
