package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/payment-gateway/internal/api_gateway"
	"github.com/payment-gateway/internal/api_gateway/service"
	"github.com/payment-gateway/internal/config"
	"github.com/payment-gateway/internal/data/postgres"
	"github.com/payment-gateway/internal/data/redis"
	"github.com/payment-gateway/internal/domain/transaction"
	"github.com/payment-gateway/internal/logger"
	"github.com/payment-gateway/internal/platform/metrics"
	"github.com/payment-gateway/internal/platform/persistence"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("payment_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Payment Gateway",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB.Pool())
	var transactionRepo transaction.Repository = postgres.NewTransactionRepository(log, postgresDB.Pool(), outboxRepo)

	// Status cache in front of the transaction store
	var redisDB *persistence.RedisDB
	if cfg.Redis.Enabled {
		redisDB, err = persistence.NewRedisDB(appCtx, log, &cfg.Redis)
		if err != nil {
			log.Error("Failed to initialize Redis", "error", err)
			os.Exit(1)
		}
		transactionRepo = redis.NewCachedTransactionRepository(log, transactionRepo, redisDB, cfg.Redis.CacheTTL)
	}

	// Outcome assignment; a seed makes runs reproducible
	var source transaction.IntSource
	if cfg.Payment.OutcomeSeed != 0 {
		log.Info("Using seeded outcome source", "seed", cfg.Payment.OutcomeSeed)
		source = transaction.NewSeededSource(cfg.Payment.OutcomeSeed)
	}
	assignor := transaction.NewWeightedAssignor(source)

	// Metrics
	m := metrics.New(prometheus.NewRegistry())

	// Initialize services
	paymentService := service.NewPaymentService(log, transactionRepo, assignor, m, cfg.Payment.SimulatedLatency)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, paymentService, m)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Drain HTTP requests before closing the stores they use
	var shutdownErr error
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	if redisDB != nil {
		if err := redisDB.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
			shutdownErr = err
		}
	}

	postgresDB.Close()

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if shutdownErr != nil {
		log.Error("Payment Gateway shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Payment Gateway shutdown completed successfully")
}
