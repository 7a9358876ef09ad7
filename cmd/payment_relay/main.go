package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/payment-gateway/internal/config"
	"github.com/payment-gateway/internal/data/mongo"
	"github.com/payment-gateway/internal/data/postgres"
	"github.com/payment-gateway/internal/logger"
	"github.com/payment-gateway/internal/payment_relay/components"
	"github.com/payment-gateway/internal/payment_relay/consumer"
	"github.com/payment-gateway/internal/payment_relay/outbox_poller"
	"github.com/payment-gateway/internal/platform/messaging/consumers"
	"github.com/payment-gateway/internal/platform/messaging/producers"
	"github.com/payment-gateway/internal/platform/persistence"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("payment_relay")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Payment Relay",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// One history record per transaction
	if err := mongoDB.EnsureUniqueIndex(appCtx, cfg.MongoDB.HistoryCollection, "transaction_id"); err != nil {
		log.Error("Failed to ensure history index", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB.Pool())
	historyRepo := mongo.NewHistoryRepository(log, mongoDB.Collection(cfg.MongoDB.HistoryCollection))

	// Initialize Kafka producers
	eventProducer, err := producers.NewPaymentEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize payment event producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Archive pipeline
	archiveService, shutdownPool := components.CreateArchiveService(historyRepo, log, cfg)
	paymentEventHandler := consumer.NewPaymentEventHandler(log, archiveService, deadLetters)

	// Outbox relay
	eventPublisher := outbox_poller.NewEventPublisher(outboxRepo, eventProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, eventPublisher, log)

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.PaymentEventsTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := kafkaConsumer.Subscribe(appCtx, paymentEventHandler.HandleMessage); err != nil {
		errChan <- fmt.Errorf("kafka consumer error: %w", err)
	}

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Wait for the poller and consumer loops to finish
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		if serviceErr == nil {
			<-kafkaConsumer.Done()
		}
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	shutdownPool()

	var shutdownErr error
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
		shutdownErr = err
	}

	if err := eventProducer.Close(); err != nil {
		log.Error("Error closing payment event producer", "error", err)
		shutdownErr = err
	}

	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
		shutdownErr = err
	}

	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		shutdownErr = err
	}

	// Final status
	if serviceErr != nil {
		log.Error("Payment Relay shutdown with errors", "error", serviceErr)
	}
	if shutdownErr != nil || serviceErr != nil {
		log.Error("Payment Relay shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Payment Relay shutdown completed successfully")
}
