// zenspend-worker consumes ledger events from the broker and writes the
// audit trail. It runs as a separate process so the web server never
// blocks on the broker.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Arpanmondalz/zen-spend/internal/amqp"
	"github.com/Arpanmondalz/zen-spend/internal/config"
	"github.com/Arpanmondalz/zen-spend/internal/log"
	"github.com/Arpanmondalz/zen-spend/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(slog.LevelInfo, log.ComponentWorker)
	log.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", log.FieldError, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to broker", log.FieldError, err)
		os.Exit(1)
	}
	defer events.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auditor := worker.NewAuditWorker(events, logger)
	logger.Info("Audit worker started", "queue", cfg.AMQPQueue)

	if err := auditor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shut down", "events_processed", auditor.Processed())
}
