package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/Arpanmondalz/zen-spend/internal/amqp"
	"github.com/Arpanmondalz/zen-spend/internal/config"
	"github.com/Arpanmondalz/zen-spend/internal/log"
	"github.com/Arpanmondalz/zen-spend/internal/offline"
	"github.com/Arpanmondalz/zen-spend/internal/storage"
	"github.com/Arpanmondalz/zen-spend/web"
)

// setupLogger initializes structured logging and installs it as the
// process default.
func setupLogger() *log.Logger {
	level := slog.LevelInfo
	if os.Getenv("ZENSPEND_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.New(level, log.ComponentApp)
	log.SetDefault(logger)
	return logger
}

// loadEnvFile loads .env for local development. Missing files are fine.
func loadEnvFile() {
	_ = godotenv.Load()
}

// loadConfig parses and validates configuration from the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStorage opens the ledger database, running migrations.
func openStorage(cfg *config.Config) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	return repo, nil
}

// connectAMQP connects the optional event broker. An empty URL disables
// event publishing entirely.
func connectAMQP(cfg *config.Config, logger *log.Logger) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		// The ledger works fine without the broker; events are best effort.
		logger.Warn("AMQP unavailable, continuing without event publishing", log.FieldError, err)
		return nil
	}
	return client
}

// buildOfflineController assembles the asset cache from the embedded
// manifest and static files.
func buildOfflineController(cfg *config.Config, logger *log.Logger) (*offline.Controller, error) {
	manifest, err := offline.ParseManifest(web.ManifestTOML)
	if err != nil {
		return nil, fmt.Errorf("parse asset manifest: %w", err)
	}
	store, err := offline.NewStore(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open asset cache: %w", err)
	}
	client := &http.Client{Timeout: cfg.FetchTimeout}
	return offline.NewController(store, web.StaticFS, manifest, client, logger), nil
}
