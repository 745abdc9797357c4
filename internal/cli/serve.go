package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Arpanmondalz/zen-spend/internal/backup"
	zhttp "github.com/Arpanmondalz/zen-spend/internal/http"
	"github.com/Arpanmondalz/zen-spend/internal/log"
	"github.com/Arpanmondalz/zen-spend/internal/services"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the budgeting web server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	loadEnvFile()
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repo, err := openStorage(cfg)
	if err != nil {
		return err
	}

	events := connectAMQP(cfg, logger)
	ledger := services.NewLedgerService(repo, events)
	defer ledger.Close()

	assets, err := buildOfflineController(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the asset cache before taking traffic. A failed install is
	// not fatal: assets are fetched lazily on first request instead.
	if err := assets.Install(ctx); err != nil {
		logger.Warn("Offline asset install failed, falling back to lazy fetching", log.FieldError, err)
	} else if err := assets.Activate(ctx); err != nil {
		logger.Warn("Offline cache activation failed", log.FieldError, err)
	}

	srv := zhttp.NewServer(":"+cfg.Port, ledger, backup.NewService(repo, events), assets, logger)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", log.FieldError, err)
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}
