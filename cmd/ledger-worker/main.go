package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/PierreBrethes/life-map-back/internal/amqp"
	"github.com/PierreBrethes/life-map-back/internal/config"
	applog "github.com/PierreBrethes/life-map-back/internal/log"
	"github.com/PierreBrethes/life-map-back/internal/sheets"
	gsheet "github.com/PierreBrethes/life-map-back/internal/sheets/google"
	mem "github.com/PierreBrethes/life-map-back/internal/sheets/memory"
	"github.com/PierreBrethes/life-map-back/internal/storage"
	"github.com/PierreBrethes/life-map-back/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.NewFromEnv(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting ledger-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	var mirror sheets.LedgerMirror
	switch cfg.MirrorBackend {
	case config.MirrorGoogle:
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		mirror = mem.New()
		logger.Info("In-memory mirror initialized - rows are not persisted")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(sqliteRepo, mirror, cfg.MirrorBatchSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pick up anything that was posted while the worker was down.
	logger.Info("Performing startup catch-up...")
	if err := mirrorWorker.StartupCatchUp(ctx); err != nil {
		logger.Error("Startup catch-up failed", applog.FieldError, err)
		// Keep running; the periodic sweep will retry.
	}

	go func() {
		err := amqpClient.ConsumeLedgerSync(ctx, func(msg *amqp.LedgerSyncMessage) error {
			return mirrorWorker.HandleSyncMessage(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", applog.FieldError, err)
		}
		cancel()
	}()

	// Sweep for entries whose messages were lost.
	ticker := time.NewTicker(cfg.MirrorSweepInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := mirrorWorker.ProcessPending(ctx); err != nil {
					logger.Error("Pending sweep failed", applog.FieldError, err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down ledger-worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(5 * time.Second):
		logger.Info("Ledger-worker shutdown complete")
	}
}
