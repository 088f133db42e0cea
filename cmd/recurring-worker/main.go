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
	"github.com/PierreBrethes/life-map-back/internal/services"
	"github.com/PierreBrethes/life-map-back/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.NewFromEnv(applog.ComponentRecurring)
	applog.SetDefault(logger)

	logger.Info("Starting recurring-worker")

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

	// Posted entries go through the ledger service so the mirror pipeline
	// sees engine postings exactly like manual ones.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", applog.FieldError, err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - postings will mirror via ledger-worker")
		}
	} else {
		logger.Info("AMQP disabled - postings will not be mirrored in real time")
	}

	ledgerService := services.NewLedgerService(sqliteRepo, amqpClient)
	engine := services.NewRecurringEngine(sqliteRepo, ledgerService).WithWorkers(cfg.RecurringWorkers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Reconciliation configured",
		"interval", cfg.RecurringInterval,
		"workers", cfg.RecurringWorkers,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	runOnce := func(now time.Time) {
		result, err := engine.Run(ctx, now)
		if err != nil {
			logger.Error("Reconciliation run failed", applog.FieldError, err)
			return
		}
		logger.Info("Reconciliation complete",
			"posted", result.Posted,
			"rule_errors", len(result.Errors))
		for _, ruleErr := range result.Errors {
			logger.Warn("Rule reconciliation error",
				applog.FieldRuleID, ruleErr.RuleID,
				applog.FieldError, ruleErr.Message)
		}
	}

	// Catch up immediately on startup, then on the ticker.
	logger.Info("Running initial reconciliation...")
	runOnce(time.Now())

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				runOnce(now)
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

	logger.Info("Shutting down recurring-worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(2 * time.Second):
		logger.Info("Recurring-worker shutdown complete")
	}
}
