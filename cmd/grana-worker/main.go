package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"grana/internal/amqp"
	"grana/internal/config"
	"grana/internal/export"
	applog "grana/internal/log"
	"grana/internal/services"
	"grana/internal/storage"
	"grana/internal/store"
	"grana/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.LevelFromEnv(), applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting grana-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	st := store.New()

	// The worker keeps its own view of the ledger. With the sqlite backend
	// it reloads from the shared database on every event; with the memory
	// backend it sweeps over the demo dataset.
	var loader worker.SnapshotLoader
	if cfg.DataBackend == "sqlite" {
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		loader = repo
	} else {
		st = store.NewSeeded()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Google Sheets mirror is optional.
	var exporter worker.TransactionExporter
	if cfg.SheetsEnabled() {
		sheets, err := export.NewSheetsExporter(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsName, cfg.SheetsServiceAccountKey)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = sheets
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.SheetsSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	notifier := services.NewNotifier(st, cfg.ClosingWarnDays, cfg.DueWarnDays)
	w := worker.NewNotificationWorker(st, notifier, exporter, loader)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeTransactionEvents(gctx, func(msg *amqp.TransactionEventMessage) error {
			return w.HandleTransactionEvent(gctx, msg)
		})
	})

	g.Go(func() error {
		return w.RunPeriodicSweep(gctx, cfg.NotifySweep)
	})

	logger.Info("Worker running",
		"queue", cfg.AMQPQueue,
		"sweep_interval", cfg.NotifySweep.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
