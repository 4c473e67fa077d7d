package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"grana/internal/amqp"
	"grana/internal/config"
	applog "grana/internal/log"
	"grana/internal/services"
	"grana/internal/storage"
	"grana/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.LevelFromEnv(), applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	st := store.New()
	if cfg.DataBackend == "sqlite" {
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()

		snap, err := repo.LoadAll(context.Background())
		if err != nil {
			logger.Error("Failed to load snapshot", "error", err)
			os.Exit(1)
		}
		st.Hydrate(snap.Transactions, snap.IncomeSources, snap.Cards, snap.Budgets, snap.Goals, snap.Notifications)
		st.SetPersister(repo)
	} else {
		st = store.NewSeeded()
	}

	// Materialized instances are announced like any other insert, so the
	// notification worker picks them up.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	txService := services.NewTransactionService(st, publisher)
	processor := services.NewRecurringProcessor(st, txService)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Recurring processor configured", "interval", cfg.RecurringInterval.String())

	// Run initial processing on startup.
	if count, err := processor.ProcessDue(ctx, time.Now().UTC()); err != nil {
		logger.Error("Initial processing failed", "error", err)
	} else {
		logger.Info("Initial processing complete", "created", count)
	}

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Recurring-worker shutdown complete")
			return
		case now := <-ticker.C:
			count, err := processor.ProcessDue(ctx, now.UTC())
			if err != nil {
				logger.Error("Periodic processing failed", "error", err)
			} else {
				logger.Info("Periodic processing complete",
					"created", count,
					"next_check", now.Add(cfg.RecurringInterval).Format("15:04:05"))
			}
		}
	}
}
