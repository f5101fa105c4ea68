package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dime/internal/amqp"
	"dime/internal/config"
	"dime/internal/log"
	"dime/internal/services"
	"dime/internal/storage"
)

func main() {
	// .env is for local development; missing in containers is fine.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize storage", log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Materialized transactions go through the transaction service so they
	// publish export messages like manual ones.
	var publisher services.ExportPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("failed to initialize AMQP client, continuing without exports", log.FieldError, err.Error())
		} else {
			defer client.Close()
			publisher = client
		}
	} else {
		logger.Info("AMQP disabled, materialized transactions will not export")
	}

	transactions := services.NewTransactionService(repo, publisher, nil, logger)
	processor := services.NewRecurringProcessor(repo, transactions, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("recurring payment processor configured",
		"interval", cfg.RecurringInterval.String(),
		"sqlite_db", cfg.SQLiteDBPath)

	run := func(now time.Time) {
		count, err := processor.ProcessDuePayments(ctx, now)
		if err != nil {
			logger.Error("recurring processing failed", log.FieldError, err.Error())
			return
		}
		logger.Info("recurring processing complete", "transactions_created", count)
	}

	// Catch up immediately on startup, then poll on the interval.
	run(time.Now())

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				run(now)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutdown signal received", log.FieldOperation, log.OpShutdown, "signal", sig.String())
}
