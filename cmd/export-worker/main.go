package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dime/internal/amqp"
	"dime/internal/config"
	"dime/internal/log"
	ports "dime/internal/sheets"
	gsheet "dime/internal/sheets/google"
	mem "dime/internal/sheets/memory"
	"dime/internal/storage"
	"dime/internal/worker"
)

func main() {
	// .env is for local development; missing in containers is fine.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("starting export-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	repo, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize storage", log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Without Google credentials exports land in an in-memory sink, which
	// keeps local runs working end to end.
	var (
		writer  ports.TransactionWriter
		deleter ports.TransactionDeleter
	)
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			logger.Error("failed to initialize Google Sheets client", log.FieldError, err.Error())
			os.Exit(1)
		}
		writer, deleter = client, client
		logger.Info("Google Sheets backend initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		store := mem.New()
		writer, deleter = store, store
		logger.Info("no GOOGLE_SPREADSHEET_ID, using in-memory export backend")
	}

	exportWorker := worker.NewExportWorker(repo, writer, deleter, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", log.FieldOperation, log.OpShutdown, "signal", sig.String())
		cancel()
	}()

	handler := func(msg *amqp.ExportMessage) error {
		return exportWorker.Handle(ctx, msg)
	}

	logger.Info("consuming export messages", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	err = amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, handler)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("export-worker stopped gracefully")
}
