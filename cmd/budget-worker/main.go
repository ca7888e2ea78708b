package main

import (
	"context"
	"errors"
	"os"

	"budget/internal/amqp"
	"budget/internal/backend"
	"budget/internal/cli"
	applog "budget/internal/log"
	"budget/internal/worker"
)

// budget-worker mirrors every posted transaction into the spreadsheet.
func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting budget-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for budget-worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	mirror, err := backend.NewFactory(logger.Logger).CreateMirror(ctx, bc)
	if err != nil {
		logger.Error("Failed to initialize spreadsheet mirror", "error", err)
		os.Exit(1)
	}
	if cfg.SheetsEnabled() {
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set - mirroring into memory only")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewMirrorWorker(mirror, 0, 0)
	if err := w.Run(ctx, client); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		client.Close()
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
