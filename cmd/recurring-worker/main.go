package main

import (
	"context"
	"os"
	"time"

	"budget/internal/cli"
	applog "budget/internal/log"
	"budget/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentRecurring)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	res, app := cli.InitBackend(ctx, logger, cfg)
	defer cli.Cleanup(logger, res.Cleanup)

	if res.Publisher != nil {
		logger.Info("AMQP enabled - postings will be mirrored by budget-worker")
	} else {
		logger.Info("AMQP disabled - postings will not be mirrored")
	}

	interval := cfg.CatchUpInterval
	logger.Info("Recurring catch-up configured",
		"interval", interval,
		"backend", cfg.DataBackend)

	run := func(ctx context.Context, now time.Time) services.ProcessResult {
		result, err := app.Recurring.ProcessDue(ctx, now)
		if err != nil {
			logger.ErrorContext(ctx, "Catch-up failed", "error", err)
		}
		return result
	}

	logger.Info("Running initial catch-up...")
	result := run(ctx, time.Now())
	logger.Info("Initial catch-up complete", "posted", result.Posted, "failed", result.Failed)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Recurring-worker shutdown complete")
			return
		case now := <-ticker.C:
			result := run(ctx, now)
			logger.Info("Periodic catch-up complete",
				"posted", result.Posted,
				"skipped", result.Skipped,
				"failed", result.Failed,
				"next_check", now.Add(interval).Format("15:04:05"))
		}
	}
}
