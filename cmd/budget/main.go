package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budget/internal/cache"
	"budget/internal/cli"
	apphttp "budget/internal/http"
	applog "budget/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	res, app := cli.InitBackend(ctx, logger, cfg)
	defer cli.Cleanup(logger, res.Cleanup)

	// Post recurring incomes missed while the server was down before
	// accepting requests.
	if result, err := app.Recurring.ProcessDue(ctx, time.Now()); err != nil {
		logger.Error("Startup catch-up failed", "error", err)
	} else {
		logger.Info("Startup catch-up complete", "posted", result.Posted, "failed", result.Failed)
	}

	srv := apphttp.NewServer(":"+cfg.Port, app, res.Store, apphttp.Options{
		Logger:               logger.WithComponent(applog.ComponentHTTP),
		PINAttemptsPerMinute: cfg.PINAttemptsPerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16

	caches := cache.NewManager(logger.Logger)
	caches.Register(app.ReportCache)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budget server", "port", cfg.Port, "backend", cfg.DataBackend, "amqp", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		caches.Run(gctx, 10*time.Minute)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		cli.Cleanup(logger, res.Cleanup)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
