package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"budget/internal/backend"
	"budget/internal/config"
	"budget/internal/core"
)

// openApp opens the configured store. The returned func closes it.
func openApp(ctx context.Context, v *viper.Viper) (*backend.App, func(), error) {
	cfg := config.Load()
	cfg.DataBackend = v.GetString("data-backend")
	cfg.SQLiteDBPath = v.GetString("sqlite-db-path")
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(slog.Default()).CreateBackend(ctx, bc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app := backend.NewApp(res, backend.AppOptions{
		ReportCacheSize: cfg.ReportCacheSize,
		ReportCacheTTL:  cfg.ReportCacheTTL,
	})
	closeFn := func() {
		if err := res.Cleanup(); err != nil {
			slog.Error("failed to close storage", "error", err)
		}
	}
	return app, closeFn, nil
}

// parseDateFlag returns fallback for an empty value.
func parseDateFlag(name, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := core.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}
