package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-dashboard/internal/adapter/charts"
	"github.com/couchcryptid/storm-dashboard/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/storm-dashboard/internal/adapter/http"
	"github.com/couchcryptid/storm-dashboard/internal/config"
	"github.com/couchcryptid/storm-dashboard/internal/dashboard"
	"github.com/couchcryptid/storm-dashboard/internal/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	clock := clockwork.NewRealClock()

	ds, err := csvfile.Open(cfg.CSVPath, cfg.CSVCharset, clock)
	if err != nil {
		logger.Error("failed to load storm data", "path", cfg.CSVPath, "error", err)
		os.Exit(1)
	}
	logger.Info("storm data loaded",
		"path", cfg.CSVPath,
		"observations", ds.Len(),
		"years", len(ds.Years()),
		"loaded_at", ds.LoadedAt(),
	)

	svc := dashboard.NewService(ds, clock, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, charts.NewRenderer(cfg.ChartWidth, cfg.ChartHeight), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
