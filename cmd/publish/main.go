// Command publish loads the storm CSV and writes its observations to Kafka.
//
// Usage:
//
//	go run ./cmd/publish [-csv path] [-year 2000]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-dashboard/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/storm-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/storm-dashboard/internal/config"
	"github.com/couchcryptid/storm-dashboard/internal/observability"
	"github.com/couchcryptid/storm-dashboard/internal/pipeline"
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

	csvPath := flag.String("csv", cfg.CSVPath, "path to the storm CSV")
	year := flag.Int("year", 0, "publish only this year (0 = all years)")
	flag.Parse()

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ds, err := csvfile.Open(*csvPath, cfg.CSVCharset, clockwork.NewRealClock())
	if err != nil {
		logger.Error("failed to load storm data", "path", *csvPath, "error", err)
		os.Exit(1)
	}

	observations := ds.Observations()
	if *year != 0 {
		if !ds.HasYear(*year) {
			logger.Error("year not present in storm data", "year", *year)
			os.Exit(1)
		}
		observations = ds.FilterByYear(*year)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	writer := kafkaadapter.NewWriter(cfg, logger)
	p := pipeline.New(writer, logger, metrics, cfg.BatchSize)

	published, runErr := p.Run(ctx, observations)

	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if runErr != nil {
		logger.Error("publish failed", "published", published, "total", len(observations), "error", runErr)
		os.Exit(1)
	}

	logger.Info("publish finished", "published", published, "topic", cfg.KafkaTopic)
}
