package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"moneymap/internal/backend"
	"moneymap/internal/cache"
	"moneymap/internal/cli"
	"moneymap/internal/log"
	"moneymap/internal/worker"
)

const cacheSweepInterval = 10 * time.Minute

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentWorker)
	logger.Info("Starting moneymap-worker", "events", cfg.EventsBackend)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	if bcfg.SheetsEnabled() {
		if err := cfg.ValidateSheets(); err != nil {
			logger.Error("Sheets configuration validation failed", log.FieldError, err)
			os.Exit(1)
		}
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	factory := backend.NewFactory(logger)
	exporter, err := factory.CreateExporter(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize exporter", log.FieldError, err)
		os.Exit(1)
	}

	consumer, err := factory.CreateConsumer(bcfg)
	if err != nil {
		logger.Error("Failed to initialize consumer", log.FieldError, err)
		os.Exit(1)
	}
	defer consumer.Close()

	w := worker.NewExportWorker(exporter, worker.Config{
		RatePerSec: cfg.ExportRatePerSec,
		DedupeTTL:  cfg.ExportDedupeTTL,
		DedupeSize: cfg.ExportDedupeSize,
	}, logger)

	// A failed warm-up only risks duplicate rows.
	if _, err := w.WarmUp(ctx, exporter); err != nil {
		logger.Warn("Failed to load exported ids", log.FieldError, err)
	}

	tracer := worker.NewTracer(logger)
	caches := cache.NewManager(logger)
	caches.Register(w.Seen())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Consume(gctx, tracer.Wrap(w.HandleRecordEvent))
	})
	g.Go(func() error {
		return caches.Run(gctx, cacheSweepInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)

	m := tracer.Metrics()
	logger.Info("Worker shutdown complete", "handled", m.Handled, "failed", m.Failed)
}
