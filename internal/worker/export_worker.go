// Package worker turns record-appended events into spreadsheet rows.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"moneymap/internal/cache"
	"moneymap/internal/events"
	"moneymap/internal/log"
	"moneymap/internal/sheets"
)

// ErrMissingRecordID rejects events that cannot be deduplicated.
var ErrMissingRecordID = errors.New("event has no record id")

type Config struct {
	RatePerSec float64
	DedupeTTL  time.Duration
	DedupeSize int
}

func DefaultConfig() Config {
	return Config{RatePerSec: 1, DedupeTTL: 24 * time.Hour, DedupeSize: 10000}
}

// ExportWorker writes each record at most once per dedupe window and never
// faster than the configured rate.
type ExportWorker struct {
	exporter sheets.RecordExporter
	seen     *cache.LRUCache[string]
	limiter  *rate.Limiter
	logger   *log.Logger
}

func NewExportWorker(exporter sheets.RecordExporter, cfg Config, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Nop()
	}
	def := DefaultConfig()
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = def.RatePerSec
	}
	if cfg.DedupeSize < 1 {
		cfg.DedupeSize = def.DedupeSize
	}
	return &ExportWorker{
		exporter: exporter,
		seen:     cache.NewLRUCache[string](cfg.DedupeSize, cfg.DedupeTTL),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Seen exposes the dedupe cache so a cache.Manager can sweep it.
func (w *ExportWorker) Seen() *cache.LRUCache[string] {
	return w.seen
}

// WarmUp marks records already present in the sheet as exported.
func (w *ExportWorker) WarmUp(ctx context.Context, lister sheets.ExportedLister) (int, error) {
	ids, err := lister.ListExportedIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list exported ids: %w", err)
	}
	for _, id := range ids {
		w.seen.Set(id, "warmup")
	}
	w.logger.InfoContext(ctx, "Loaded exported record ids", "count", len(ids))
	return len(ids), nil
}

// HandleRecordEvent satisfies events.Handler.
func (w *ExportWorker) HandleRecordEvent(ctx context.Context, e events.RecordEvent) error {
	id := e.Record.ID
	if id == "" {
		return ErrMissingRecordID
	}
	if ref, ok := w.seen.Get(id); ok {
		w.logger.DebugContext(ctx, "Skipping already exported record",
			log.FieldRecordID, id, log.FieldSheetsRef, ref)
		return nil
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	ref, err := w.exporter.ExportRecord(ctx, e.Email, e.Record)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to export record",
			log.FieldRecordID, id, log.FieldEmail, e.Email, log.FieldError, err)
		return fmt.Errorf("export record %s: %w", id, err)
	}
	w.seen.Set(id, ref)

	w.logger.InfoContext(ctx, "Exported record",
		log.FieldRecordID, id, log.FieldEmail, e.Email, log.FieldSheetsRef, ref)
	return nil
}
