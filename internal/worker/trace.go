package worker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"moneymap/internal/events"
	"moneymap/internal/log"
)

type traceKey struct{}

// FieldTraceID tags every log line written while handling one delivery.
const FieldTraceID = "trace_id"

// Metrics counts handled deliveries.
type Metrics struct {
	Handled        int64
	Failed         int64
	LastDurationUS int64
}

// Tracer wraps an events.Handler with a per-delivery trace id, start and
// completion logs, and counters.
type Tracer struct {
	logger  *log.Logger
	handled atomic.Int64
	failed  atomic.Int64
	lastUS  atomic.Int64
}

func NewTracer(logger *log.Logger) *Tracer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Tracer{logger: logger.WithComponent(log.ComponentWorker)}
}

func (t *Tracer) Wrap(next events.Handler) events.Handler {
	return func(ctx context.Context, e events.RecordEvent) error {
		start := time.Now()
		traceID := GenerateTraceID()

		logger := t.logger.With(FieldTraceID, traceID, log.FieldRecordID, e.Record.ID)
		ctx = context.WithValue(ctx, traceKey{}, traceID)
		ctx = log.IntoContext(ctx, logger)

		logger.DebugContext(ctx, "Record event received",
			log.FieldEmail, e.Email,
			"published_at", e.Timestamp)

		err := next(ctx, e)

		d := time.Since(start)
		t.handled.Add(1)
		t.lastUS.Store(d.Microseconds())

		if err != nil {
			t.failed.Add(1)
			logger.ErrorContext(ctx, "Record event failed",
				log.FieldDuration, d.Milliseconds(),
				log.FieldSuccess, false,
				log.FieldError, err)
			return err
		}
		logger.InfoContext(ctx, "Record event handled",
			log.FieldDuration, d.Milliseconds(),
			log.FieldSuccess, true)
		return nil
	}
}

func (t *Tracer) Metrics() Metrics {
	return Metrics{
		Handled:        t.handled.Load(),
		Failed:         t.failed.Load(),
		LastDurationUS: t.lastUS.Load(),
	}
}

// GenerateTraceID returns a short random id such as "evt_1f2e3d4c5b6a7988".
func GenerateTraceID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("evt_%d", time.Now().UnixNano())
	}
	return "evt_" + hex.EncodeToString(b)
}

// TraceID returns the id Wrap stored in ctx, or "".
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
