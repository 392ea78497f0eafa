package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneymap/internal/core"
	"moneymap/internal/events"
	"moneymap/internal/sheets/memory"
)

type failingExporter struct{ calls int }

func (f *failingExporter) ExportRecord(context.Context, string, core.Record) (string, error) {
	f.calls++
	return "", errors.New("quota exceeded")
}

type staticLister []string

func (s staticLister) ListExportedIDs(context.Context) ([]string, error) { return s, nil }

func fastConfig() Config {
	return Config{RatePerSec: 1000, DedupeTTL: time.Hour, DedupeSize: 100}
}

func event(id string) events.RecordEvent {
	return events.RecordEvent{
		Email: "a@b.c",
		Record: core.Record{
			ID: id, Time: time.Now(), Kind: core.Paid, Item: "Rent", Amount: 100, Balance: -100,
		},
	}
}

func TestHandleRecordEvent_ExportsOnce(t *testing.T) {
	exp := memory.New()
	w := NewExportWorker(exp, fastConfig(), nil)
	ctx := context.Background()

	require.NoError(t, w.HandleRecordEvent(ctx, event("r1")))
	require.NoError(t, w.HandleRecordEvent(ctx, event("r1")))
	require.NoError(t, w.HandleRecordEvent(ctx, event("r2")))

	rows := exp.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "r1", rows[0][0])
	assert.Equal(t, "r2", rows[1][0])
}

func TestHandleRecordEvent_FailureIsRetryable(t *testing.T) {
	exp := &failingExporter{}
	w := NewExportWorker(exp, fastConfig(), nil)

	err := w.HandleRecordEvent(context.Background(), event("r1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	require.Error(t, w.HandleRecordEvent(context.Background(), event("r1")))
	assert.Equal(t, 2, exp.calls, "failed exports are not marked seen")
}

func TestHandleRecordEvent_MissingID(t *testing.T) {
	w := NewExportWorker(memory.New(), fastConfig(), nil)
	err := w.HandleRecordEvent(context.Background(), event(""))
	assert.ErrorIs(t, err, ErrMissingRecordID)
}

func TestHandleRecordEvent_CancelledWhileLimited(t *testing.T) {
	exp := memory.New()
	w := NewExportWorker(exp, Config{RatePerSec: 0.001, DedupeTTL: time.Hour, DedupeSize: 10}, nil)

	require.NoError(t, w.HandleRecordEvent(context.Background(), event("r1")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := w.HandleRecordEvent(ctx, event("r2"))
	require.Error(t, err)
	assert.Len(t, exp.Rows(), 1)
}

func TestWarmUp(t *testing.T) {
	exp := memory.New()
	w := NewExportWorker(exp, fastConfig(), nil)

	n, err := w.WarmUp(context.Background(), staticLister{"r1", "r2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, w.Seen().Size())

	require.NoError(t, w.HandleRecordEvent(context.Background(), event("r1")))
	assert.Empty(t, exp.Rows())
}

func TestNewExportWorker_Defaults(t *testing.T) {
	w := NewExportWorker(memory.New(), Config{}, nil)
	assert.Equal(t, float64(1), float64(w.limiter.Limit()))
}
