// Package memory is an in-process sheets exporter used when no spreadsheet
// is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"moneymap/internal/core"
	ports "moneymap/internal/sheets"
)

type Exporter struct {
	mu   sync.Mutex
	rows [][]any
}

var (
	_ ports.RecordExporter = (*Exporter)(nil)
	_ ports.ExportedLister = (*Exporter)(nil)
)

func New() *Exporter {
	return &Exporter{}
}

// ExportRecord returns a synthetic row reference, e.g. "mem:3".
func (e *Exporter) ExportRecord(_ context.Context, email string, rec core.Record) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, ports.RecordRow(email, rec))
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

func (e *Exporter) ListExportedIDs(_ context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.rows))
	for _, r := range e.rows {
		ids = append(ids, fmt.Sprint(r[0]))
	}
	return ids, nil
}

// Rows returns a copy of every exported row.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]any, len(e.rows))
	for i, r := range e.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}
