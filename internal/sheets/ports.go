package sheets

import (
	"context"
	"strconv"
	"time"

	"moneymap/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordExporter writes one ledger record as one spreadsheet row.
	RecordExporter interface {
		ExportRecord(ctx context.Context, email string, rec core.Record) (rowRef string, err error)
	}

	// ExportedLister returns the ids of records already written, so a
	// restarted worker does not export them twice.
	ExportedLister interface {
		ListExportedIDs(ctx context.Context) ([]string, error)
	}
)

// Header is the first row of the export sheet.
var Header = []any{"ID", "Time", "Email", "Type", "Item", "Amount", "Balance"}

// RecordRow lays a record out in Header order.
func RecordRow(email string, rec core.Record) []any {
	return []any{
		rec.ID,
		rec.Time.UTC().Format(time.RFC3339),
		email,
		rec.Kind.String(),
		rec.Item,
		strconv.FormatFloat(rec.Amount, 'f', -1, 64),
		strconv.FormatFloat(rec.Balance, 'f', -1, 64),
	}
}
