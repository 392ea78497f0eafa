// Package ledger folds record sequences into running balances and label totals.
package ledger

import (
	"errors"
	"fmt"

	"moneymap/internal/core"
)

// ErrBalanceMismatch is wrapped by MismatchError.
var ErrBalanceMismatch = errors.New("stored balance does not match replayed balance")

// MismatchError points at the first record whose stored balance is wrong.
type MismatchError struct {
	Index    int
	RecordID string
	Stored   float64
	Replayed float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("record %d (%s): stored %v, replayed %v", e.Index, e.RecordID, e.Stored, e.Replayed)
}

func (e *MismatchError) Unwrap() error { return ErrBalanceMismatch }

// Next applies one movement to a balance.
func Next(prev float64, kind core.Kind, amount float64) float64 {
	return prev + kind.Sign()*amount
}

// ComputeBalances returns the running balance after each record, starting
// from zero. Stored balances are ignored and the input is not modified.
func ComputeBalances(records []core.Record) []float64 {
	balances := make([]float64, len(records))
	var bal float64
	for i, r := range records {
		bal = Next(bal, r.Kind, r.Amount)
		balances[i] = bal
	}
	return balances
}

// Replay returns a copy of records with every balance recomputed.
func Replay(records []core.Record) []core.Record {
	out := make([]core.Record, len(records))
	copy(out, records)
	for i, b := range ComputeBalances(records) {
		out[i].Balance = b
	}
	return out
}

// Verify compares stored balances against a replay from zero.
// It returns a *MismatchError for the first difference.
func Verify(records []core.Record) error {
	for i, b := range ComputeBalances(records) {
		if records[i].Balance != b {
			return &MismatchError{
				Index:    i,
				RecordID: records[i].ID,
				Stored:   records[i].Balance,
				Replayed: b,
			}
		}
	}
	return nil
}
