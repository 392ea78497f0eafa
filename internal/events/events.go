// Package events defines the record-appended message and the broker ports
// the ledger publishes to and the export worker consumes from.
package events

import (
	"context"
	"encoding/json"
	"time"

	"moneymap/internal/core"
)

// RecordEvent announces one appended ledger record.
type RecordEvent struct {
	Email     string      `json:"email"`
	Record    core.Record `json:"record"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewRecordEvent(email string, rec core.Record) RecordEvent {
	return RecordEvent{
		Email:     email,
		Record:    rec,
		Timestamp: time.Now().UTC(),
	}
}

func (e RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func RecordEventFromJSON(data []byte) (RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return RecordEvent{}, err
	}
	return e, nil
}

// Handler processes one event. A returned error asks the broker to redeliver.
type Handler func(ctx context.Context, e RecordEvent) error

type Publisher interface {
	PublishRecordAppended(ctx context.Context, e RecordEvent) error
	Close() error
}

type Consumer interface {
	// Consume blocks until ctx is done or the subscription fails.
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) PublishRecordAppended(context.Context, RecordEvent) error { return nil }
func (Noop) Close() error                                            { return nil }
