// Package storage defines the key/value persistence port used by the ledger
// and community services, plus its SQLite implementation.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store is closed")

// Store persists opaque documents under string keys.
type Store interface {
	// Load returns the stored value and whether the key exists.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
