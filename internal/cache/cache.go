// Package cache holds the in-process caches used by the export worker.
package cache

import (
	"context"
	"sync"
	"time"

	"moneymap/internal/log"
)

// Cache is the read/write surface shared by the caches in this package.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches whose entries expire.
type Cleaner interface {
	CleanExpired() int
}

// Manager sweeps expired entries from the registered caches.
type Manager struct {
	mu     sync.Mutex
	caches []Cleaner
	logger *log.Logger
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{logger: logger.WithComponent(log.ComponentCache)}
}

func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	m.caches = append(m.caches, c)
	m.mu.Unlock()
}

// Sweep runs one cleanup pass and returns the number of entries removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// Run sweeps every interval until ctx is done. It always returns nil so it
// can sit in an errgroup next to the consumer.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("Evicted expired cache entries", "count", n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
