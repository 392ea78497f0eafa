// Package memory is an in-process storage.Store for tests and throwaway runs.
package memory

import (
	"context"
	"sync"

	"moneymap/internal/storage"
)

type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, storage.ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	delete(s.data, key)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
