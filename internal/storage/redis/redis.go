// Package redis stores documents as plain Redis strings under a key prefix.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"moneymap/internal/storage"
)

// DefaultKeyPrefix namespaces every key written by the store.
const DefaultKeyPrefix = "moneymap:"

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Store struct {
	client *redis.Client
	prefix string
}

var _ storage.Store = (*Store)(nil)

// New connects and pings the server.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.Prefix), nil
}

func NewWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
