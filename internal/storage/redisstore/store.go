// Package redisstore stores board state in Redis. With a TTL it serves as the
// session-scoped slot that expires on its own.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskboard/internal/storage"
)

// Store wraps a redis client as a key-value store.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewClient creates a store connected to addr.
func NewClient(addr, password string, db int) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// NewWithRedis creates a store from an existing client.
func NewWithRedis(rdb *redis.Client) (*Store, error) {
	if rdb == nil {
		return nil, errors.New("redis client is nil")
	}
	return &Store{rdb: rdb}, nil
}

// WithPrefix returns a copy of the store that namespaces every key.
func (s *Store) WithPrefix(prefix string) *Store {
	cp := *s
	cp.prefix = prefix
	return &cp
}

// WithTTL returns a copy of the store whose writes expire after ttl.
// A zero ttl keeps values forever.
func (s *Store) WithTTL(ttl time.Duration) *Store {
	cp := *s
	cp.ttl = ttl
	return &cp
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.rdb == nil {
		return errors.New("redis client is not initialized")
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	// Sliding expiry for session-scoped values.
	if s.ttl > 0 {
		s.rdb.Expire(ctx, s.prefix+key, s.ttl)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
