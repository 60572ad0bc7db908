package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"taskboard/internal/storage"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, err := NewWithRedis(rdb)
	if err != nil {
		t.Fatalf("NewWithRedis: %v", err)
	}
	return mr, s
}

func TestStoreRoundTrip(t *testing.T) {
	mr, s := newTestStore(t)
	s = s.WithPrefix("test:")
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if _, err := s.Get(ctx, storage.KeyUsers); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, storage.KeyUsers, []byte("[]")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("test:" + storage.KeyUsers) {
		t.Fatalf("prefix not applied")
	}
	got, err := s.Get(ctx, storage.KeyUsers)
	if err != nil || string(got) != "[]" {
		t.Fatalf("Get = %s, %v", got, err)
	}
	if err := s.Delete(ctx, storage.KeyUsers); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, storage.KeyUsers); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreTTL(t *testing.T) {
	mr, s := newTestStore(t)
	s = s.WithTTL(time.Minute)
	ctx := context.Background()

	if err := s.Set(ctx, storage.KeySession, []byte(`{"id":"u-1"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL(storage.KeySession); ttl != time.Minute {
		t.Fatalf("TTL = %v", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := s.Get(ctx, storage.KeySession); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestNewWithRedisNil(t *testing.T) {
	if _, err := NewWithRedis(nil); err == nil {
		t.Fatalf("expected error")
	}
}
