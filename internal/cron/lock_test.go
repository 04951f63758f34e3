package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryRedisStore struct {
	values map[string]string
}

func newMemoryRedisStore() *memoryRedisStore {
	return &memoryRedisStore{values: map[string]string{}}
}

func (s *memoryRedisStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *memoryRedisStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *memoryRedisStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestRedisLockAcquireAndRelease(t *testing.T) {
	store := newMemoryRedisStore()
	lock, err := NewRedisLock(store, "bb:test:lock", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected to acquire free lock")
	}
	if _, exists := store.values["bb:test:lock"]; !exists {
		t.Fatal("lock key not written")
	}

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, exists := store.values["bb:test:lock"]; exists {
		t.Fatal("lock key not deleted on release")
	}
}

func TestRedisLockContention(t *testing.T) {
	store := newMemoryRedisStore()

	first, err := NewRedisLock(store, "bb:test:lock", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewRedisLock(store, "bb:test:lock", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ok, _ := first.Acquire(context.Background()); !ok {
		t.Fatal("first acquire should succeed")
	}
	if ok, _ := second.Acquire(context.Background()); ok {
		t.Fatal("second acquire should fail while the lock is held")
	}

	// Releasing the loser must not free the winner's lock.
	if err := second.Release(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, exists := store.values["bb:test:lock"]; !exists {
		t.Fatal("lock was freed by a non-owner")
	}

	if err := first.Release(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := second.Acquire(context.Background()); !ok {
		t.Fatal("lock should be free after the owner released it")
	}
}

func TestRedisLockReleaseToleratesExpiry(t *testing.T) {
	store := newMemoryRedisStore()
	lock, err := NewRedisLock(store, "bb:test:lock", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ok, _ := lock.Acquire(context.Background()); !ok {
		t.Fatal("expected to acquire free lock")
	}

	// TTL expiry drops the key before release.
	delete(store.values, "bb:test:lock")

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release after expiry should be a no-op: %v", err)
	}
}

func TestNewRedisLockValidation(t *testing.T) {
	if _, err := NewRedisLock(nil, "key", time.Minute); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedisLock(newMemoryRedisStore(), "", time.Minute); err == nil {
		t.Fatal("expected error for empty key")
	}
	lock, err := NewRedisLock(newMemoryRedisStore(), "key", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lock.ttl != defaultLockTTL {
		t.Fatalf("expected default ttl, got %s", lock.ttl)
	}
}
