package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	appinventory "github.com/inventory-hub/backend/internal/application/inventory"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisLedgerLocker serialises ledger application across instances with a Redis lock.
// The lock expires after ttl so a crashed holder cannot block a session forever.
type RedisLedgerLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisLedgerLocker creates a locker on an existing client
func NewRedisLedgerLocker(client redis.UniversalClient, ttl time.Duration) *RedisLedgerLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLedgerLocker{
		locker: redislock.New(client),
		ttl:    ttl,
		retry:  100 * time.Millisecond,
	}
}

// Lock waits for the lock until ctx is done, or for ttl when ctx has no deadline
func (l *RedisLedgerLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	lock, err := l.locker.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.retry),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
				fmt.Sprintf("Ledger application for %s is already running", key))
		}
		return nil, fmt.Errorf("obtain ledger lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release ledger lock %s: %w", key, err)
		}
		return nil
	}, nil
}

// LocalLedgerLocker serialises ledger application inside one process
type LocalLedgerLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocalLedgerLocker creates an in-process locker
func NewLocalLedgerLocker() *LocalLedgerLocker {
	return &LocalLedgerLocker{slots: make(map[string]chan struct{})}
}

// Lock waits until no other caller holds key or ctx is done
func (l *LocalLedgerLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("Ledger application for %s is already running", key))
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-slot })
		return nil
	}, nil
}

var (
	_ appinventory.LedgerLocker = (*RedisLedgerLocker)(nil)
	_ appinventory.LedgerLocker = (*LocalLedgerLocker)(nil)
)
