package cache

import (
	"context"
	"fmt"
	"time"

	appinventory "github.com/inventory-hub/backend/internal/application/inventory"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/inventory-hub/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// Coordination bundles the cross-request state of the receiving workflow:
// the idempotency store of event handlers and the ledger lock.
type Coordination struct {
	Idempotency shared.IdempotencyStore
	Locker      appinventory.LedgerLocker
	// Redis is nil when the process runs without Redis
	Redis *redis.Client
}

// Close releases the store and the Redis connection
func (c *Coordination) Close() error {
	err := c.Idempotency.Close()
	if c.Redis != nil {
		if cerr := c.Redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// NewCoordination uses Redis when it is enabled and reachable and falls back
// to process-local state otherwise. Production refuses the fallback.
func NewCoordination(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Coordination, error) {
	if cfg.Redis.Enabled {
		client, err := NewRedisClient(ctx, &cfg.Redis)
		if err == nil {
			logger.Info("using Redis for idempotency and ledger locks", zap.String("addr", cfg.Redis.Addr()))
			return &Coordination{
				Idempotency: NewRedisIdempotencyStore(client, DefaultIdempotencyPrefix),
				Locker:      NewRedisLedgerLocker(client, cfg.Receiving.LedgerLockTTL),
				Redis:       client,
			}, nil
		}
		if cfg.IsProduction() {
			return nil, err
		}
		logger.Warn("Redis unavailable, falling back to in-process idempotency and locks", zap.Error(err))
	}
	return &Coordination{
		Idempotency: NewInMemoryIdempotencyStore(),
		Locker:      NewLocalLedgerLocker(),
	}, nil
}
