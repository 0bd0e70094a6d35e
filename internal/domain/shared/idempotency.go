package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which deliveries were already handled
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It returns false when the key is already claimed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key is currently claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget releases a claim so a failed delivery can be retried
	Forget(ctx context.Context, key string) error

	Close() error
}

// IdempotencyConfig controls duplicate suppression of event handlers
type IdempotencyConfig struct {
	// TTL is how long a handled key is remembered
	TTL time.Duration
	// Enabled turns duplicate suppression on
	Enabled bool
}

// DefaultIdempotencyConfig remembers keys for 24 hours
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
