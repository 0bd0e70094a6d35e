package inventory

import (
	"context"

	"github.com/google/uuid"
)

// LedgerLocker serialises ledger application per source document across instances.
// Lock blocks until the lock is held or ctx is done; the returned func releases it.
type LedgerLocker interface {
	Lock(ctx context.Context, key string) (unlock func(context.Context) error, err error)
}

// ReceivingLockKey is the ledger lock key of a receiving session
func ReceivingLockKey(sessionID uuid.UUID) string {
	return "ledger:receiving:" + sessionID.String()
}
