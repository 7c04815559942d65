package port

import (
	"context"
	"time"
)

// LeaseWatchdog asks the lock to auto-renew until explicitly unlocked
const LeaseWatchdog = time.Duration(-1)

// DistributedLock is a cluster-wide mutual exclusion primitive. TryLock
// returns false rather than blocking past wait when the key is contended.
type DistributedLock interface {
	TryLock(ctx context.Context, key string, wait, lease time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	IsHeld(ctx context.Context, key string) (bool, error)
}
