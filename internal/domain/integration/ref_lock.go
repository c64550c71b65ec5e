package integration

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld means another worker holds the lock for the key
var ErrLockHeld = errors.New("integration: lock held by another worker")

// RefLocker serializes work on one remote reference across process instances.
type RefLocker interface {
	// TryLock obtains the lock without waiting. It returns ErrLockHeld when
	// someone else holds it. The returned release func is safe to call once.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
