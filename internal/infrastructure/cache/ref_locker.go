package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/erp/stocksync/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const refLockPrefix = "stocksync:lock:"

// RedisRefLocker implements integration.RefLocker with redislock, so
// concurrent pullers on different instances never work the same order.
type RedisRefLocker struct {
	locker *redislock.Client
}

// NewRedisRefLocker creates a locker over an existing client
func NewRedisRefLocker(client redis.UniversalClient) *RedisRefLocker {
	return &RedisRefLocker{locker: redislock.New(client)}
}

// TryLock obtains the lock once, without retrying
func (l *RedisRefLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.locker.Obtain(ctx, refLockPrefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, integration.ErrLockHeld
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			// expired before release; nothing to undo
			return nil
		}
		return err
	}, nil
}

// InMemoryRefLocker implements integration.RefLocker within one process.
// Expired entries are reclaimed lazily on the next TryLock for the same key.
type InMemoryRefLocker struct {
	mu     sync.Mutex
	held   map[string]lease
	tokens uint64
	clock  func() time.Time
}

type lease struct {
	token     uint64
	expiresAt time.Time
}

// NewInMemoryRefLocker creates an in-process locker
func NewInMemoryRefLocker() *InMemoryRefLocker {
	return &InMemoryRefLocker{held: make(map[string]lease), clock: time.Now}
}

// TryLock obtains the lock when free or expired
func (l *InMemoryRefLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if cur, ok := l.held[key]; ok && now.Before(cur.expiresAt) {
		return nil, integration.ErrLockHeld
	}
	l.tokens++
	mine := lease{token: l.tokens, expiresAt: now.Add(ttl)}
	l.held[key] = mine

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[key]; ok && cur.token == mine.token {
			delete(l.held, key)
		}
		return nil
	}, nil
}

// NewRefLocker returns a Redis-backed locker when Redis is enabled and
// reachable. Otherwise it falls back to an in-process locker, which only
// protects a single instance.
func NewRefLocker(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (integration.RefLocker, func() error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-process order locks")
		return NewInMemoryRefLocker(), noop
	}
	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-process order locks. "+
			"Concurrent pullers on other instances are not excluded.",
			zap.Error(err),
		)
		return NewInMemoryRefLocker(), noop
	}
	logger.Info("Using Redis order locks", zap.String("addr", cfg.Addr()))
	return NewRedisRefLocker(client), client.Close
}

var (
	_ integration.RefLocker = (*RedisRefLocker)(nil)
	_ integration.RefLocker = (*InMemoryRefLocker)(nil)
)
